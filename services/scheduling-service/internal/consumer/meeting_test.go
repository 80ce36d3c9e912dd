package consumer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/booking"
	"github.com/segmentio/kafka-go"
)

type recordingMeetingStore struct {
	appointmentID string
	meetingLink   string
	location      string
	err           error
}

func (s *recordingMeetingStore) AttachMeetingDetails(_ context.Context, appointmentID, meetingLink, location string) error {
	s.appointmentID = appointmentID
	s.meetingLink = meetingLink
	s.location = location
	return s.err
}

func TestMeetingProvisionedHandler(t *testing.T) {
	store := &recordingMeetingStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := MeetingProvisionedHandler(store, logger)

	msg := kafka.Message{Value: []byte(`{"appointment_id":"appt-1","meeting_link":"https://meet.example/x","location":"Room 204"}`)}
	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.appointmentID != "appt-1" || store.meetingLink != "https://meet.example/x" || store.location != "Room 204" {
		t.Fatalf("unexpected store call: %+v", store)
	}
}

func TestMeetingProvisionedHandler_BadPayload(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := MeetingProvisionedHandler(&recordingMeetingStore{}, logger)

	if err := handler(context.Background(), kafka.Message{Value: []byte(`not json`)}); err == nil {
		t.Fatal("expected decode error")
	}
	if err := handler(context.Background(), kafka.Message{Value: []byte(`{}`)}); err == nil {
		t.Fatal("expected missing id error")
	}
}

func TestMeetingProvisionedHandler_UnknownAppointmentDropped(t *testing.T) {
	store := &recordingMeetingStore{err: booking.ErrNotFound}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := MeetingProvisionedHandler(store, logger)

	msg := kafka.Message{Value: []byte(`{"appointment_id":"gone"}`)}
	if err := handler(context.Background(), msg); err != nil {
		t.Fatalf("expected unknown appointment to be dropped, got %v", err)
	}
}
