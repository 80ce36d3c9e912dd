package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/booking"
	"github.com/segmentio/kafka-go"
)

// MeetingStore is the slice of the ledger the meeting handler writes to.
type MeetingStore interface {
	AttachMeetingDetails(ctx context.Context, appointmentID, meetingLink, location string) error
}

type meetingProvisionedEvent struct {
	AppointmentID string `json:"appointment_id"`
	MeetingLink   string `json:"meeting_link"`
	Location      string `json:"location"`
}

// MeetingProvisionedHandler applies scheduling.meeting.provisioned.v1 events
// to the appointment record. A missing appointment is logged and dropped
// rather than retried; the provisioner references ids it got from our own
// booked events, so an unknown id means the appointment was since removed.
func MeetingProvisionedHandler(store MeetingStore, logger *slog.Logger) Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt meetingProvisionedEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return fmt.Errorf("decode meeting event: %w", err)
		}
		if evt.AppointmentID == "" {
			return errors.New("meeting event missing appointment_id")
		}

		err := store.AttachMeetingDetails(ctx, evt.AppointmentID, evt.MeetingLink, evt.Location)
		if errors.Is(err, booking.ErrNotFound) {
			logger.Warn("meeting details for unknown appointment", "appointment_id", evt.AppointmentID)
			return nil
		}
		return err
	}
}
