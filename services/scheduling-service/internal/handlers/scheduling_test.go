package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/booking"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/outbox"
)

// memStore is a minimal in-memory booking.Store for exercising the HTTP
// surface. Single mutex, same atomicity contract as the real ledger.
type memStore struct {
	mu         sync.Mutex
	templates  map[string][]model.AvailabilityTemplate
	counselors map[string]model.Counselor
	appts      map[string]model.Appointment
	counts     map[string]int
	idem       map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		templates:  map[string][]model.AvailabilityTemplate{},
		counselors: map[string]model.Counselor{},
		appts:      map[string]model.Appointment{},
		counts:     map[string]int{},
		idem:       map[string]string{},
	}
}

func (m *memStore) Templates(_ context.Context, counselorID string) ([]model.AvailabilityTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AvailabilityTemplate(nil), m.templates[counselorID]...), nil
}

func (m *memStore) ReplaceTemplates(_ context.Context, counselorID string, _ int, templates []model.AvailabilityTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[counselorID] = append([]model.AvailabilityTemplate(nil), templates...)
	return nil
}

func (m *memStore) Counselor(_ context.Context, id string) (model.Counselor, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counselors[id]
	return c, ok, nil
}

func (m *memStore) BookedStartMinutes(_ context.Context, counselorID, date string) (map[int]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	taken := map[int]bool{}
	for _, a := range m.appts {
		if a.CounselorID == counselorID && a.Date == date && a.Status != model.StatusCancelled {
			taken[a.StartMinute] = true
		}
	}
	return taken, nil
}

func (m *memStore) CreateAppointment(_ context.Context, appt *model.Appointment, maxSessionsPerDay int, idempotencyKey string, _ outbox.Event) (model.Appointment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idempotencyKey != "" {
		if id, ok := m.idem[appt.StudentID+"|"+idempotencyKey]; ok {
			return m.appts[id], true, nil
		}
	}
	for _, a := range m.appts {
		if a.CounselorID == appt.CounselorID && a.Date == appt.Date &&
			a.StartMinute == appt.StartMinute && a.Status != model.StatusCancelled {
			return model.Appointment{}, false, booking.ErrSlotUnavailable
		}
	}
	key := appt.CounselorID + "|" + appt.Date
	if m.counts[key] >= maxSessionsPerDay {
		return model.Appointment{}, false, booking.ErrCapacityExceeded
	}
	m.counts[key]++
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	m.appts[appt.ID] = *appt
	if idempotencyKey != "" {
		m.idem[appt.StudentID+"|"+idempotencyKey] = appt.ID
	}
	return *appt, false, nil
}

func (m *memStore) Appointment(_ context.Context, id string) (model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return model.Appointment{}, booking.ErrNotFound
	}
	return a, nil
}

func (m *memStore) TransitionStatus(_ context.Context, id, from, to, cancelReason string, releaseCapacity bool, _ outbox.Event) (model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return model.Appointment{}, booking.ErrNotFound
	}
	if a.Status != from {
		return model.Appointment{}, booking.ErrInvalidTransition
	}
	a.Status = to
	if to == model.StatusCancelled {
		now := time.Now()
		a.CancelledAt = &now
		a.CancelReason = cancelReason
	}
	m.appts[id] = a
	if releaseCapacity {
		key := a.CounselorID + "|" + a.Date
		if m.counts[key] > 0 {
			m.counts[key]--
		}
	}
	return a, nil
}

func (m *memStore) AttachFeedback(_ context.Context, id string, rating int, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return booking.ErrNotFound
	}
	a.Rating = &rating
	a.Feedback = feedback
	m.appts[id] = a
	return nil
}

func (m *memStore) ListAppointments(_ context.Context, q booking.ListQuery) ([]model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Appointment
	for _, a := range m.appts {
		if q.StudentID != "" && a.StudentID != q.StudentID {
			continue
		}
		if q.CounselorID != "" && a.CounselorID != q.CounselorID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) RecomputeDailyCounts(_ context.Context, _ string) (int, error) {
	return 0, nil
}

var handlerNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

const handlerDate = "2026-03-09"

func newTestHandler(t *testing.T) (*SchedulingHandler, *memStore) {
	t.Helper()
	store := newMemStore()
	store.templates["counselor-1"] = []model.AvailabilityTemplate{
		{CounselorID: "counselor-1", Weekday: 1, StartMinute: 540, EndMinute: 720, Enabled: true},
	}
	store.counselors["counselor-1"] = model.Counselor{ID: "counselor-1", MaxSessionsPerDay: 8, Active: true}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := booking.NewService(store, nil, logger).WithClock(func() time.Time { return handlerNow })
	return NewSchedulingHandler(svc, logger), store
}

func asUser(req *http.Request, id, role string) *http.Request {
	req.Header.Set("X-User-Id", id)
	req.Header.Set("X-Role", role)
	return req
}

func TestSlots_ReturnsWindow(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/slots?counselor_id=counselor-1&date="+handlerDate, nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Slots []struct {
			StartTime string `json:"start_time"`
			Available bool   `json:"available"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if len(resp.Slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(resp.Slots))
	}
	if resp.Slots[0].StartTime != "09:00" {
		t.Fatalf("expected first slot 09:00, got %s", resp.Slots[0].StartTime)
	}
}

func TestSlots_MissingParams(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/slots?date="+handlerDate, nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSlots_InvalidDate(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/slots?counselor_id=counselor-1&date=tomorrow", nil)
	rec := httptest.NewRecorder()
	h.Slots(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func createAppointment(t *testing.T, h *SchedulingHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	asUser(req, "student-1", "student")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.Appointments(rec, req)
	return rec
}

func TestCreateAppointment_Created(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"counselor_id":"counselor-1","date":"` + handlerDate + `","start_time":"10:00"}`
	rec := createAppointment(t, h, body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AppointmentID string `json:"appointment_id"`
		Status        string `json:"status"`
		StartTime     string `json:"start_time"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if resp.AppointmentID == "" || resp.Status != "scheduled" || resp.StartTime != "10:00" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateAppointment_Conflict(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"counselor_id":"counselor-1","date":"` + handlerDate + `","start_time":"10:00"}`
	if rec := createAppointment(t, h, body, nil); rec.Code != http.StatusCreated {
		t.Fatalf("first booking: expected 201, got %d", rec.Code)
	}
	if rec := createAppointment(t, h, body, nil); rec.Code != http.StatusConflict {
		t.Fatalf("second booking: expected 409, got %d", rec.Code)
	}
}

func TestCreateAppointment_IdempotencyKeyReplays(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"counselor_id":"counselor-1","date":"` + handlerDate + `","start_time":"10:00"}`
	headers := map[string]string{"Idempotency-Key": "k-1"}
	first := createAppointment(t, h, body, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.Code)
	}
	second := createAppointment(t, h, body, headers)
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200 replay, got %d", second.Code)
	}

	var a, b struct {
		AppointmentID string `json:"appointment_id"`
	}
	_ = json.Unmarshal(first.Body.Bytes(), &a)
	_ = json.Unmarshal(second.Body.Bytes(), &b)
	if a.AppointmentID == "" || a.AppointmentID != b.AppointmentID {
		t.Fatalf("expected identical appointment ids, got %q and %q", a.AppointmentID, b.AppointmentID)
	}
}

func TestCreateAppointment_RequiresStudentRole(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"counselor_id":"counselor-1","date":"` + handlerDate + `","start_time":"10:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	asUser(req, "counselor-1", "counselor")
	rec := httptest.NewRecorder()
	h.Appointments(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCreateAppointment_MisalignedStart(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"counselor_id":"counselor-1","date":"` + handlerDate + `","start_time":"10:30"}`
	rec := createAppointment(t, h, body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCancel_FullFlow(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"counselor_id":"counselor-1","date":"` + handlerDate + `","start_time":"10:00"}`
	created := createAppointment(t, h, body, nil)
	var appt struct {
		AppointmentID string `json:"appointment_id"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &appt); err != nil {
		t.Fatalf("bad create response: %v", err)
	}

	cancelBody := `{"appointment_id":"` + appt.AppointmentID + `","reason":"conflict"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/cancel", strings.NewReader(cancelBody))
	asUser(req, "student-1", "student")
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Cancelling again conflicts with the terminal state.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/appointments/cancel", strings.NewReader(cancelBody))
	asUser(req, "student-1", "student")
	rec = httptest.NewRecorder()
	h.Cancel(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on double cancel, got %d", rec.Code)
	}
}

func TestCancel_UnknownAppointment(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/cancel", strings.NewReader(`{"appointment_id":"nope"}`))
	asUser(req, "student-1", "student")
	rec := httptest.NewRecorder()
	h.Cancel(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFeedback_RatingOutOfRange(t *testing.T) {
	h, store := newTestHandler(t)

	body := `{"counselor_id":"counselor-1","date":"` + handlerDate + `","start_time":"10:00"}`
	created := createAppointment(t, h, body, nil)
	var appt struct {
		AppointmentID string `json:"appointment_id"`
	}
	_ = json.Unmarshal(created.Body.Bytes(), &appt)

	// Force completion so only the rating rule can fail.
	store.mu.Lock()
	a := store.appts[appt.AppointmentID]
	a.Status = model.StatusCompleted
	store.appts[appt.AppointmentID] = a
	store.mu.Unlock()

	fb := `{"appointment_id":"` + appt.AppointmentID + `","rating":6}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/feedback", strings.NewReader(fb))
	asUser(req, "student-1", "student")
	rec := httptest.NewRecorder()
	h.Feedback(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAvailability_PutThenGet(t *testing.T) {
	h, _ := newTestHandler(t)

	putBody := `{"counselor_id":"counselor-2","templates":[{"weekday":2,"start_time":"09:00","end_time":"12:00","enabled":true}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/availability", strings.NewReader(putBody))
	asUser(req, "counselor-2", "counselor")
	rec := httptest.NewRecorder()
	h.Availability(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/availability?counselor_id=counselor-2", nil)
	rec = httptest.NewRecorder()
	h.Availability(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Templates []struct {
			Weekday   int    `json:"weekday"`
			StartTime string `json:"start_time"`
			EndTime   string `json:"end_time"`
		} `json:"templates"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response json: %v", err)
	}
	if len(resp.Templates) != 1 || resp.Templates[0].StartTime != "09:00" || resp.Templates[0].EndTime != "12:00" {
		t.Fatalf("unexpected templates: %+v", resp.Templates)
	}
}

func TestAvailability_PutForOtherCounselorForbidden(t *testing.T) {
	h, _ := newTestHandler(t)

	putBody := `{"counselor_id":"counselor-1","templates":[]}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/availability", strings.NewReader(putBody))
	asUser(req, "counselor-2", "counselor")
	rec := httptest.NewRecorder()
	h.Availability(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestReconcile_AdminOnly(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"date":"` + handlerDate + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reconcile", strings.NewReader(body))
	asUser(req, "student-1", "student")
	rec := httptest.NewRecorder()
	h.Reconcile(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/reconcile", strings.NewReader(body))
	asUser(req, "admin-1", "admin")
	rec = httptest.NewRecorder()
	h.Reconcile(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/appointments", nil)
	rec := httptest.NewRecorder()
	h.Appointments(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
