// Package booking coordinates slot resolution and the booking transaction
// for the counseling platform: it re-validates availability against the
// ledger at commit time, enforces per-counselor daily capacity, and drives
// appointment status changes through the lifecycle rules.
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/availability"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/lifecycle"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/outbox"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/policy"
)

// Actor is the authenticated caller, as asserted by the platform identity
// service. The coordinator trusts the id and role and does no
// authentication of its own.
type Actor struct {
	ID   string
	Role string
}

const (
	RoleStudent   = "student"
	RoleCounselor = "counselor"
	RoleAdmin     = "admin"
)

type Service struct {
	store  Store
	policy policy.Provider
	logger *slog.Logger

	// now is injected so horizon and lifecycle checks are deterministic in
	// tests; loc is the wall clock dates and minutes are interpreted in.
	now func() time.Time
	loc *time.Location
}

func NewService(store Store, pol policy.Provider, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		policy: pol,
		logger: logger,
		now:    time.Now,
		loc:    time.UTC,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type BookRequest struct {
	StudentID       string
	CounselorID     string
	Date            string
	StartMinute     int
	DurationMinutes int
	Type            string
	Notes           string
	IdempotencyKey  string
}

// AvailableSlots resolves a counselor's recurring template into concrete
// slots for one date, marking slots taken by non-cancelled appointments.
// A day without an enabled window yields an empty list, not an error.
func (s *Service) AvailableSlots(ctx context.Context, counselorID, date string) ([]model.Slot, error) {
	pol := s.policyFor(ctx, counselorID)

	day, err := s.checkDate(date, pol.HorizonDays)
	if err != nil {
		return nil, err
	}

	tmpl, err := s.templateForWeekday(ctx, counselorID, int(day.Weekday()))
	if err != nil || tmpl == nil {
		return nil, err
	}

	booked, err := s.store.BookedStartMinutes(ctx, counselorID, date)
	if err != nil {
		return nil, fmt.Errorf("load booked slots: %w", err)
	}

	slots := availability.Generate(tmpl, pol.GranularityMinutes, func(start int) bool {
		return booked[start]
	})

	// Same-day slots whose start has already passed cannot be booked.
	now := s.now().In(s.loc)
	if date == now.Format(model.DateLayout) {
		nowMinute := now.Hour()*60 + now.Minute()
		for i := range slots {
			if slots[i].StartMinute <= nowMinute {
				slots[i].Available = false
			}
		}
	}
	return slots, nil
}

// Book runs the booking preconditions in order, each failure carrying its
// own error kind, then commits the appointment, the capacity increment and
// the booked event as one atomic store operation. replayed reports an
// idempotency-key replay of an earlier successful booking.
func (s *Service) Book(ctx context.Context, req BookRequest) (appt model.Appointment, replayed bool, err error) {
	pol := s.policyFor(ctx, req.CounselorID)

	day, err := s.checkDate(req.Date, pol.HorizonDays)
	if err != nil {
		return model.Appointment{}, false, err
	}
	now := s.now().In(s.loc)
	if req.Date == now.Format(model.DateLayout) && req.StartMinute <= now.Hour()*60+now.Minute() {
		return model.Appointment{}, false, fmt.Errorf("%w: requested time has already passed", ErrInvalidDate)
	}

	tmpl, err := s.templateForWeekday(ctx, req.CounselorID, int(day.Weekday()))
	if err != nil {
		return model.Appointment{}, false, err
	}
	if tmpl == nil {
		return model.Appointment{}, false, ErrNoAvailability
	}

	if req.DurationMinutes == 0 {
		req.DurationMinutes = pol.GranularityMinutes
	}
	if req.DurationMinutes != pol.GranularityMinutes || !availability.Aligned(tmpl, pol.GranularityMinutes, req.StartMinute) {
		return model.Appointment{}, false, fmt.Errorf("%w: %s is not a %d-minute slot boundary within the window",
			ErrSlotMisaligned, model.FormatMinute(req.StartMinute), pol.GranularityMinutes)
	}

	maxSessions := pol.DefaultMaxSessionsPerDay
	counselor, ok, err := s.store.Counselor(ctx, req.CounselorID)
	if err != nil {
		return model.Appointment{}, false, fmt.Errorf("load counselor: %w", err)
	}
	if ok {
		if !counselor.Active {
			return model.Appointment{}, false, fmt.Errorf("%w: counselor is not accepting bookings", ErrNoAvailability)
		}
		if counselor.MaxSessionsPerDay > 0 {
			maxSessions = counselor.MaxSessionsPerDay
		}
	}

	apptType := req.Type
	if apptType == "" {
		apptType = model.TypeIndividual
	}
	record := &model.Appointment{
		ID:              uuid.NewString(),
		StudentID:       req.StudentID,
		CounselorID:     req.CounselorID,
		Date:            req.Date,
		StartMinute:     req.StartMinute,
		DurationMinutes: req.DurationMinutes,
		Type:            apptType,
		Status:          model.StatusScheduled,
		Notes:           req.Notes,
	}

	evt, err := s.appointmentEvent("scheduling.appointment.booked.v1", record, nil)
	if err != nil {
		return model.Appointment{}, false, err
	}

	created, replayed, err := s.store.CreateAppointment(ctx, record, maxSessions, req.IdempotencyKey, evt)
	if err != nil {
		return model.Appointment{}, false, err
	}
	return created, replayed, nil
}

// Cancel releases the slot and one unit of daily capacity. Permitted to the
// appointment's student, its counselor, or an admin, and only while the
// appointment is still in the future.
func (s *Service) Cancel(ctx context.Context, appointmentID string, actor Actor, reason string) (model.Appointment, error) {
	return s.Transition(ctx, appointmentID, actor, model.StatusCancelled, reason)
}

// Transition drives the lifecycle state machine. Cancellation may be
// initiated by either participant; confirm, complete and no-show are
// counselor (or admin) actions.
func (s *Service) Transition(ctx context.Context, appointmentID string, actor Actor, target, reason string) (model.Appointment, error) {
	if !model.ValidStatus(target) || target == model.StatusScheduled {
		return model.Appointment{}, fmt.Errorf("%w: %q is not a reachable status", ErrInvalidTransition, target)
	}

	appt, err := s.store.Appointment(ctx, appointmentID)
	if err != nil {
		return model.Appointment{}, err
	}

	if target == model.StatusCancelled {
		if !s.participant(actor, appt) {
			return model.Appointment{}, ErrUnauthorized
		}
	} else if !s.counselorOrAdmin(actor, appt) {
		return model.Appointment{}, ErrUnauthorized
	}

	startAt, err := appt.StartAt(s.loc)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("resolve appointment time: %w", err)
	}
	if err := lifecycle.Check(appt.Status, target, startAt, s.now().In(s.loc)); err != nil {
		return model.Appointment{}, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	eventType := "scheduling.appointment.status_changed.v1"
	if target == model.StatusCancelled {
		eventType = "scheduling.appointment.cancelled.v1"
	}
	evt, err := s.appointmentEvent(eventType, &appt, map[string]any{
		"from_status": appt.Status,
		"to_status":   target,
		"actor_id":    actor.ID,
		"reason":      reason,
	})
	if err != nil {
		return model.Appointment{}, err
	}

	releaseCapacity := target == model.StatusCancelled
	return s.store.TransitionStatus(ctx, appointmentID, appt.Status, target, reason, releaseCapacity, evt)
}

// AttachFeedback records the student's post-session rating. Only valid on a
// completed appointment and for an integer rating between 1 and 5.
func (s *Service) AttachFeedback(ctx context.Context, appointmentID string, actor Actor, rating int, feedback string) error {
	appt, err := s.store.Appointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	if actor.Role != RoleAdmin && actor.ID != appt.StudentID {
		return ErrUnauthorized
	}
	if appt.Status != model.StatusCompleted {
		return fmt.Errorf("%w: appointment is %s, not completed", ErrInvalidRating, appt.Status)
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating %d is outside 1-5", ErrInvalidRating, rating)
	}
	return s.store.AttachFeedback(ctx, appointmentID, rating, feedback)
}

// SetAvailability replaces a counselor's full weekly template set in one
// operation. An empty set is valid (counselor not yet onboarded or pausing
// bookings). maxSessionsPerDay <= 0 keeps the configured limit.
func (s *Service) SetAvailability(ctx context.Context, counselorID string, actor Actor, maxSessionsPerDay int, templates []model.AvailabilityTemplate) error {
	if actor.Role != RoleAdmin && !(actor.Role == RoleCounselor && actor.ID == counselorID) {
		return ErrUnauthorized
	}

	pol := s.policyFor(ctx, counselorID)
	seen := map[int]bool{}
	for _, t := range templates {
		if t.Weekday < 0 || t.Weekday > 6 {
			return fmt.Errorf("%w: weekday %d out of range", ErrInvalidTemplate, t.Weekday)
		}
		if seen[t.Weekday] {
			return fmt.Errorf("%w: duplicate entry for weekday %d", ErrInvalidTemplate, t.Weekday)
		}
		seen[t.Weekday] = true
		if t.StartMinute < 0 || t.EndMinute > model.MinutesPerDay || t.StartMinute >= t.EndMinute {
			return fmt.Errorf("%w: window %s-%s is empty or out of bounds",
				ErrInvalidTemplate, model.FormatMinute(t.StartMinute), model.FormatMinute(t.EndMinute))
		}
		if t.StartMinute%pol.GranularityMinutes != 0 || t.EndMinute%pol.GranularityMinutes != 0 {
			return fmt.Errorf("%w: window %s-%s is not aligned to %d minutes",
				ErrInvalidTemplate, model.FormatMinute(t.StartMinute), model.FormatMinute(t.EndMinute), pol.GranularityMinutes)
		}
	}

	return s.store.ReplaceTemplates(ctx, counselorID, maxSessionsPerDay, templates)
}

// GetAvailability returns the counselor's full current weekly set, empty if
// none configured.
func (s *Service) GetAvailability(ctx context.Context, counselorID string) ([]model.AvailabilityTemplate, error) {
	return s.store.Templates(ctx, counselorID)
}

// ListAppointments scopes the query to the caller: students and counselors
// see their own appointments, admins see anything.
func (s *Service) ListAppointments(ctx context.Context, actor Actor, q ListQuery) ([]model.Appointment, error) {
	switch actor.Role {
	case RoleStudent:
		q.StudentID = actor.ID
	case RoleCounselor:
		q.CounselorID = actor.ID
	case RoleAdmin:
	default:
		return nil, ErrUnauthorized
	}
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	return s.store.ListAppointments(ctx, q)
}

// ReconcileDailyCounts recomputes every counselor's daily counter for one
// date from the appointment records. Drift recovery for the counter cache.
func (s *Service) ReconcileDailyCounts(ctx context.Context, date string) (int, error) {
	if _, err := model.ParseDate(date); err != nil {
		return 0, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDate, date)
	}
	return s.store.RecomputeDailyCounts(ctx, date)
}

func (s *Service) policyFor(ctx context.Context, counselorID string) policy.Policy {
	if s.policy == nil {
		return policy.Default()
	}
	pol, err := s.policy.BookingPolicy(ctx, counselorID)
	if err != nil {
		s.logger.Warn("policy fetch failed; using defaults", "err", err, "counselor_id", counselorID)
		return policy.Default()
	}
	return pol
}

// checkDate enforces the booking horizon: not before today, not beyond
// today+horizonDays.
func (s *Service) checkDate(date string, horizonDays int) (time.Time, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDate, date)
	}
	today, err := model.ParseDate(s.now().In(s.loc).Format(model.DateLayout))
	if err != nil {
		return time.Time{}, err
	}
	if day.Before(today) {
		return time.Time{}, fmt.Errorf("%w: %s is in the past", ErrInvalidDate, date)
	}
	if day.After(today.AddDate(0, 0, horizonDays)) {
		return time.Time{}, fmt.Errorf("%w: %s is more than %d days ahead", ErrInvalidDate, date, horizonDays)
	}
	return day, nil
}

func (s *Service) templateForWeekday(ctx context.Context, counselorID string, weekday int) (*model.AvailabilityTemplate, error) {
	templates, err := s.store.Templates(ctx, counselorID)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}
	for i := range templates {
		if templates[i].Weekday == weekday && templates[i].Enabled {
			return &templates[i], nil
		}
	}
	return nil, nil
}

func (s *Service) participant(actor Actor, appt model.Appointment) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return actor.ID == appt.StudentID || actor.ID == appt.CounselorID
}

func (s *Service) counselorOrAdmin(actor Actor, appt model.Appointment) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return actor.Role == RoleCounselor && actor.ID == appt.CounselorID
}

func (s *Service) appointmentEvent(eventType string, appt *model.Appointment, extra map[string]any) (outbox.Event, error) {
	payload := map[string]any{
		"appointment_id":   appt.ID,
		"student_id":       appt.StudentID,
		"counselor_id":     appt.CounselorID,
		"date":             appt.Date,
		"start_time":       model.FormatMinute(appt.StartMinute),
		"duration_minutes": appt.DurationMinutes,
		"type":             appt.Type,
	}
	for k, v := range extra {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return outbox.Event{}, fmt.Errorf("build event payload: %w", err)
	}
	return outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     eventType,
		Payload:       body,
	}, nil
}
