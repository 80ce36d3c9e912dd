// Package handlers exposes the scheduling HTTP API. Handlers decode and
// validate the wire shape, delegate to the booking coordinator, and map its
// error kinds onto status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/booking"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
)

type SchedulingHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewSchedulingHandler(svc *booking.Service, logger *slog.Logger) *SchedulingHandler {
	return &SchedulingHandler{svc: svc, logger: logger}
}

func (h *SchedulingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/slots", h.Slots)
	mux.HandleFunc("/api/v1/appointments", h.Appointments)
	mux.HandleFunc("/api/v1/appointments/cancel", h.Cancel)
	mux.HandleFunc("/api/v1/appointments/transition", h.Transition)
	mux.HandleFunc("/api/v1/appointments/feedback", h.Feedback)
	mux.HandleFunc("/api/v1/availability", h.Availability)
	mux.HandleFunc("/api/v1/admin/reconcile", h.Reconcile)
}

type slotItem struct {
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Available       bool   `json:"available"`
}

type appointmentItem struct {
	AppointmentID   string `json:"appointment_id"`
	StudentID       string `json:"student_id"`
	CounselorID     string `json:"counselor_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Type            string `json:"type"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	MeetingLink     string `json:"meeting_link,omitempty"`
	Location        string `json:"location,omitempty"`
	Rating          *int   `json:"rating,omitempty"`
	Feedback        string `json:"feedback,omitempty"`
	CancelledAt     string `json:"cancelled_at,omitempty"`
	CancelReason    string `json:"cancel_reason,omitempty"`
	CreatedAt       string `json:"created_at"`
}

func toAppointmentItem(appt model.Appointment) appointmentItem {
	item := appointmentItem{
		AppointmentID:   appt.ID,
		StudentID:       appt.StudentID,
		CounselorID:     appt.CounselorID,
		Date:            appt.Date,
		StartTime:       model.FormatMinute(appt.StartMinute),
		DurationMinutes: appt.DurationMinutes,
		Type:            appt.Type,
		Status:          appt.Status,
		Notes:           appt.Notes,
		MeetingLink:     appt.MeetingLink,
		Location:        appt.Location,
		Rating:          appt.Rating,
		Feedback:        appt.Feedback,
		CancelReason:    appt.CancelReason,
		CreatedAt:       appt.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if appt.CancelledAt != nil {
		item.CancelledAt = appt.CancelledAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return item
}

// Slots lists bookable slots for one counselor on one date.
func (h *SchedulingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counselorID := strings.TrimSpace(r.URL.Query().Get("counselor_id"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if counselorID == "" || date == "" {
		http.Error(w, "counselor_id and date required", http.StatusBadRequest)
		return
	}

	slots, err := h.svc.AvailableSlots(r.Context(), counselorID, date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			StartTime:       model.FormatMinute(s.StartMinute),
			DurationMinutes: s.DurationMinutes,
			Available:       s.Available,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": items})
}

type createAppointmentRequest struct {
	CounselorID     string `json:"counselor_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Type            string `json:"type"`
	Notes           string `json:"notes"`
}

// Appointments handles booking (POST) and listing (GET).
func (h *SchedulingHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SchedulingHandler) create(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if actor.ID == "" || actor.Role != booking.RoleStudent {
		http.Error(w, "only students book appointments", http.StatusForbidden)
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.CounselorID = strings.TrimSpace(req.CounselorID)
	req.Date = strings.TrimSpace(req.Date)
	if req.CounselorID == "" || req.Date == "" || req.StartTime == "" {
		http.Error(w, "counselor_id, date and start_time required", http.StatusBadRequest)
		return
	}
	startMinute, err := parseClock(req.StartTime)
	if err != nil {
		http.Error(w, "start_time must be HH:MM", http.StatusBadRequest)
		return
	}
	if req.Type != "" && !model.ValidType(req.Type) {
		http.Error(w, "unknown appointment type", http.StatusBadRequest)
		return
	}

	appt, replayed, err := h.svc.Book(r.Context(), booking.BookRequest{
		StudentID:       actor.ID,
		CounselorID:     req.CounselorID,
		Date:            req.Date,
		StartMinute:     startMinute,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Notes:           strings.TrimSpace(req.Notes),
		IdempotencyKey:  strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, toAppointmentItem(appt))
}

func (h *SchedulingHandler) list(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if actor.ID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	q := booking.ListQuery{
		StudentID:   strings.TrimSpace(r.URL.Query().Get("student_id")),
		CounselorID: strings.TrimSpace(r.URL.Query().Get("counselor_id")),
		Date:        strings.TrimSpace(r.URL.Query().Get("date")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		q.Limit = n
	}

	appts, err := h.svc.ListAppointments(r.Context(), actor, q)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, appt := range appts {
		items = append(items, toAppointmentItem(appt))
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": items})
}

type cancelRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

func (h *SchedulingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor := actorFrom(r)
	if actor.ID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Cancel(r.Context(), req.AppointmentID, actor, strings.TrimSpace(req.Reason))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentItem(appt))
}

type transitionRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
}

func (h *SchedulingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor := actorFrom(r)
	if actor.ID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Status = strings.TrimSpace(req.Status)
	if req.AppointmentID == "" || req.Status == "" {
		http.Error(w, "appointment_id and status required", http.StatusBadRequest)
		return
	}

	appt, err := h.svc.Transition(r.Context(), req.AppointmentID, actor, req.Status, strings.TrimSpace(req.Reason))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentItem(appt))
}

type feedbackRequest struct {
	AppointmentID string `json:"appointment_id"`
	Rating        int    `json:"rating"`
	Feedback      string `json:"feedback"`
}

func (h *SchedulingHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor := actorFrom(r)
	if actor.ID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	if err := h.svc.AttachFeedback(r.Context(), req.AppointmentID, actor, req.Rating, strings.TrimSpace(req.Feedback)); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

type availabilityEntry struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Enabled   bool   `json:"enabled"`
}

type putAvailabilityRequest struct {
	CounselorID       string              `json:"counselor_id"`
	MaxSessionsPerDay int                 `json:"max_sessions_per_day"`
	Templates         []availabilityEntry `json:"templates"`
}

// Availability reads (GET) or replaces (PUT) a counselor's weekly pattern.
func (h *SchedulingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		counselorID := strings.TrimSpace(r.URL.Query().Get("counselor_id"))
		if counselorID == "" {
			http.Error(w, "counselor_id required", http.StatusBadRequest)
			return
		}
		templates, err := h.svc.GetAvailability(r.Context(), counselorID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		entries := make([]availabilityEntry, 0, len(templates))
		for _, t := range templates {
			entries = append(entries, availabilityEntry{
				Weekday:   t.Weekday,
				StartTime: model.FormatMinute(t.StartMinute),
				EndTime:   model.FormatMinute(t.EndMinute),
				Enabled:   t.Enabled,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"counselor_id": counselorID, "templates": entries})

	case http.MethodPut:
		actor := actorFrom(r)
		if actor.ID == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}

		var req putAvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		counselorID := strings.TrimSpace(req.CounselorID)
		if counselorID == "" {
			counselorID = actor.ID
		}

		templates := make([]model.AvailabilityTemplate, 0, len(req.Templates))
		for _, e := range req.Templates {
			start, err := parseClock(e.StartTime)
			if err != nil {
				http.Error(w, "start_time must be HH:MM", http.StatusBadRequest)
				return
			}
			end, err := parseClock(e.EndTime)
			if err != nil {
				http.Error(w, "end_time must be HH:MM", http.StatusBadRequest)
				return
			}
			templates = append(templates, model.AvailabilityTemplate{
				CounselorID: counselorID,
				Weekday:     e.Weekday,
				StartMinute: start,
				EndMinute:   end,
				Enabled:     e.Enabled,
			})
		}

		if err := h.svc.SetAvailability(r.Context(), counselorID, actor, req.MaxSessionsPerDay, templates); err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type reconcileRequest struct {
	Date string `json:"date"`
}

func (h *SchedulingHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if actorFrom(r).Role != booking.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	changed, err := h.svc.ReconcileDailyCounts(r.Context(), strings.TrimSpace(req.Date))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": req.Date, "rows_changed": changed})
}

func (h *SchedulingHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrSlotMisaligned),
		errors.Is(err, booking.ErrInvalidTemplate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, booking.ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, booking.ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, booking.ErrNoAvailability),
		errors.Is(err, booking.ErrCapacityExceeded),
		errors.Is(err, booking.ErrInvalidRating):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("request failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseClock converts "HH:MM" to a minute of day.
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, errors.New("missing colon")
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, err
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, errors.New("out of range")
	}
	return hour*60 + minute, nil
}
