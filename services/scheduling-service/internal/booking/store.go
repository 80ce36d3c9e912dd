package booking

import (
	"context"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/outbox"
)

// Store is the ledger boundary the coordinator writes through. The Postgres
// implementation lives in internal/storage; tests supply an in-memory one.
//
// The three mutating appointment operations are atomic units: conflict
// check, capacity counter and outbox event commit or roll back together, so
// under concurrent attempts for one (counselor, date, time) key exactly one
// caller wins and the rest observe ErrSlotUnavailable.
type Store interface {
	// Templates returns the full weekly set for a counselor, empty if none
	// configured.
	Templates(ctx context.Context, counselorID string) ([]model.AvailabilityTemplate, error)

	// ReplaceTemplates swaps the whole weekly set in one transaction,
	// creating the counselor record if needed. maxSessionsPerDay <= 0 leaves
	// the configured value untouched.
	ReplaceTemplates(ctx context.Context, counselorID string, maxSessionsPerDay int, templates []model.AvailabilityTemplate) error

	// Counselor loads scheduling configuration; ok is false when the
	// counselor has never been configured.
	Counselor(ctx context.Context, id string) (c model.Counselor, ok bool, err error)

	// BookedStartMinutes returns the start minutes of non-cancelled
	// appointments for the counselor on the date.
	BookedStartMinutes(ctx context.Context, counselorID, date string) (map[int]bool, error)

	// CreateAppointment inserts the appointment, increments the counselor's
	// daily counter guarded by maxSessionsPerDay, and stages evt, all in one
	// transaction. Returns ErrSlotUnavailable on a key conflict and
	// ErrCapacityExceeded when the counter is full. A non-empty
	// idempotencyKey that was already finalized replays the original
	// appointment with replayed=true and no new write.
	CreateAppointment(ctx context.Context, appt *model.Appointment, maxSessionsPerDay int, idempotencyKey string, evt outbox.Event) (created model.Appointment, replayed bool, err error)

	// Appointment loads one record; ErrNotFound when absent.
	Appointment(ctx context.Context, id string) (model.Appointment, error)

	// TransitionStatus compare-and-sets status from -> to, optionally
	// releasing one unit of daily capacity, staging evt in the same
	// transaction. Returns ErrInvalidTransition when the row's status no
	// longer matches from (a concurrent transition won).
	TransitionStatus(ctx context.Context, id, from, to, cancelReason string, releaseCapacity bool, evt outbox.Event) (model.Appointment, error)

	// AttachFeedback stores a post-session rating and feedback text.
	AttachFeedback(ctx context.Context, id string, rating int, feedback string) error

	// ListAppointments returns records matching the non-empty filters,
	// newest first.
	ListAppointments(ctx context.Context, q ListQuery) ([]model.Appointment, error)

	// RecomputeDailyCounts rewrites every daily counter for the date from
	// the appointment set and reports how many rows changed.
	RecomputeDailyCounts(ctx context.Context, date string) (int, error)
}

type ListQuery struct {
	StudentID   string
	CounselorID string
	Date        string
	Limit       int
}
