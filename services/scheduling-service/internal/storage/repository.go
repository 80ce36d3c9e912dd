// Package storage is the Postgres ledger behind the booking coordinator.
// The conflict and capacity invariants live here, in the shared store, so
// they hold across service replicas: a partial unique index on
// (counselor_id, date, start_minute) for non-cancelled appointments, and a
// guarded increment on the per-counselor daily counter.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rafid-karim/counselhub/libs/db"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/booking"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/outbox"
)

type Repository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewRepository(pool *db.Pool, outboxRepo *outbox.Repository) *Repository {
	return &Repository{pool: pool, outbox: outboxRepo}
}

const appointmentColumns = `
	id::text, student_id, counselor_id, date::text, start_minute, duration_minutes,
	type, status, COALESCE(notes, ''), COALESCE(student_notes, ''), COALESCE(counselor_notes, ''),
	COALESCE(meeting_link, ''), COALESCE(location, ''), rating, COALESCE(feedback, ''),
	cancelled_at, COALESCE(cancel_reason, ''), created_at, updated_at`

func (r *Repository) CreateAppointment(ctx context.Context, appt *model.Appointment, maxSessionsPerDay int, idempotencyKey string, evt outbox.Event) (model.Appointment, bool, error) {
	if maxSessionsPerDay < 1 {
		return model.Appointment{}, false, booking.ErrCapacityExceeded
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if idempotencyKey != "" {
		rec, exists, err := r.lockIdempotencyKey(ctx, tx, appt.StudentID, idempotencyKey)
		if err != nil {
			return model.Appointment{}, false, err
		}
		if exists && rec.AppointmentID != "" {
			prior, err := r.getAppointment(ctx, tx, rec.AppointmentID)
			if err != nil {
				return model.Appointment{}, false, err
			}
			if err := tx.Commit(ctx); err != nil {
				return model.Appointment{}, false, err
			}
			return prior, true, nil
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(id, student_id, counselor_id, date, start_minute, duration_minutes, type, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, appt.ID, appt.StudentID, appt.CounselorID, appt.Date, appt.StartMinute,
		appt.DurationMinutes, appt.Type, appt.Status, appt.Notes).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		if IsConflict(err) {
			return model.Appointment{}, false, booking.ErrSlotUnavailable
		}
		return model.Appointment{}, false, fmt.Errorf("insert appointment: %w", err)
	}

	// Guarded counter: the increment only lands while the counter is below
	// the limit, making the capacity check and the write one serializable
	// unit with the insert above.
	var count int
	err = tx.QueryRow(ctx, `
		INSERT INTO counselor_daily_sessions (counselor_id, session_date, session_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (counselor_id, session_date) DO UPDATE
		SET session_count = counselor_daily_sessions.session_count + 1,
		    updated_at = now()
		WHERE counselor_daily_sessions.session_count < $3
		RETURNING session_count
	`, appt.CounselorID, appt.Date, maxSessionsPerDay).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Appointment{}, false, booking.ErrCapacityExceeded
		}
		return model.Appointment{}, false, fmt.Errorf("increment daily counter: %w", err)
	}

	if err := r.outbox.Insert(ctx, tx, evt); err != nil {
		return model.Appointment{}, false, fmt.Errorf("stage outbox event: %w", err)
	}

	if idempotencyKey != "" {
		if err := r.finalizeIdempotency(ctx, tx, appt.StudentID, idempotencyKey, appt.ID); err != nil {
			return model.Appointment{}, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, false, fmt.Errorf("commit: %w", err)
	}
	return *appt, false, nil
}

func (r *Repository) Appointment(ctx context.Context, id string) (model.Appointment, error) {
	return r.getAppointment(ctx, r.pool, id)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) getAppointment(ctx context.Context, q rowQuerier, id string) (model.Appointment, error) {
	row := q.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if IsNotFound(err) {
			return model.Appointment{}, booking.ErrNotFound
		}
		return model.Appointment{}, fmt.Errorf("load appointment: %w", err)
	}
	return appt, nil
}

func (r *Repository) TransitionStatus(ctx context.Context, id, from, to, cancelReason string, releaseCapacity bool, evt outbox.Event) (model.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $3,
		    cancelled_at = CASE WHEN $3 = 'cancelled' THEN now() ELSE cancelled_at END,
		    cancel_reason = CASE WHEN $3 = 'cancelled' THEN $4 ELSE cancel_reason END,
		    updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+appointmentColumns+`
	`, id, from, to, cancelReason)
	appt, err := scanAppointment(row)
	if err != nil {
		if IsNotFound(err) {
			// Row exists but the status moved under us, or the id is gone.
			if _, lookupErr := r.getAppointment(ctx, tx, id); lookupErr != nil {
				return model.Appointment{}, lookupErr
			}
			return model.Appointment{}, booking.ErrInvalidTransition
		}
		return model.Appointment{}, fmt.Errorf("update status: %w", err)
	}

	if releaseCapacity {
		if _, err := tx.Exec(ctx, `
			UPDATE counselor_daily_sessions
			SET session_count = GREATEST(session_count - 1, 0),
			    updated_at = now()
			WHERE counselor_id = $1 AND session_date = $2
		`, appt.CounselorID, appt.Date); err != nil {
			return model.Appointment{}, fmt.Errorf("release daily counter: %w", err)
		}
	}

	if err := r.outbox.Insert(ctx, tx, evt); err != nil {
		return model.Appointment{}, fmt.Errorf("stage outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, fmt.Errorf("commit: %w", err)
	}
	return appt, nil
}

func (r *Repository) AttachFeedback(ctx context.Context, id string, rating int, feedback string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET rating = $2, feedback = $3, updated_at = now()
		WHERE id = $1 AND status = 'completed'
	`, id, rating, feedback)
	if err != nil {
		return fmt.Errorf("attach feedback: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrInvalidRating
	}
	return nil
}

// AttachMeetingDetails stores the link/location handed to us by the meeting
// provisioning service. The ledger keeps whatever value it is given.
func (r *Repository) AttachMeetingDetails(ctx context.Context, id, meetingLink, location string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET meeting_link = $2, location = $3, updated_at = now()
		WHERE id = $1 AND status NOT IN ('cancelled')
	`, id, meetingLink, location)
	if err != nil {
		return fmt.Errorf("attach meeting details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (r *Repository) BookedStartMinutes(ctx context.Context, counselorID, date string) (map[int]bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_minute
		FROM appointments
		WHERE counselor_id = $1 AND date = $2 AND status <> 'cancelled'
	`, counselorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := map[int]bool{}
	for rows.Next() {
		var m int
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		taken[m] = true
	}
	return taken, rows.Err()
}

func (r *Repository) ListAppointments(ctx context.Context, q booking.ListQuery) ([]model.Appointment, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE ($1 = '' OR student_id = $1)
		  AND ($2 = '' OR counselor_id = $2)
		  AND ($3 = '' OR date::text = $3)
		ORDER BY date DESC, start_minute DESC
		LIMIT $4
	`, q.StudentID, q.CounselorID, q.Date, q.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var rating *int32
	var cancelledAt *time.Time
	err := row.Scan(
		&appt.ID,
		&appt.StudentID,
		&appt.CounselorID,
		&appt.Date,
		&appt.StartMinute,
		&appt.DurationMinutes,
		&appt.Type,
		&appt.Status,
		&appt.Notes,
		&appt.StudentNotes,
		&appt.CounselorNotes,
		&appt.MeetingLink,
		&appt.Location,
		&rating,
		&appt.Feedback,
		&cancelledAt,
		&appt.CancelReason,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	if rating != nil {
		v := int(*rating)
		appt.Rating = &v
	}
	appt.CancelledAt = cancelledAt
	return appt, nil
}

// IsConflict reports a unique or exclusion violation — for appointments,
// the non-cancelled (counselor, date, start_minute) key.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23P01")
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
