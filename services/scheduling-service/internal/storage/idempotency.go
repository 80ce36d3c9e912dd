package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type idempotencyRecord struct {
	AppointmentID string
}

// lockIdempotencyKey claims the (student, key) pair for this transaction.
// The first booking with a given key inserts the row and holds it until
// commit; a retry arriving later finds the finalized appointment id and
// replays the original response. A concurrent retry blocks on the row lock
// until the first transaction resolves.
func (r *Repository) lockIdempotencyKey(ctx context.Context, tx pgx.Tx, studentID, key string) (idempotencyRecord, bool, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (student_id, idempotency_key)
		VALUES ($1, $2)
		ON CONFLICT (student_id, idempotency_key) DO NOTHING
	`, studentID, key)
	if err != nil {
		return idempotencyRecord{}, false, fmt.Errorf("claim idempotency key: %w", err)
	}

	var rec idempotencyRecord
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(appointment_id::text, '')
		FROM booking_idempotency_keys
		WHERE student_id = $1 AND idempotency_key = $2
		FOR UPDATE
	`, studentID, key).Scan(&rec.AppointmentID)
	if err != nil {
		return idempotencyRecord{}, false, fmt.Errorf("lock idempotency key: %w", err)
	}
	return rec, rec.AppointmentID != "", nil
}

func (r *Repository) finalizeIdempotency(ctx context.Context, tx pgx.Tx, studentID, key, appointmentID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET appointment_id = $3, finalized_at = now()
		WHERE student_id = $1 AND idempotency_key = $2
	`, studentID, key, appointmentID)
	if err != nil {
		return fmt.Errorf("finalize idempotency key: %w", err)
	}
	return nil
}
