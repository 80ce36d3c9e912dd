package storage

import (
	"context"
	"fmt"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
)

func (r *Repository) Templates(ctx context.Context, counselorID string) ([]model.AvailabilityTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT counselor_id, weekday, start_minute, end_minute, enabled
		FROM availability_templates
		WHERE counselor_id = $1
		ORDER BY weekday
	`, counselorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []model.AvailabilityTemplate
	for rows.Next() {
		var tmpl model.AvailabilityTemplate
		if err := rows.Scan(&tmpl.CounselorID, &tmpl.Weekday, &tmpl.StartMinute, &tmpl.EndMinute, &tmpl.Enabled); err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

// ReplaceTemplates swaps the counselor's weekly pattern atomically. Existing
// appointments are untouched; the new pattern only shapes slots from the next
// availability query onward.
func (r *Repository) ReplaceTemplates(ctx context.Context, counselorID string, maxSessionsPerDay int, templates []model.AvailabilityTemplate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// A non-positive limit means "keep what is configured"; new counselors
	// fall back to the column default.
	_, err = tx.Exec(ctx, `
		INSERT INTO counselors (id, max_sessions_per_day)
		VALUES ($1, CASE WHEN $2 > 0 THEN $2 ELSE 8 END)
		ON CONFLICT (id) DO UPDATE
		SET max_sessions_per_day = CASE WHEN $2 > 0 THEN $2 ELSE counselors.max_sessions_per_day END,
		    updated_at = now()
	`, counselorID, maxSessionsPerDay)
	if err != nil {
		return fmt.Errorf("upsert counselor: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM availability_templates WHERE counselor_id = $1`, counselorID); err != nil {
		return fmt.Errorf("clear templates: %w", err)
	}

	for _, tmpl := range templates {
		_, err := tx.Exec(ctx, `
			INSERT INTO availability_templates (counselor_id, weekday, start_minute, end_minute, enabled)
			VALUES ($1, $2, $3, $4, $5)
		`, counselorID, tmpl.Weekday, tmpl.StartMinute, tmpl.EndMinute, tmpl.Enabled)
		if err != nil {
			return fmt.Errorf("insert template: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *Repository) Counselor(ctx context.Context, id string) (model.Counselor, bool, error) {
	var c model.Counselor
	err := r.pool.QueryRow(ctx, `
		SELECT id, COALESCE(display_name, ''), max_sessions_per_day, active
		FROM counselors
		WHERE id = $1
	`, id).Scan(&c.ID, &c.DisplayName, &c.MaxSessionsPerDay, &c.Active)
	if err != nil {
		if IsNotFound(err) {
			return model.Counselor{}, false, nil
		}
		return model.Counselor{}, false, err
	}
	return c, true, nil
}

// RecomputeDailyCounts rebuilds the daily counters for one date from the
// appointment rows themselves. Cancellations release capacity at transition
// time, so in the steady state this touches nothing; it exists to repair
// drift after manual data surgery or a partially applied migration.
func (r *Repository) RecomputeDailyCounts(ctx context.Context, date string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	upserted, err := tx.Exec(ctx, `
		INSERT INTO counselor_daily_sessions (counselor_id, session_date, session_count)
		SELECT counselor_id, $1::date, COUNT(*)
		FROM appointments
		WHERE date = $1::date AND status <> 'cancelled'
		GROUP BY counselor_id
		ON CONFLICT (counselor_id, session_date) DO UPDATE
		SET session_count = EXCLUDED.session_count,
		    updated_at = now()
		WHERE counselor_daily_sessions.session_count IS DISTINCT FROM EXCLUDED.session_count
	`, date)
	if err != nil {
		return 0, fmt.Errorf("recompute counters: %w", err)
	}

	zeroed, err := tx.Exec(ctx, `
		UPDATE counselor_daily_sessions
		SET session_count = 0, updated_at = now()
		WHERE session_date = $1::date
		  AND session_count <> 0
		  AND counselor_id NOT IN (
			SELECT counselor_id FROM appointments
			WHERE date = $1::date AND status <> 'cancelled'
		  )
	`, date)
	if err != nil {
		return 0, fmt.Errorf("zero stale counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(upserted.RowsAffected() + zeroed.RowsAffected()), nil
}
