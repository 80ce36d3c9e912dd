package model

import "time"

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// MinutesPerDay bounds minute-of-day fields.
const MinutesPerDay = 24 * 60

// AvailabilityTemplate is one weekday entry of a counselor's recurring
// weekly availability. Weekday follows time.Weekday numbering (0 = Sunday).
// At most one window per (counselor, weekday); minutes are minute-of-day.
type AvailabilityTemplate struct {
	CounselorID string
	Weekday     int
	StartMinute int
	EndMinute   int
	Enabled     bool
}

// Counselor holds per-counselor scheduling configuration. Rows are created
// lazily the first time a counselor configures availability.
type Counselor struct {
	ID                string
	DisplayName       string
	MaxSessionsPerDay int
	Active            bool
}

// Slot is a derived, never-persisted candidate appointment time on a
// concrete date. Regenerated on every query.
type Slot struct {
	StartMinute     int
	DurationMinutes int
	Available       bool
}

// ParseDate validates a wire-format calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatMinute renders a minute-of-day as "15:04" for responses and logs.
func FormatMinute(m int) string {
	return time.Date(0, 1, 1, 0, m, 0, 0, time.UTC).Format("15:04")
}
