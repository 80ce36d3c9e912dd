package model

import "time"

// Appointment statuses. Completed, cancelled and no-show are terminal.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Appointment session types.
const (
	TypeIndividual = "individual"
	TypeGroup      = "group"
	TypeEmergency  = "emergency"
)

type Appointment struct {
	ID              string
	StudentID       string
	CounselorID     string
	Date            string // "2006-01-02", campus-local calendar date
	StartMinute     int    // minute of day, 0..1439
	DurationMinutes int
	Type            string
	Status          string
	Notes           string
	StudentNotes    string
	CounselorNotes  string
	MeetingLink     string
	Location        string
	Rating          *int
	Feedback        string
	CancelledAt     *time.Time
	CancelReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StartAt resolves the appointment's calendar date plus start minute into a
// concrete instant. Dates are stored timezone-naive; loc says which wall
// clock they were written against.
func (a Appointment) StartAt(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, a.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(a.StartMinute) * time.Minute), nil
}

func (a Appointment) Terminal() bool {
	return TerminalStatus(a.Status)
}

func TerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func ValidType(t string) bool {
	switch t {
	case TypeIndividual, TypeGroup, TypeEmergency:
		return true
	}
	return false
}
