// Package lifecycle owns the appointment status state machine. It is pure:
// callers supply the current clock value and the appointment's start
// instant, so every rule is testable without a database or wall clock.
package lifecycle

import (
	"time"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
)

// transitions lists the permitted status edges. Terminal states have no
// outgoing edges.
var transitions = map[string][]string{
	model.StatusScheduled: {model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted, model.StatusNoShow},
	model.StatusConfirmed: {model.StatusCancelled, model.StatusCompleted, model.StatusNoShow},
}

// Allowed reports whether the status edge from -> to exists at all,
// independent of timing or actor rules.
func Allowed(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Check validates a transition against both the edge table and the timing
// rules: cancellation only while the appointment is still in the future,
// completion at or after the scheduled start, no-show strictly after it.
func Check(from, to string, startAt, now time.Time) error {
	if model.TerminalStatus(from) {
		return &Violation{From: from, To: to, Reason: "appointment is in a terminal state"}
	}
	if !Allowed(from, to) {
		return &Violation{From: from, To: to, Reason: "transition not permitted"}
	}

	switch to {
	case model.StatusCancelled:
		if !startAt.After(now) {
			return &Violation{From: from, To: to, Reason: "appointment time has already passed"}
		}
	case model.StatusCompleted:
		if now.Before(startAt) {
			return &Violation{From: from, To: to, Reason: "appointment has not started yet"}
		}
	case model.StatusNoShow:
		if !now.After(startAt) {
			return &Violation{From: from, To: to, Reason: "appointment has not started yet"}
		}
	}
	return nil
}

// Violation describes a rejected transition.
type Violation struct {
	From   string
	To     string
	Reason string
}

func (v *Violation) Error() string {
	return "invalid transition " + v.From + " -> " + v.To + ": " + v.Reason
}
