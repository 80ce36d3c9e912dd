package booking

import "errors"

// Expected, recoverable outcomes of scheduling operations. Handlers map
// these to HTTP statuses with errors.Is; none of them is a fault. "Slot
// taken" in particular is a frequent, ordinary result of losing the race
// between seeing a slot and committing it.
var (
	ErrInvalidDate       = errors.New("date outside booking horizon or in the past")
	ErrNoAvailability    = errors.New("counselor has no availability for that day")
	ErrSlotMisaligned    = errors.New("time is not on a slot boundary")
	ErrSlotUnavailable   = errors.New("slot is already booked")
	ErrCapacityExceeded  = errors.New("counselor daily session limit reached")
	ErrInvalidTransition = errors.New("status transition not permitted")
	ErrUnauthorized      = errors.New("actor is not permitted to act on this appointment")
	ErrInvalidRating     = errors.New("rating out of range or appointment not completed")
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTemplate   = errors.New("invalid availability template")
)
