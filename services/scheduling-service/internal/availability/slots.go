package availability

import "github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"

// Generate derives the bookable slots for one calendar date from a weekly
// availability template. taken reports whether a non-cancelled appointment
// already occupies the slot starting at the given minute of day.
//
// The walk steps from StartMinute to EndMinute in granularity increments; a
// slot whose end would spill past EndMinute is dropped, not truncated. A nil
// or disabled template yields no slots — "no availability" is a normal
// state, not an error. Output is deterministic for a fixed ledger snapshot.
func Generate(tmpl *model.AvailabilityTemplate, granularityMinutes int, taken func(startMinute int) bool) []model.Slot {
	if tmpl == nil || !tmpl.Enabled || granularityMinutes <= 0 {
		return nil
	}
	if tmpl.StartMinute < 0 || tmpl.EndMinute > model.MinutesPerDay || tmpl.StartMinute >= tmpl.EndMinute {
		return nil
	}

	var slots []model.Slot
	for start := tmpl.StartMinute; start+granularityMinutes <= tmpl.EndMinute; start += granularityMinutes {
		available := true
		if taken != nil && taken(start) {
			available = false
		}
		slots = append(slots, model.Slot{
			StartMinute:     start,
			DurationMinutes: granularityMinutes,
			Available:       available,
		})
	}
	return slots
}

// Aligned reports whether a minute of day sits on a slot boundary of the
// template's window for the given granularity.
func Aligned(tmpl *model.AvailabilityTemplate, granularityMinutes, startMinute int) bool {
	if tmpl == nil || granularityMinutes <= 0 {
		return false
	}
	if startMinute < tmpl.StartMinute || startMinute+granularityMinutes > tmpl.EndMinute {
		return false
	}
	return (startMinute-tmpl.StartMinute)%granularityMinutes == 0
}
