package availability

import (
	"testing"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
)

func window(start, end int) *model.AvailabilityTemplate {
	return &model.AvailabilityTemplate{
		CounselorID: "c-1",
		Weekday:     1,
		StartMinute: start,
		EndMinute:   end,
		Enabled:     true,
	}
}

func TestGenerate_MorningWindow(t *testing.T) {
	// 09:00-12:00 at 60 minutes yields 09:00, 10:00, 11:00.
	slots := Generate(window(540, 720), 60, nil)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	for i, want := range []int{540, 600, 660} {
		if slots[i].StartMinute != want {
			t.Fatalf("slot %d: expected start %d, got %d", i, want, slots[i].StartMinute)
		}
		if slots[i].DurationMinutes != 60 {
			t.Fatalf("slot %d: expected duration 60, got %d", i, slots[i].DurationMinutes)
		}
		if !slots[i].Available {
			t.Fatalf("slot %d: expected available", i)
		}
	}
}

func TestGenerate_MarksTakenSlots(t *testing.T) {
	booked := map[int]bool{600: true}
	slots := Generate(window(540, 720), 60, func(start int) bool { return booked[start] })
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	if !slots[0].Available || slots[1].Available || !slots[2].Available {
		t.Fatalf("expected only 10:00 taken, got %+v", slots)
	}
}

func TestGenerate_DropsSpillover(t *testing.T) {
	// 09:00-10:30 at 60 minutes: only 09:00 fits whole; 10:00 would spill.
	slots := Generate(window(540, 630), 60, nil)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if slots[0].StartMinute != 540 {
		t.Fatalf("expected 09:00, got %d", slots[0].StartMinute)
	}
}

func TestGenerate_DisabledOrMissing(t *testing.T) {
	tmpl := window(540, 720)
	tmpl.Enabled = false
	if slots := Generate(tmpl, 60, nil); slots != nil {
		t.Fatalf("expected no slots for disabled template, got %d", len(slots))
	}
	if slots := Generate(nil, 60, nil); slots != nil {
		t.Fatalf("expected no slots for nil template, got %d", len(slots))
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	first := Generate(window(540, 1020), 60, nil)
	second := Generate(window(540, 1020), 60, nil)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("slot %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestAligned(t *testing.T) {
	tmpl := window(540, 720)
	cases := []struct {
		start int
		want  bool
	}{
		{540, true},
		{600, true},
		{660, true},
		{630, false}, // off boundary
		{720, false}, // would end past the window
		{480, false}, // before the window
	}
	for _, tc := range cases {
		if got := Aligned(tmpl, 60, tc.start); got != tc.want {
			t.Fatalf("Aligned(%d): expected %v, got %v", tc.start, tc.want, got)
		}
	}
}
