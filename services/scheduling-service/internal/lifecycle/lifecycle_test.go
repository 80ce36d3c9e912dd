package lifecycle

import (
	"testing"
	"time"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
)

func TestAllowed_EdgeTable(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.StatusScheduled, model.StatusConfirmed, true},
		{model.StatusScheduled, model.StatusCancelled, true},
		{model.StatusScheduled, model.StatusCompleted, true},
		{model.StatusScheduled, model.StatusNoShow, true},
		{model.StatusConfirmed, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusConfirmed, model.StatusNoShow, true},
		{model.StatusCancelled, model.StatusConfirmed, false},
		{model.StatusCancelled, model.StatusCancelled, false},
		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusNoShow, model.StatusCompleted, false},
		{model.StatusConfirmed, model.StatusScheduled, false},
	}
	for _, tc := range cases {
		if got := Allowed(tc.from, tc.to); got != tc.want {
			t.Fatalf("Allowed(%s, %s): expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestCheck_CancelOnlyBeforeStart(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	if err := Check(model.StatusScheduled, model.StatusCancelled, start, start.Add(-time.Hour)); err != nil {
		t.Fatalf("expected future cancel to pass, got %v", err)
	}
	if err := Check(model.StatusScheduled, model.StatusCancelled, start, start); err == nil {
		t.Fatal("expected cancel at start time to fail")
	}
	if err := Check(model.StatusConfirmed, model.StatusCancelled, start, start.Add(time.Minute)); err == nil {
		t.Fatal("expected cancel after start to fail")
	}
}

func TestCheck_CompleteAtOrAfterStart(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	if err := Check(model.StatusConfirmed, model.StatusCompleted, start, start.Add(-time.Minute)); err == nil {
		t.Fatal("expected completion before start to fail")
	}
	if err := Check(model.StatusConfirmed, model.StatusCompleted, start, start); err != nil {
		t.Fatalf("expected completion at start to pass, got %v", err)
	}
	if err := Check(model.StatusConfirmed, model.StatusCompleted, start, start.Add(time.Hour)); err != nil {
		t.Fatalf("expected completion after start to pass, got %v", err)
	}
}

func TestCheck_NoShowStrictlyAfterStart(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	if err := Check(model.StatusConfirmed, model.StatusNoShow, start, start); err == nil {
		t.Fatal("expected no-show at start time to fail")
	}
	if err := Check(model.StatusConfirmed, model.StatusNoShow, start, start.Add(time.Minute)); err != nil {
		t.Fatalf("expected no-show after start to pass, got %v", err)
	}
}

func TestCheck_TerminalStatesReject(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	now := start.Add(-time.Hour)

	for _, from := range []string{model.StatusCancelled, model.StatusCompleted, model.StatusNoShow} {
		for _, to := range []string{model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted} {
			if err := Check(from, to, start, now); err == nil {
				t.Fatalf("expected %s -> %s to fail", from, to)
			}
		}
	}
}
