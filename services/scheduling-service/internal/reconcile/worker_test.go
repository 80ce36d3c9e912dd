package reconcile

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeRecomputer struct {
	dates []string
}

func (f *fakeRecomputer) RecomputeDailyCounts(_ context.Context, date string) (int, error) {
	f.dates = append(f.dates, date)
	return 0, nil
}

func TestSweepCoversWindow(t *testing.T) {
	store := &fakeRecomputer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(store, logger, Config{Days: 3})
	w.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }

	w.sweep(context.Background())

	want := []string{"2026-03-02", "2026-03-03", "2026-03-04"}
	if len(store.dates) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(store.dates))
	}
	for i := range want {
		if store.dates[i] != want[i] {
			t.Fatalf("date %d: expected %s, got %s", i, want[i], store.dates[i])
		}
	}
}
