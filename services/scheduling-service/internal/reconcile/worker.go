// Package reconcile periodically rebuilds the per-counselor daily session
// counters from the appointment records. Counters are maintained inline by
// booking and cancellation; the worker repairs drift introduced outside the
// service, such as manual data fixes.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/model"
)

type Recomputer interface {
	RecomputeDailyCounts(ctx context.Context, date string) (int, error)
}

type Worker struct {
	store    Recomputer
	logger   *slog.Logger
	interval time.Duration
	days     int
	now      func() time.Time
}

type Config struct {
	// Interval between reconciliation sweeps.
	Interval time.Duration
	// Days ahead of today to cover, today included.
	Days int
}

func NewWorker(store Recomputer, logger *slog.Logger, cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Days <= 0 {
		cfg.Days = 7
	}
	return &Worker{
		store:    store,
		logger:   logger,
		interval: cfg.Interval,
		days:     cfg.Days,
		now:      time.Now,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	today := w.now().UTC()
	for i := 0; i < w.days; i++ {
		date := today.AddDate(0, 0, i).Format(model.DateLayout)
		changed, err := w.store.RecomputeDailyCounts(ctx, date)
		if err != nil {
			w.logger.Error("reconcile sweep failed", "date", date, "err", err)
			return
		}
		if changed > 0 {
			w.logger.Warn("daily counters drifted", "date", date, "rows_changed", changed)
		}
	}
}
