package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Janitor periodically purges records that have not been touched within
// the retention window. Completed requests are kept around so users can
// re-download artifacts, but not forever.
type Janitor struct {
	store     Store
	retention time.Duration
	scheduler gocron.Scheduler
}

// NewJanitor schedules a purge every interval, deleting records older
// than retention.
func NewJanitor(st Store, interval, retention time.Duration) (*Janitor, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	j := &Janitor{store: st, retention: retention, scheduler: s}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.purge),
		gocron.WithName("record-purge"),
	)
	if err != nil {
		return nil, fmt.Errorf("scheduling purge job: %w", err)
	}
	return j, nil
}

// Start begins the purge schedule.
func (j *Janitor) Start() {
	slog.Info("Starting store janitor", "retention", j.retention.String())
	j.scheduler.Start()
}

// Stop shuts the schedule down.
func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}

func (j *Janitor) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	stale, err := j.store.ListStale(ctx, cutoff)
	if err != nil {
		slog.Error("Janitor listing failed", "error", err)
		return
	}
	for _, rec := range stale {
		if err := j.store.Delete(ctx, rec.ID); err != nil {
			slog.Warn("Janitor delete failed", "id", rec.ID, "error", err)
			continue
		}
		slog.Debug("Purged stale record", "id", rec.ID, "updated_at", rec.UpdatedAt)
	}
	if len(stale) > 0 {
		slog.Info("Purged stale records", "count", len(stale))
	}
}
