package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/abrezinsky/triviarooms/internal/logger"
)

// RoomPurger deletes rooms that have not changed since the cutoff
type RoomPurger interface {
	DeleteRoomsIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor periodically removes idle rooms along with their players and answers
type Janitor struct {
	log       logger.Logger
	repo      RoomPurger
	clock     clockwork.Clock
	retention time.Duration
	interval  time.Duration
	scheduler gocron.Scheduler
}

// New creates a janitor. A nil clock uses the real clock.
func New(log logger.Logger, repo RoomPurger, clock clockwork.Clock, retention, interval time.Duration) *Janitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Janitor{
		log:       log.With("component", "janitor"),
		repo:      repo,
		clock:     clock,
		retention: retention,
		interval:  interval,
	}
}

// Enabled reports whether a retention window is configured
func (j *Janitor) Enabled() bool {
	return j.retention > 0 && j.interval > 0
}

// RunOnce deletes every room idle for longer than the retention window
func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.clock.Now().Add(-j.retention)
	deleted, err := j.repo.DeleteRoomsIdleSince(ctx, cutoff)
	if err != nil {
		j.log.Error("Failed to purge idle rooms", "error", err)
		return 0, fmt.Errorf("purge idle rooms: %w", err)
	}
	if deleted > 0 {
		j.log.Info("Purged idle rooms", "count", deleted, "cutoff", cutoff.Format(time.RFC3339))
	} else {
		j.log.Debug("No idle rooms to purge")
	}
	return deleted, nil
}

// Start schedules RunOnce every interval. It is a no-op when disabled.
func (j *Janitor) Start() error {
	if !j.Enabled() {
		j.log.Info("Room retention disabled")
		return nil
	}

	sched, err := gocron.NewScheduler(gocron.WithClock(j.clock))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_, _ = j.RunOnce(ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule purge job: %w", err)
	}

	sched.Start()
	j.scheduler = sched
	j.log.Info("Janitor started", "retention", j.retention.String(), "interval", j.interval.String())
	return nil
}

// Stop shuts the scheduler down and waits for a running purge to finish
func (j *Janitor) Stop() error {
	if j.scheduler == nil {
		return nil
	}
	err := j.scheduler.Shutdown()
	j.scheduler = nil
	return err
}
