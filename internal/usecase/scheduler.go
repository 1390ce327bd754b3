package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"TweetCleaner/internal/ports"
)

// Scheduler wires the cron-like driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	request  Request
	logger   *slog.Logger

	// running keeps a slow run from overlapping with the next trigger.
	running sync.Mutex
}

// NewScheduler returns a helper to start/stop recurring runs of the same request.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, req Request, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, request: req, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	})
}

// RunOnce executes a single scheduled run, skipping it if the previous one is still going.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	if !s.running.TryLock() {
		s.log(slog.LevelWarn, "previous run still in progress, skipping trigger", "trigger", trigger)
		return
	}
	defer s.running.Unlock()

	summary, err := s.pipeline.Run(ctx, s.request)
	if err != nil {
		s.log(slog.LevelError, "scheduled run aborted", "trigger", trigger, "run_id", summary.RunID, "error", err)
		return
	}
	s.log(slog.LevelInfo, "scheduled run finished", "trigger", trigger, "run_id", summary.RunID, "flagged", summary.Flagged)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

func (s *Scheduler) log(level slog.Level, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Log(context.Background(), level, msg, args...)
	}
}
