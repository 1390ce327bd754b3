package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"TweetCleaner/internal/ports"
)

// CronScheduler triggers jobs on a standard five-field cron expression.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
func NewCronScheduler(spec string, location *time.Location, logger *slog.Logger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	return &CronScheduler{spec: spec, location: location, logger: logger}
}

// Validate parses the expression without starting anything.
func (c *CronScheduler) Validate() error {
	if _, err := cron.ParseStandard(c.spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", c.spec, err)
	}
	return nil
}

// Next returns the first trigger after from.
func (c *CronScheduler) Next(from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(c.spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", c.spec, err)
	}
	return schedule.Next(from.In(c.location)), nil
}

// Start registers the job and begins ticking. It stops by itself when ctx is done.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cron != nil {
		return nil
	}

	runner := cron.New(cron.WithLocation(c.location))
	_, err := runner.AddFunc(c.spec, func() {
		job(time.Now().In(c.location))
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", c.spec, err)
	}

	runner.Start()
	c.cron = runner

	if next, err := c.Next(time.Now()); err == nil && c.logger != nil {
		c.logger.Info("scheduler started", "cron", c.spec, "next_run", next)
	}

	// Cancellation only stops new triggers. Stop still waits for a running job.
	go func() {
		<-ctx.Done()
		runner.Stop()
	}()

	return nil
}

// Stop halts the cron runner and waits for a running job up to ctx's deadline.
// The runner is released only once its jobs have finished, so a call that hits
// the deadline can be retried.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner := c.cron
	c.mu.Unlock()

	if runner == nil {
		return nil
	}

	done := runner.Stop()
	select {
	case <-done.Done():
		c.mu.Lock()
		if c.cron == runner {
			c.cron = nil
		}
		c.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
