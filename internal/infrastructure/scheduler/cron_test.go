package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := NewCronScheduler("0 3 * * *", nil, nil).Validate(); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	if err := NewCronScheduler("every day", nil, nil).Validate(); err == nil {
		t.Fatalf("expected error for invalid expression")
	}
}

func TestNextHonoursLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	s := NewCronScheduler("0 3 * * *", loc, nil)

	from := time.Date(2025, time.March, 1, 0, 30, 0, 0, time.UTC) // 02:30 local
	next, err := s.Next(from)
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	want := time.Date(2025, time.March, 1, 3, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestStartRejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("not cron", nil, nil)
	if err := s.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected start to fail")
	}
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewCronScheduler("0 3 * * *", nil, nil)
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("second Start should be a no-op: %v", err)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("second Stop should be a no-op: %v", err)
	}
}

func TestStopWaitsForRunningJobAfterCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	s := NewCronScheduler("@every 1s", nil, nil)
	err := s.Start(ctx, func(time.Time) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatalf("job never triggered")
	}

	cancel()

	shortCtx, shortCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer shortCancel()
	if err := s.Stop(shortCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Stop should wait for the running job, got %v", err)
	}

	close(release)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("Stop after job finished returned error: %v", err)
	}
}
