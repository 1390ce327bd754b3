package usecase

import (
	"context"
	"testing"
	"time"

	"TweetCleaner/internal/classifier"
	"TweetCleaner/internal/infrastructure/mock"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(ctx context.Context, job func(time.Time)) error {
	d.job = job
	return nil
}

func (d *manualDriver) Stop(ctx context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsPipelineOnTrigger(t *testing.T) {
	t.Parallel()

	src := mock.NewSource(mock.DemoPosts())
	p := NewPipeline(PipelineDeps{
		Source:     src,
		Classifier: classifier.New(classifier.Deps{Primary: &mock.KeywordCompleter{Themes: demoKeywords}}),
	})
	driver := &manualDriver{}
	s := NewScheduler(driver, p, Request{Keywords: demoKeywords, DryRun: true}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if driver.job == nil {
		t.Fatalf("job was not registered")
	}

	driver.job(time.Now())
	driver.job(time.Now())
	if src.FetchCalls != 2 {
		t.Fatalf("expected two runs, got %d", src.FetchCalls)
	}

	if err := s.Stop(context.Background()); err != nil || !driver.stopped {
		t.Fatalf("Stop did not reach the driver: %v", err)
	}
}

func TestSchedulerSkipsOverlappingTrigger(t *testing.T) {
	t.Parallel()

	src := mock.NewSource(mock.DemoPosts())
	p := NewPipeline(PipelineDeps{
		Source:     src,
		Classifier: classifier.New(classifier.Deps{Primary: &mock.KeywordCompleter{Themes: demoKeywords}}),
	})
	s := NewScheduler(&manualDriver{}, p, Request{Keywords: demoKeywords, DryRun: true}, nil)

	s.running.Lock()
	s.RunOnce(context.Background(), time.Now())
	s.running.Unlock()

	if src.FetchCalls != 0 {
		t.Fatalf("overlapping trigger should be skipped")
	}
}
