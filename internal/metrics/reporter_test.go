package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"TweetCleaner/internal/domain"
)

func TestReporterCountsOutcomes(t *testing.T) {
	t.Parallel()

	r := NewReporter("", nil)
	r.ReportPost(domain.PostReport{Outcome: domain.OutcomeSkipped})
	r.ReportPost(domain.PostReport{Outcome: domain.OutcomeSkipped, Classification: domain.Classification{Err: errors.New("timeout")}})
	r.ReportPost(domain.PostReport{Outcome: domain.OutcomeDeleted})

	if got := testutil.ToFloat64(r.posts.WithLabelValues("skipped")); got != 2 {
		t.Fatalf("skipped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.posts.WithLabelValues("deleted")); got != 1 {
		t.Fatalf("deleted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.classificationErrors); got != 1 {
		t.Fatalf("classification errors = %v, want 1", got)
	}
}

func TestReporterWritesTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tweetcleaner.prom")
	r := NewReporter(path, nil)

	finished := time.Unix(1_740_000_000, 0)
	r.ReportPost(domain.PostReport{Outcome: domain.OutcomeWouldDelete})
	r.ReportSummary(domain.RunSummary{State: domain.StateDone, FinishedAt: finished})

	if got := testutil.ToFloat64(r.lastRun); got != float64(finished.Unix()) {
		t.Fatalf("last run = %v", got)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(raw)
	for _, want := range []string{
		`tweetcleaner_posts_total{outcome="would_delete"} 1`,
		`tweetcleaner_runs_total{state="done"} 1`,
		"tweetcleaner_last_run_timestamp_seconds 1.74e+09",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("textfile missing %q:\n%s", want, text)
		}
	}
}
