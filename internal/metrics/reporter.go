package metrics

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

// Reporter counts per-post outcomes and writes them to a node_exporter textfile
// when the run ends.
type Reporter struct {
	textfile string
	logger   *slog.Logger

	mu       sync.Mutex
	registry *prometheus.Registry

	posts                *prometheus.CounterVec
	classificationErrors prometheus.Counter
	runs                 *prometheus.CounterVec
	lastRun              prometheus.Gauge
}

var _ ports.Reporter = (*Reporter)(nil)

// NewReporter registers the collectors on a private registry. An empty textfile
// keeps the metrics in memory only.
func NewReporter(textfile string, logger *slog.Logger) *Reporter {
	r := &Reporter{
		textfile: textfile,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tweetcleaner_posts_total",
			Help: "Posts handled, by outcome.",
		}, []string{"outcome"}),
		classificationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tweetcleaner_classification_errors_total",
			Help: "Oracle failures that forced a keep verdict.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tweetcleaner_runs_total",
			Help: "Finished runs, by terminal state.",
		}, []string{"state"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tweetcleaner_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.posts, r.classificationErrors, r.runs, r.lastRun)
	return r
}

func (r *Reporter) ReportPost(report domain.PostReport) {
	r.posts.WithLabelValues(string(report.Outcome)).Inc()
	if report.Classification.Err != nil {
		r.classificationErrors.Inc()
	}
}

func (r *Reporter) ReportSummary(summary domain.RunSummary) {
	r.runs.WithLabelValues(string(summary.State)).Inc()
	r.lastRun.Set(float64(summary.FinishedAt.Unix()))

	if r.textfile == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := prometheus.WriteToTextfile(r.textfile, r.registry); err != nil && r.logger != nil {
		r.logger.Warn("write metrics textfile", "path", r.textfile, "error", err)
	}
}
