package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"TweetCleaner/internal/classifier"
	"TweetCleaner/internal/config"
	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/infrastructure/llm"
	"TweetCleaner/internal/infrastructure/mock"
	"TweetCleaner/internal/infrastructure/scheduler"
	"TweetCleaner/internal/infrastructure/storage"
	"TweetCleaner/internal/infrastructure/telegram"
	"TweetCleaner/internal/infrastructure/xapi"
	"TweetCleaner/internal/logging"
	"TweetCleaner/internal/metrics"
	"TweetCleaner/internal/ports"
	"TweetCleaner/internal/source"
	"TweetCleaner/internal/usecase"
)

const (
	SourceX    = "x"
	SourceMock = "mock"
)

// ErrMissingCredentials is returned before any network call when user-delegated
// secrets are absent.
var ErrMissingCredentials = errors.New("missing X API credentials")

// Options selects the surface-specific parts of a pipeline.
type Options struct {
	Variant domain.Variant
	// Source is a registry name; SourceX when empty.
	Source string
	// Completer replaces the Ollama oracle when set.
	Completer ports.Completer
	// AppAuth lets dry runs read with the bearer token instead of user credentials.
	AppAuth   bool
	Reporters []ports.Reporter
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *source.Registry
	oracle   *llm.GenerateClient
	demo     *mock.Source

	closers []func() error
}

// New builds the application from configuration. Nothing touches the network yet.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, nil)
	}

	demo := mock.NewSource(mock.DemoPosts())

	registry := source.NewRegistry()
	registry.Register(xapi.NewClient(cfg.X, nil, baseLogger.With("component", "source.x")))
	registry.Register(demo)

	oracleClient := &http.Client{Timeout: cfg.Oracle.Timeout}
	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		registry: registry,
		oracle:   llm.NewGenerateClient(cfg.Oracle.Host, cfg.Oracle.Model, oracleClient),
		demo:     demo,
	}
}

// Config returns the loaded configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Logger returns the base logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// DemoSource is the in-memory timeline behind SourceMock.
func (a *Application) DemoSource() *mock.Source {
	return a.demo
}

// CheckCredentials fails when the X source cannot authenticate for the requested mode.
func (a *Application) CheckCredentials(opts Options, dryRun bool) error {
	if opts.Source != "" && opts.Source != SourceX {
		return nil
	}
	if dryRun && opts.AppAuth && a.cfg.X.HasAppCredentials() {
		return nil
	}
	if missing := a.cfg.X.MissingUserCredentials(); len(missing) > 0 {
		return &CredentialsError{Missing: missing}
	}
	return nil
}

// CredentialsError lists the environment variables that must be set.
type CredentialsError struct {
	Missing []string
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMissingCredentials, e.Missing)
}

func (e *CredentialsError) Unwrap() error {
	return ErrMissingCredentials
}

// Pipeline builds a pipeline for one surface. Optional adapters (archive, metrics,
// Telegram) are attached when configured.
func (a *Application) Pipeline(ctx context.Context, opts Options) (*usecase.Pipeline, error) {
	name := opts.Source
	if name == "" {
		name = SourceX
	}
	src, err := a.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	readTier := domain.TierUser
	if opts.AppAuth {
		readTier = domain.TierApp
	}

	var archive ports.Archive
	if a.cfg.Archive.Enabled() {
		store, err := storage.Open(ctx, a.cfg.Archive.Driver, a.cfg.Archive.DSN)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		archive = store
	}

	reporters := slices.Clone(opts.Reporters)
	if a.cfg.Metrics.Textfile != "" {
		reporters = append(reporters, metrics.NewReporter(a.cfg.Metrics.Textfile, a.logger.With("component", "metrics")))
	}

	var notifier ports.Notifier
	if tg := a.cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	return usecase.NewPipeline(usecase.PipelineDeps{
		Source:     src,
		Classifier: a.newClassifier(opts.Completer),
		Archive:    archive,
		Reporters:  reporters,
		Notifier:   notifier,
		Logger:     a.logger.With("component", "pipeline"),
		Variant:    opts.Variant,
		ReadTier:   readTier,
	}), nil
}

func (a *Application) newClassifier(override ports.Completer) *classifier.Oracle {
	deps := classifier.Deps{
		Primary: a.oracle,
		Timeout: a.cfg.Oracle.Timeout,
		Logger:  a.logger.With("component", "classifier"),
	}
	if override != nil {
		deps.Primary = override
	} else if a.cfg.Oracle.FallbackEnabled() {
		fallbackClient := &http.Client{Timeout: a.cfg.Oracle.Timeout}
		deps.Fallback = llm.NewOllamaChatClient(a.cfg.Oracle.Host, a.cfg.Oracle.Model, fallbackClient)
	}
	return classifier.New(deps)
}

// Models lists the models the oracle host serves.
func (a *Application) Models(ctx context.Context) ([]string, error) {
	return a.oracle.ListModels(ctx)
}

// PullModel downloads the configured model onto the oracle host.
func (a *Application) PullModel(ctx context.Context) error {
	return a.oracle.Pull(ctx, "")
}

// CheckOracle warns when the oracle is unreachable or lacks the configured model.
// Classification fails closed anyway, so this never blocks a run.
func (a *Application) CheckOracle(ctx context.Context) {
	models, err := a.Models(ctx)
	if err != nil {
		a.logger.Warn("oracle unreachable, every post will be kept", "host", a.cfg.Oracle.Host, "error", err)
		return
	}
	if !slices.Contains(models, a.oracle.Model()) {
		a.logger.Warn("configured model not found on oracle host", "model", a.oracle.Model(), "available", models)
		return
	}
	a.logger.Debug("oracle ready", "model", a.oracle.Model())
}

// Scheduler wraps the pipeline in the configured cron schedule.
func (a *Application) Scheduler(p *usecase.Pipeline, req usecase.Request) (*usecase.Scheduler, error) {
	driver := scheduler.NewCronScheduler(a.cfg.Schedule.CronExpression, a.cfg.Schedule.Location(), a.logger.With("component", "scheduler"))
	if err := driver.Validate(); err != nil {
		return nil, err
	}
	return usecase.NewScheduler(driver, p, req, a.logger.With("component", "watch")), nil
}

// Close releases resources opened by Pipeline.
func (a *Application) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}
