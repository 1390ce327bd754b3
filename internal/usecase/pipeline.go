package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

const (
	MinLimit     = 10
	MaxLimit     = 200
	DefaultLimit = 100
)

// ErrNoKeywords rejects a run that could never flag anything.
var ErrNoKeywords = errors.New("at least one keyword is required")

// ClampLimit bounds the requested post count to [MinLimit, MaxLimit]. The second
// result reports whether the value was adjusted.
func ClampLimit(n int) (int, bool) {
	switch {
	case n < MinLimit:
		return MinLimit, true
	case n > MaxLimit:
		return MaxLimit, true
	default:
		return n, false
	}
}

// Request describes one run.
type Request struct {
	Keywords domain.KeywordSet
	Limit    int
	DryRun   bool
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ContentSource
	Classifier ports.Classifier
	Archive    ports.Archive
	Reporters  []ports.Reporter
	Notifier   ports.Notifier
	Logger     *slog.Logger
	Variant    domain.Variant
	// ReadTier is used for dry runs. Live runs always authenticate as TierUser.
	ReadTier domain.CredentialTier
}

// Pipeline implements the authenticate, fetch, classify, act, summarize workflow.
type Pipeline struct {
	source     ports.ContentSource
	classifier ports.Classifier
	executor   *Executor
	reporters  []ports.Reporter
	notifier   ports.Notifier
	logger     *slog.Logger
	variant    domain.Variant
	readTier   domain.CredentialTier
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	readTier := deps.ReadTier
	if readTier == "" {
		readTier = domain.TierUser
	}
	variant := deps.Variant
	if variant == "" {
		variant = domain.VariantScripted
	}
	return &Pipeline{
		source:     deps.Source,
		classifier: deps.Classifier,
		executor:   NewExecutor(deps.Source, deps.Archive, deps.Logger),
		reporters:  deps.Reporters,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		variant:    variant,
		readTier:   readTier,
		now:        time.Now,
	}
}

// Run drives one pass over the user's recent posts. The returned summary is always
// populated; the error is non-nil exactly when the run aborted.
func (p *Pipeline) Run(ctx context.Context, req Request) (domain.RunSummary, error) {
	summary := domain.RunSummary{
		RunID:     uuid.NewString(),
		Variant:   p.variant,
		DryRun:    req.DryRun,
		State:     domain.StateInit,
		Keywords:  req.Keywords,
		StartedAt: p.now().UTC(),
	}

	if p.source == nil || p.classifier == nil {
		return p.abort(ctx, summary, errors.New("pipeline is missing a content source or classifier"))
	}
	if len(req.Keywords) == 0 {
		return p.abort(ctx, summary, ErrNoKeywords)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	tier := p.readTier
	if !req.DryRun {
		tier = domain.TierUser
	}

	p.info("run started", "run_id", summary.RunID, "variant", summary.Variant, "dry_run", req.DryRun, "limit", limit, "keywords", req.Keywords.String())

	session, err := p.source.Authenticate(ctx, tier)
	if err != nil {
		return p.abort(ctx, summary, fmt.Errorf("authenticate: %w", err))
	}
	p.transition(&summary, domain.StateAuthenticated)
	p.debug("authenticated", "user", session.Username, "tier", session.Tier)

	if !req.DryRun {
		if err := p.executor.Preflight(ctx, session); err != nil {
			return p.abort(ctx, summary, err)
		}
	}

	posts, err := p.source.FetchRecentPosts(ctx, session, limit)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			return p.abort(ctx, summary, fmt.Errorf("fetch posts: %w", err))
		}
		p.warn("fetch failed, continuing with no posts", "error", err)
		posts = nil
	}
	summary.Total = len(posts)
	p.transition(&summary, domain.StateFetched)

	action := Action{
		Session:  session,
		RunID:    summary.RunID,
		Keywords: req.Keywords,
		DryRun:   req.DryRun,
	}

	for i, post := range posts {
		if err := ctx.Err(); err != nil {
			return p.abort(ctx, summary, fmt.Errorf("interrupted after %d of %d posts: %w", summary.Processed, summary.Total, err))
		}
		p.transition(&summary, domain.StateProcessing)

		cls := p.classifier.Classify(ctx, post.Text, req.Keywords)
		if cls.Err != nil {
			summary.ClassificationErrors++
		}

		outcome, fatal := p.executor.Apply(ctx, action, post, cls)
		summary.Processed++
		switch outcome {
		case domain.OutcomeWouldDelete:
			summary.Flagged++
		case domain.OutcomeDeleted:
			summary.Flagged++
			summary.Deleted++
		case domain.OutcomeDeleteFailed:
			summary.Flagged++
			summary.DeleteFailed++
		}

		report := domain.PostReport{
			Index:          i,
			Post:           post,
			Classification: cls,
			Outcome:        outcome,
			Err:            fatal,
		}
		for _, r := range p.reporters {
			r.ReportPost(report)
		}

		if fatal != nil {
			return p.abort(ctx, summary, fatal)
		}
	}

	p.transition(&summary, domain.StateSummarized)
	summary.FinishedAt = p.now().UTC()
	p.transition(&summary, domain.StateDone)
	p.emit(ctx, summary)
	p.info("run finished", "run_id", summary.RunID, "total", summary.Total, "flagged", summary.Flagged, "deleted", summary.Deleted, "delete_failed", summary.DeleteFailed)

	return summary, nil
}

func (p *Pipeline) abort(ctx context.Context, summary domain.RunSummary, err error) (domain.RunSummary, error) {
	p.transition(&summary, domain.StateAborted)
	summary.AbortReason = err.Error()
	summary.Remediation = domain.Remediation(err)
	summary.FinishedAt = p.now().UTC()

	p.logError("run aborted", "run_id", summary.RunID, "processed", summary.Processed, "error", err)
	p.emit(ctx, summary)

	return summary, err
}

// transition moves the run to the next state. Repeated processing steps are not logged.
func (p *Pipeline) transition(summary *domain.RunSummary, next domain.RunState) {
	if summary.State == next {
		return
	}
	p.debug("state changed", "run_id", summary.RunID, "from", summary.State, "to", next)
	summary.State = next
}

func (p *Pipeline) emit(ctx context.Context, summary domain.RunSummary) {
	for _, r := range p.reporters {
		r.ReportSummary(summary)
	}

	if p.notifier == nil {
		return
	}
	// A cancelled run context must not prevent the summary from going out.
	if err := p.notifier.PublishSummary(context.WithoutCancel(ctx), summary); err != nil {
		p.warn("publish summary", "error", err)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) logError(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
