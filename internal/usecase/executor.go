package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

// Action carries the per-run context the executor needs for every post.
type Action struct {
	Session  domain.Session
	RunID    string
	Keywords domain.KeywordSet
	DryRun   bool
}

// Executor applies a classification to a post. It is the only component that
// mutates platform state.
type Executor struct {
	source  ports.ContentSource
	archive ports.Archive
	logger  *slog.Logger
	now     func() time.Time
}

// NewExecutor wires the content source and an optional archive.
func NewExecutor(source ports.ContentSource, archive ports.Archive, logger *slog.Logger) *Executor {
	return &Executor{
		source:  source,
		archive: archive,
		logger:  logger,
		now:     time.Now,
	}
}

// Apply returns the outcome for the post. A non-nil error is fatal to the run:
// it is only returned for permission, rate-limit and auth failures on delete.
func (e *Executor) Apply(ctx context.Context, act Action, post domain.Post, cls domain.Classification) (domain.Outcome, error) {
	if !cls.Delete {
		return domain.OutcomeSkipped, nil
	}
	if act.DryRun {
		return domain.OutcomeWouldDelete, nil
	}

	if err := e.source.DeletePost(ctx, act.Session, post.ID); err != nil {
		if domain.IsFatal(err) {
			return domain.OutcomeDeleteFailed, fmt.Errorf("delete post %s: %w", post.ID, err)
		}
		e.warn("delete failed, leaving post in place", "post_id", post.ID, "error", err)
		return domain.OutcomeDeleteFailed, nil
	}

	if e.archive != nil {
		record := domain.ArchivedPost{
			RunID:          act.RunID,
			PostID:         post.ID,
			Text:           post.Text,
			PostedAt:       post.CreatedAt,
			DeletedAt:      e.now().UTC(),
			Keywords:       act.Keywords,
			OracleResponse: cls.Raw,
		}
		if err := e.archive.Record(ctx, record); err != nil {
			e.warn("archive deleted post", "post_id", post.ID, "error", err)
		}
	}

	return domain.OutcomeDeleted, nil
}

// Preflight verifies write permission with a reversible create-then-delete probe.
func (e *Executor) Preflight(ctx context.Context, session domain.Session) error {
	if !session.CanWrite() {
		return domain.AuthError("permission probe", "user-delegated credentials are required for live runs")
	}

	text := fmt.Sprintf("TweetCleaner permission check %s (this post is removed immediately)", uuid.NewString())
	id, err := e.source.CreatePost(ctx, session, text)
	if err != nil {
		return fmt.Errorf("permission probe: create post: %w", err)
	}

	if err := e.source.DeletePost(ctx, session, id); err != nil {
		return fmt.Errorf("permission probe: delete probe post %s (remove it manually): %w", id, err)
	}

	e.debug("permission probe passed", "probe_id", id)
	return nil
}

func (e *Executor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Executor) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
