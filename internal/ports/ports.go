package ports

import (
	"context"
	"time"

	"TweetCleaner/internal/domain"
)

// ContentSource authenticates to the platform and reads or mutates the user's posts.
type ContentSource interface {
	Authenticate(ctx context.Context, tier domain.CredentialTier) (domain.Session, error)
	FetchRecentPosts(ctx context.Context, session domain.Session, limit int) ([]domain.Post, error)
	CreatePost(ctx context.Context, session domain.Session, text string) (string, error)
	DeletePost(ctx context.Context, session domain.Session, postID string) error
}

// Completer is a raw text-completion oracle.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Classifier turns post text into a keep/delete verdict. It never returns an error;
// failures are reported inside the Classification and default to keep.
type Classifier interface {
	Classify(ctx context.Context, text string, keywords domain.KeywordSet) domain.Classification
}

// Archive records posts after they were deleted.
type Archive interface {
	Record(ctx context.Context, post domain.ArchivedPost) error
}

// Reporter receives per-post results and the final summary.
type Reporter interface {
	ReportPost(report domain.PostReport)
	ReportSummary(summary domain.RunSummary)
}

// Notifier pushes the final run summary to an outbound channel (Telegram, etc.).
type Notifier interface {
	PublishSummary(ctx context.Context, summary domain.RunSummary) error
}

// Scheduler controls when recurring runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
