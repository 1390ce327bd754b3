package domain

import (
	"strings"
	"time"
)

// Post is a single item of the user's own timeline as returned by the platform.
type Post struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// Preview shortens the text for log lines and reports.
func (p Post) Preview(limit int) string {
	runes := []rune(p.Text)
	if limit <= 0 || len(runes) <= limit {
		return p.Text
	}
	return string(runes[:limit]) + "..."
}

// KeywordSet is the ordered keyword list supplied once per run.
type KeywordSet []string

// ParseKeywords splits comma-separated input, trimming blanks and dropping empties.
func ParseKeywords(values ...string) KeywordSet {
	var out KeywordSet
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if k := strings.TrimSpace(part); k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}

// String renders the set the way it is embedded in prompts.
func (k KeywordSet) String() string {
	return strings.Join(k, ", ")
}

// Classification is the per-post oracle verdict.
type Classification struct {
	Delete bool
	Raw    string
	// Err is set when the oracle failed and the verdict was forced to keep.
	Err error
}

// Outcome enumerates what the executor did with a post.
type Outcome string

const (
	OutcomeSkipped      Outcome = "skipped"
	OutcomeWouldDelete  Outcome = "would_delete"
	OutcomeDeleted      Outcome = "deleted"
	OutcomeDeleteFailed Outcome = "delete_failed"
)

// PostReport is emitted to reporters after each post is fully handled.
type PostReport struct {
	Index          int
	Post           Post
	Classification Classification
	Outcome        Outcome
	Err            error
}

// ArchivedPost is the archive row written after a successful live delete.
type ArchivedPost struct {
	RunID          string
	PostID         string
	Text           string
	PostedAt       time.Time
	DeletedAt      time.Time
	Keywords       KeywordSet
	OracleResponse string
}
