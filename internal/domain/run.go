package domain

import (
	"fmt"
	"time"
)

// Variant names the surface that started a run.
type Variant string

const (
	VariantScripted    Variant = "scripted"
	VariantInteractive Variant = "interactive"
	VariantMocked      Variant = "mocked"
)

// RunState tracks the controller's progress through a run.
type RunState string

const (
	StateInit          RunState = "init"
	StateAuthenticated RunState = "authenticated"
	StateFetched       RunState = "fetched"
	StateProcessing    RunState = "processing"
	StateSummarized    RunState = "summarized"
	StateDone          RunState = "done"
	StateAborted       RunState = "aborted"
)

// CredentialTier selects which platform credentials a session uses.
type CredentialTier string

const (
	// TierApp is the app-level bearer token. Read only.
	TierApp CredentialTier = "app"
	// TierUser is the user-delegated OAuth 1.0a set. Read and write.
	TierUser CredentialTier = "user"
)

// Session is the authenticated handle owned by the controller for one run.
type Session struct {
	UserID   string
	Username string
	Tier     CredentialTier
}

// CanWrite reports whether the session may mutate platform state.
func (s Session) CanWrite() bool {
	return s.Tier == TierUser
}

// RunSummary is built incrementally and emitted once when the run ends.
type RunSummary struct {
	RunID                string
	Variant              Variant
	DryRun               bool
	State                RunState
	Keywords             KeywordSet
	Total                int
	Processed            int
	Flagged              int
	Deleted              int
	DeleteFailed         int
	ClassificationErrors int
	AbortReason          string
	Remediation          string
	StartedAt            time.Time
	FinishedAt           time.Time
}

// Aborted reports whether the run ended early.
func (s RunSummary) Aborted() bool {
	return s.State == StateAborted
}

// Kept counts processed posts that were not flagged.
func (s RunSummary) Kept() int {
	return s.Processed - s.Flagged
}

// Headline is the one-line result shown at the end of every run.
func (s RunSummary) Headline() string {
	verb := "Deleted"
	count := s.Deleted
	if s.DryRun {
		verb = "Would delete"
		count = s.Flagged
	}
	return fmt.Sprintf("%s %d out of %d tweets based on keywords: [%s]", verb, count, s.Total, s.Keywords.String())
}
