package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAuth       = errors.New("authentication failed")
	ErrPermission = errors.New("permission denied")
	ErrRateLimit  = errors.New("rate limit reached")
	ErrPlatform   = errors.New("platform error")
)

// PlatformError is the typed failure returned by content source adapters.
// Kind is one of the sentinels above and is what errors.Is matches on.
type PlatformError struct {
	Kind    error
	Op      string
	Status  int
	Detail  string
	ResetAt time.Time
	Err     error
}

func (e *PlatformError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PlatformError) Is(target error) bool {
	return target == e.Kind
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// AuthError builds an ErrAuth failure.
func AuthError(op, detail string) *PlatformError {
	return &PlatformError{Kind: ErrAuth, Op: op, Detail: detail}
}

// IsFatal reports whether err must terminate the per-post loop.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrPermission) || errors.Is(err, ErrRateLimit)
}

// Remediation returns operator guidance for an abort cause.
func Remediation(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "Check the TWITTER_* credentials in your environment or .env file. " +
			"Deleting posts needs all four user-delegated secrets (consumer key/secret, access token/secret)."
	case errors.Is(err, ErrPermission):
		return "Your X app lacks write access. In the developer portal set App permissions to " +
			"\"Read and write\", then regenerate the access token and secret so they carry the new scope."
	case errors.Is(err, ErrRateLimit):
		var pe *PlatformError
		if errors.As(err, &pe) && !pe.ResetAt.IsZero() {
			return fmt.Sprintf("X rate limit reached. Wait until %s before running again.", pe.ResetAt.Local().Format(time.Kitchen))
		}
		return "X rate limit reached. Wait a few minutes and try again."
	case errors.Is(err, ErrPlatform):
		return "The X API returned an unexpected error. Try again later."
	default:
		return "Run again with --log-level debug for details."
	}
}
