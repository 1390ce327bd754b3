package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/fallback"

	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

// ErrOracle marks a classification that failed and was forced to keep.
var ErrOracle = errors.New("oracle unavailable")

const defaultTimeout = 60 * time.Second

// Deps wires the completers behind the oracle.
type Deps struct {
	Primary ports.Completer
	// Fallback is tried once when Primary fails. Optional.
	Fallback ports.Completer
	// Timeout bounds every single completer call.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Oracle implements ports.Classifier on top of a text-completion service.
type Oracle struct {
	primary  ports.Completer
	fallback ports.Completer
	timeout  time.Duration
	logger   *slog.Logger
}

var _ ports.Classifier = (*Oracle)(nil)

// New builds the classifier.
func New(deps Deps) *Oracle {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Oracle{
		primary:  deps.Primary,
		fallback: deps.Fallback,
		timeout:  timeout,
		logger:   deps.Logger,
	}
}

// Classify never fails past its boundary: any error or panic yields keep.
func (o *Oracle) Classify(ctx context.Context, text string, keywords domain.KeywordSet) (result domain.Classification) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.Classification{Err: fmt.Errorf("%w: panic: %v", ErrOracle, r)}
		}
	}()

	if o == nil || o.primary == nil {
		return domain.Classification{Err: fmt.Errorf("%w: no completer configured", ErrOracle)}
	}

	prompt := BuildPrompt(text, keywords)
	raw, err := o.complete(ctx, prompt)
	if err != nil {
		o.warn("classification failed, keeping post", "error", err)
		return domain.Classification{Err: fmt.Errorf("%w: %w", ErrOracle, err)}
	}

	return domain.Classification{Delete: Decide(raw), Raw: raw}
}

func (o *Oracle) complete(ctx context.Context, prompt string) (string, error) {
	var primaryErr error
	primary := func() (string, error) {
		out, err := o.attempt(ctx, o.primary, prompt)
		primaryErr = err
		return out, err
	}

	if o.fallback == nil {
		return primary()
	}

	secondary := fallback.NewWithFunc(func(exec failsafe.Execution[string]) (string, error) {
		o.warn("primary oracle failed, using fallback", "error", primaryErr)
		out, err := o.attempt(ctx, o.fallback, prompt)
		if err != nil {
			return "", fmt.Errorf("fallback: %w (primary: %v)", err, primaryErr)
		}
		return out, nil
	})

	return failsafe.With[string](secondary).WithContext(ctx).Get(primary)
}

// attempt runs one completer call under the per-call timeout, turning panics into errors.
func (o *Oracle) attempt(ctx context.Context, c ports.Completer, prompt string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("completer panic: %v", r)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	return c.Complete(callCtx, prompt)
}

func (o *Oracle) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}
