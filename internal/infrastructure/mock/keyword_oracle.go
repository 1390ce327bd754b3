package mock

import (
	"context"
	"strings"

	"TweetCleaner/internal/ports"
)

// KeywordCompleter is a deterministic stand-in for the language model: it answers
// "YES" when the prompt's tweet line mentions any of the given themes.
type KeywordCompleter struct {
	Themes []string
	Calls  int
}

var _ ports.Completer = (*KeywordCompleter)(nil)

// Complete inspects only the quoted tweet so keywords in the instructions never match.
func (k *KeywordCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	k.Calls++
	tweet := prompt
	if i := strings.Index(prompt, "Tweet: \""); i >= 0 {
		tweet = prompt[i:]
		if j := strings.Index(tweet, "\n"); j >= 0 {
			tweet = tweet[:j]
		}
	}
	lower := strings.ToLower(tweet)
	for _, theme := range k.Themes {
		if strings.Contains(lower, strings.ToLower(theme)) {
			return "YES", nil
		}
	}
	return "NO", nil
}
