package classifier

import (
	"fmt"
	"strings"

	"TweetCleaner/internal/domain"
)

// BuildPrompt embeds the literal keyword list and post text into the fixed template.
func BuildPrompt(text string, keywords domain.KeywordSet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Please analyze the following tweet and determine if it contains or relates to any of these keywords: %s.\n\n", keywords.String()))
	sb.WriteString(fmt.Sprintf("Tweet: \"%s\"\n\n", text))
	sb.WriteString(`Respond with only "YES" if the tweet should be deleted (contains or strongly relates to any keyword), or "NO" if it should be kept.`)
	sb.WriteString("\n")
	return sb.String()
}

// Decide maps raw oracle output to a verdict: true iff the upper-cased text contains "YES".
// This is a substring test, so "YESTERDAY" also matches.
func Decide(raw string) bool {
	return strings.Contains(strings.ToUpper(raw), "YES")
}
