package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends run summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithAPIBase points the notifier at another Bot API host.
func (n *Notifier) WithAPIBase(base string) *Notifier {
	n.apiBase = strings.TrimRight(base, "/")
	return n
}

// PublishSummary posts the run result as a plain-text message.
func (n *Notifier) PublishSummary(ctx context.Context, summary domain.RunSummary) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatSummary(summary))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatSummary renders the message body.
func FormatSummary(s domain.RunSummary) string {
	var b strings.Builder
	mode := "live"
	if s.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(&b, "TweetCleaner %s (%s, %s)\n", s.State, s.Variant, mode)
	b.WriteString(s.Headline())
	b.WriteString("\n")
	fmt.Fprintf(&b, "Processed %d, kept %d", s.Processed, s.Kept())
	if s.DeleteFailed > 0 {
		fmt.Fprintf(&b, ", failed deletes %d", s.DeleteFailed)
	}
	if s.ClassificationErrors > 0 {
		fmt.Fprintf(&b, ", oracle errors %d", s.ClassificationErrors)
	}
	b.WriteString("\n")
	if s.Aborted() {
		fmt.Fprintf(&b, "Aborted: %s\n", s.AbortReason)
		if s.Remediation != "" {
			b.WriteString(s.Remediation)
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "Run %s", s.RunID)
	return b.String()
}
