package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TweetCleaner/internal/domain"
)

func TestPublishSummary(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier("token", "42").WithAPIBase(srv.URL)
	summary := domain.RunSummary{
		RunID:     "run-1",
		Variant:   domain.VariantScripted,
		DryRun:    true,
		State:     domain.StateDone,
		Keywords:  domain.KeywordSet{"politics"},
		Total:     10,
		Processed: 10,
		Flagged:   2,
	}

	if err := n.PublishSummary(context.Background(), summary); err != nil {
		t.Fatalf("PublishSummary returned error: %v", err)
	}
	if gotPath != "/bottoken/sendMessage" || gotChat != "42" {
		t.Fatalf("unexpected request: path=%s chat=%s", gotPath, gotChat)
	}
	if !strings.Contains(gotText, "Would delete 2 out of 10 tweets based on keywords: [politics]") {
		t.Fatalf("unexpected text: %q", gotText)
	}
}

func TestPublishSummaryErrors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").PublishSummary(context.Background(), domain.RunSummary{}); err == nil {
		t.Fatalf("expected misconfiguration error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewNotifier("token", "42").WithAPIBase(srv.URL).PublishSummary(context.Background(), domain.RunSummary{})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected telegram error, got %v", err)
	}
}

func TestFormatSummaryAborted(t *testing.T) {
	t.Parallel()

	text := FormatSummary(domain.RunSummary{
		State:       domain.StateAborted,
		AbortReason: "permission denied",
		Remediation: "Fix the app permissions.",
	})
	if !strings.Contains(text, "Aborted: permission denied") || !strings.Contains(text, "Fix the app permissions.") {
		t.Fatalf("abort details missing: %q", text)
	}
}
