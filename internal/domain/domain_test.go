package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseKeywords(t *testing.T) {
	t.Parallel()

	got := ParseKeywords(" politics, ,crypto ", "sports", "")
	want := KeywordSet{"politics", "crypto", "sports"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseKeywords = %v, want %v", got, want)
	}
	if got.String() != "politics, crypto, sports" {
		t.Fatalf("unexpected String(): %q", got.String())
	}
	if len(ParseKeywords(" , ,")) != 0 {
		t.Fatalf("blank input should produce no keywords")
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	p := Post{Text: "héllo world"}
	if got := p.Preview(5); got != "héllo..." {
		t.Fatalf("unexpected preview: %q", got)
	}
	if got := p.Preview(0); got != p.Text {
		t.Fatalf("zero limit should keep text, got %q", got)
	}
}

func TestHeadline(t *testing.T) {
	t.Parallel()

	s := RunSummary{DryRun: true, Total: 10, Flagged: 4, Keywords: KeywordSet{"politics", "negative"}}
	if got := s.Headline(); got != "Would delete 4 out of 10 tweets based on keywords: [politics, negative]" {
		t.Fatalf("unexpected dry-run headline: %q", got)
	}

	s.DryRun = false
	s.Deleted = 3
	if got := s.Headline(); got != "Deleted 3 out of 10 tweets based on keywords: [politics, negative]" {
		t.Fatalf("unexpected live headline: %q", got)
	}
}

func TestPlatformErrorMatching(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := fmt.Errorf("delete post: %w", &PlatformError{Kind: ErrPermission, Op: "delete", Status: 403, Err: cause})

	if !errors.Is(err, ErrPermission) || errors.Is(err, ErrAuth) {
		t.Fatalf("kind matching broken for %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped cause should be reachable")
	}
	if !IsFatal(err) {
		t.Fatalf("permission errors are fatal")
	}
	if IsFatal(&PlatformError{Kind: ErrPlatform, Status: 500}) {
		t.Fatalf("generic platform errors are not fatal")
	}
	if !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("status missing from message: %s", err)
	}
}

func TestRemediation(t *testing.T) {
	t.Parallel()

	reset := time.Date(2025, time.March, 1, 15, 4, 0, 0, time.Local)
	cases := []struct {
		err  error
		want string
	}{
		{err: AuthError("authenticate", "bad token"), want: "TWITTER_"},
		{err: &PlatformError{Kind: ErrPermission}, want: "Read and write"},
		{err: &PlatformError{Kind: ErrRateLimit, ResetAt: reset}, want: "3:04PM"},
		{err: &PlatformError{Kind: ErrRateLimit}, want: "few minutes"},
		{err: errors.New("boom"), want: "--log-level debug"},
	}
	for _, tc := range cases {
		if got := Remediation(tc.err); !strings.Contains(got, tc.want) {
			t.Fatalf("Remediation(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
	if Remediation(nil) != "" {
		t.Fatalf("nil error needs no remediation")
	}
}
