package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

const previewLen = 80

// terminalReporter prints per-post decisions and the final summary.
type terminalReporter struct {
	out io.Writer

	mu     sync.Mutex
	red    *color.Color
	yellow *color.Color
	green  *color.Color
	faint  *color.Color
	bold   *color.Color
}

var _ ports.Reporter = (*terminalReporter)(nil)

func newTerminalReporter(out io.Writer) *terminalReporter {
	r := &terminalReporter{
		out:    out,
		red:    color.New(color.FgRed, color.Bold),
		yellow: color.New(color.FgYellow),
		green:  color.New(color.FgGreen),
		faint:  color.New(color.Faint),
		bold:   color.New(color.Bold),
	}
	if !isTerminal(out) {
		for _, c := range []*color.Color{r.red, r.yellow, r.green, r.faint, r.bold} {
			c.DisableColor()
		}
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *terminalReporter) ReportPost(report domain.PostReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "\nTweet %d (id %s): %s\n", report.Index+1, report.Post.ID, report.Post.Preview(previewLen))

	cls := report.Classification
	if cls.Err != nil {
		r.yellow.Fprintf(r.out, "  oracle error, keeping: %v\n", cls.Err)
	} else {
		r.faint.Fprintf(r.out, "  oracle: %q\n", cls.Raw)
	}

	switch report.Outcome {
	case domain.OutcomeWouldDelete:
		r.yellow.Fprintln(r.out, "  would delete")
	case domain.OutcomeDeleted:
		r.red.Fprintln(r.out, "  deleted")
	case domain.OutcomeDeleteFailed:
		if report.Err != nil {
			r.red.Fprintf(r.out, "  delete failed: %v\n", report.Err)
		} else {
			r.red.Fprintln(r.out, "  delete failed, kept")
		}
	default:
		r.green.Fprintln(r.out, "  keep")
	}
}

func (r *terminalReporter) ReportSummary(s domain.RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out)
	r.bold.Fprintln(r.out, "--- Summary ---")
	fmt.Fprintln(r.out, s.Headline())
	fmt.Fprintf(r.out, "Processed %d, kept %d", s.Processed, s.Kept())
	if s.DeleteFailed > 0 {
		fmt.Fprintf(r.out, ", failed deletes %d", s.DeleteFailed)
	}
	if s.ClassificationErrors > 0 {
		fmt.Fprintf(r.out, ", oracle errors %d", s.ClassificationErrors)
	}
	fmt.Fprintln(r.out)

	if s.Aborted() {
		r.red.Fprintf(r.out, "Run aborted: %s\n", s.AbortReason)
		if s.Remediation != "" {
			fmt.Fprintf(r.out, "What to do: %s\n", s.Remediation)
		}
	} else if s.DryRun && s.Flagged > 0 {
		fmt.Fprintln(r.out, "This was a dry run. Nothing was deleted.")
	}
}
