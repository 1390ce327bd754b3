package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"TweetCleaner/internal/app"
	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
	"TweetCleaner/internal/usecase"
)

var errInputClosed = errors.New("input closed")

type runFunc func(ctx context.Context, req usecase.Request) (domain.RunSummary, error)

func newInteractiveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Guided session: dry run first, then confirm before deleting",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.load(cmd)
			defer a.Close()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "==== Interactive Twitter/X Tweet Deletion Agent ====")
			fmt.Fprintln(out, "This tool will help you delete tweets based on keywords you specify.")

			opts := app.Options{
				Variant:   domain.VariantInteractive,
				Reporters: []ports.Reporter{newTerminalReporter(out)},
			}
			if err := a.CheckCredentials(opts, false); err != nil {
				printMissingCredentials(out, err)
				return err
			}

			ctx := cmd.Context()
			a.CheckOracle(ctx)

			pipeline, err := a.Pipeline(ctx, opts)
			if err != nil {
				return err
			}

			session := &interactiveSession{
				in:  bufio.NewReader(cmd.InOrStdin()),
				out: out,
				run: pipeline.Run,
			}
			return session.loop(ctx)
		},
	}
}

func printMissingCredentials(out io.Writer, err error) {
	var credErr *app.CredentialsError
	if !errors.As(err, &credErr) {
		return
	}
	fmt.Fprintln(out, "Error: Missing Twitter API credentials in .env file:")
	for _, name := range credErr.Missing {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	fmt.Fprintln(out, "\nPlease update your .env file with the required credentials and try again.")
}

// interactiveSession drives the prompt loop. Every round starts with a dry run.
type interactiveSession struct {
	in  *bufio.Reader
	out io.Writer
	run runFunc
}

func (s *interactiveSession) loop(ctx context.Context) error {
	for {
		keywords, err := s.askKeywords()
		if err != nil {
			return err
		}
		limit, err := s.askLimit()
		if err != nil {
			return err
		}

		req := usecase.Request{Keywords: keywords, Limit: limit, DryRun: true}

		fmt.Fprintln(s.out, "\n--- Analyzing tweets (Dry Run) ---")
		fmt.Fprintf(s.out, "Searching for tweets containing or related to: %s\n", keywords)
		fmt.Fprintf(s.out, "Analyzing up to %d recent tweets...\n", limit)

		if _, err := s.run(ctx, req); err != nil {
			return err
		}

		fmt.Fprintln(s.out, "\nReady to delete tweets?")
		fmt.Fprintln(s.out, "1. Execute deletion")
		fmt.Fprintln(s.out, "2. Modify keywords and try again")
		fmt.Fprintln(s.out, "3. Cancel")

		choice, err := s.prompt()
		if err != nil && !errors.Is(err, errInputClosed) {
			return err
		}

		switch choice {
		case "1":
			fmt.Fprintln(s.out, "\n--- Executing tweet deletion ---")
			req.DryRun = false
			if _, err := s.run(ctx, req); err != nil {
				return err
			}
			fmt.Fprintln(s.out, "\nDeletion complete!")
			return nil
		case "2":
			fmt.Fprintln(s.out, "\nRestarting with new keywords...")
		default:
			fmt.Fprintln(s.out, "\nDeletion canceled. No tweets were deleted.")
			return nil
		}
	}
}

func (s *interactiveSession) askKeywords() (domain.KeywordSet, error) {
	for {
		fmt.Fprintln(s.out, "\nEnter keywords to search for in tweets (comma-separated):")
		line, err := s.prompt()
		if err != nil {
			return nil, err
		}
		if keywords := domain.ParseKeywords(line); len(keywords) > 0 {
			return keywords, nil
		}
		fmt.Fprintln(s.out, "Error: No valid keywords entered")
	}
}

func (s *interactiveSession) askLimit() (int, error) {
	for {
		fmt.Fprintf(s.out, "\nEnter maximum number of recent tweets to analyze (%d-%d):\n", usecase.MinLimit, usecase.MaxLimit)
		line, err := s.prompt()
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.Atoi(line)
		switch {
		case convErr != nil:
			fmt.Fprintln(s.out, "Please enter a valid number")
		case n < usecase.MinLimit || n > usecase.MaxLimit:
			fmt.Fprintf(s.out, "Please enter a number between %d and %d\n", usecase.MinLimit, usecase.MaxLimit)
		default:
			return n, nil
		}
	}
}

// prompt reads one trimmed line. A final line without newline still counts.
func (s *interactiveSession) prompt() (string, error) {
	fmt.Fprint(s.out, "> ")
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errInputClosed
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
