package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"TweetCleaner/internal/app"
	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/infrastructure/mock"
	"TweetCleaner/internal/ports"
	"TweetCleaner/internal/usecase"
)

var defaultDemoKeywords = []string{"politics", "negative", "complaint", "disappointed"}

func newDemoCmd(root *rootOptions) *cobra.Command {
	var (
		keywords []string
		execute  bool
		offline  bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the pipeline over ten built-in sample tweets",
		Long:  "demo classifies a fixed set of ten sample tweets with the configured model. Nothing is sent to X; --execute only removes posts from the in-memory sample set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.load(cmd)
			defer a.Close()
			out := cmd.OutOrStdout()

			kw := domain.ParseKeywords(keywords...)
			if len(kw) == 0 {
				kw = domain.ParseKeywords(defaultDemoKeywords...)
			}

			opts := app.Options{
				Variant:   domain.VariantMocked,
				Source:    app.SourceMock,
				Reporters: []ports.Reporter{newTerminalReporter(out)},
			}
			if offline {
				opts.Completer = &mock.KeywordCompleter{Themes: kw}
			} else {
				a.CheckOracle(cmd.Context())
			}

			pipeline, err := a.Pipeline(cmd.Context(), opts)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "==== Tweet Cleaner demo (sample data) ====")
			fmt.Fprintf(out, "Keywords: %s\n", kw)

			req := usecase.Request{Keywords: kw, Limit: usecase.DefaultLimit, DryRun: !execute}
			if _, err := pipeline.Run(cmd.Context(), req); err != nil {
				return err
			}

			if execute {
				remaining := a.DemoSource().Remaining()
				fmt.Fprintf(out, "\nRemaining tweets (%d):\n", len(remaining))
				for _, p := range remaining {
					fmt.Fprintf(out, "  %s: %s\n", p.ID, p.Text)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&keywords, "keywords", "k", nil, "keywords to match (default politics, negative, complaint, disappointed)")
	cmd.Flags().BoolVar(&execute, "execute", false, "simulate deletion on the sample set")
	cmd.Flags().BoolVar(&offline, "offline", false, "use a keyword matcher instead of the Ollama model")

	return cmd
}
