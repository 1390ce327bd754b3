package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"TweetCleaner/internal/app"
	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
	"TweetCleaner/internal/usecase"
)

// runFlags are shared by run and watch.
type runFlags struct {
	keywords []string
	execute  bool
	max      int
	appAuth  bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.keywords, "keywords", "k", nil, "keyword to match; repeat the flag or separate with commas")
	cmd.Flags().BoolVar(&f.execute, "execute", false, "actually delete flagged posts (default is a dry run)")
	cmd.Flags().IntVar(&f.max, "max", 0, "maximum number of recent posts to analyze, 10-200 (default from config, 100)")
	cmd.Flags().BoolVar(&f.appAuth, "app-auth", false, "read with the app bearer token during dry runs")
}

// request resolves flags against config defaults.
func (f *runFlags) request(a *app.Application) (usecase.Request, error) {
	cfg := a.Config()

	keywords := domain.ParseKeywords(f.keywords...)
	if len(keywords) == 0 {
		keywords = domain.ParseKeywords(cfg.Run.Keywords...)
	}
	if len(keywords) == 0 {
		return usecase.Request{}, errors.New("at least one --keywords value is required")
	}

	limit := f.max
	if limit == 0 {
		limit = cfg.Run.Max
	}
	clamped, adjusted := usecase.ClampLimit(limit)
	if adjusted {
		a.Logger().Warn("max out of range, clamped", "requested", limit, "using", clamped)
	}

	return usecase.Request{Keywords: keywords, Limit: clamped, DryRun: !f.execute}, nil
}

func newRunCmd(root *rootOptions) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze recent posts once and delete the ones matching keywords",
		Example: `  tweetcleaner run --keywords politics --keywords crypto
  tweetcleaner run -k politics,crypto --max 50 --execute`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.load(cmd)
			defer a.Close()

			req, err := flags.request(a)
			if err != nil {
				return err
			}

			opts := app.Options{
				Variant:   domain.VariantScripted,
				AppAuth:   flags.appAuth,
				Reporters: []ports.Reporter{newTerminalReporter(cmd.OutOrStdout())},
			}
			if err := a.CheckCredentials(opts, req.DryRun); err != nil {
				return err
			}

			ctx := cmd.Context()
			a.CheckOracle(ctx)

			pipeline, err := a.Pipeline(ctx, opts)
			if err != nil {
				return err
			}

			mode := "dry run"
			if !req.DryRun {
				mode = "LIVE, posts will be deleted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Analyzing up to %d recent tweets for: %s (%s)\n", req.Limit, req.Keywords, mode)

			_, err = pipeline.Run(ctx, req)
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
