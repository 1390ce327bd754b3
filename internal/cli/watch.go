package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"TweetCleaner/internal/app"
	"TweetCleaner/internal/domain"
	"TweetCleaner/internal/ports"
)

const stopTimeout = 30 * time.Second

func newWatchCmd(root *rootOptions) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run on the configured cron schedule until interrupted",
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
			sched, err := a.Scheduler(pipeline, req)
			if err != nil {
				return err
			}

			if err := sched.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching on %q (%s). Press Ctrl-C to stop.\n",
				a.Config().Schedule.CronExpression, a.Config().Schedule.Location())

			<-ctx.Done()

			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			return sched.Stop(stopCtx)
		},
	}

	flags.register(cmd)
	return cmd
}
