package cli

import (
	"github.com/spf13/cobra"

	"TweetCleaner/internal/app"
	"TweetCleaner/internal/config"
	"TweetCleaner/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string

	application *app.Application
}

// NewRootCmd returns the root command for the tweetcleaner CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "tweetcleaner",
		Short:         "Delete your own X posts that relate to a set of keywords",
		Long:          "tweetcleaner fetches your recent X posts, asks a local Ollama model whether each one relates to your keywords, and deletes the flagged ones. Runs are dry runs unless --execute is given.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default $TWEET_CLEANER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newInteractiveCmd(opts))
	rootCmd.AddCommand(newDemoCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newModelsCmd(opts))

	return rootCmd
}

// load reads configuration once per process and builds the application.
func (o *rootOptions) load(cmd *cobra.Command) *app.Application {
	if o.application != nil {
		return o.application
	}

	cfg := config.Load(o.configPath)
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	logger := logging.New(cfg.Logging.Level, cmd.ErrOrStderr())

	o.application = app.New(cfg, logger)
	return o.application
}
