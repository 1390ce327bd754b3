package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newModelsCmd(root *rootOptions) *cobra.Command {
	var pull bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models available on the Ollama host",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.load(cmd)
			cfg := a.Config().Oracle

			models, err := a.Models(cmd.Context())
			if err != nil {
				return fmt.Errorf("list models on %s: %w", cfg.Host, err)
			}

			out := cmd.OutOrStdout()
			if pull && !slices.Contains(models, cfg.Model) {
				fmt.Fprintf(out, "Pulling %s on %s...\n", cfg.Model, cfg.Host)
				if err := a.PullModel(cmd.Context()); err != nil {
					return fmt.Errorf("pull %s: %w", cfg.Model, err)
				}
				if models, err = a.Models(cmd.Context()); err != nil {
					return fmt.Errorf("list models on %s: %w", cfg.Host, err)
				}
			}

			if len(models) == 0 {
				fmt.Fprintf(out, "No models installed on %s. Try: tweetcleaner models --pull\n", cfg.Host)
				return nil
			}
			for _, m := range models {
				marker := " "
				if m == cfg.Model {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s\n", marker, m)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pull, "pull", false, "pull the configured model when the host does not have it")
	return cmd
}
