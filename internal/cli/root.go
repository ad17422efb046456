package cli

import (
	"github.com/dartslab/dartslab/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the dartslab CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dartslab",
		Short: "dartslab - 501 darts with Elo ratings",
		Long:  "Score 501 darts matches, keep Elo ratings per player and serve the live scoreboard.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Verbose {
				return logging.UseDevelopment()
			}
			// Structured logs belong to the server; other commands print for humans.
			if cmd.Name() != "serve" {
				logging.SetLogger(zap.NewNop())
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config.yaml (default ./configs/dartslab/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPlayerCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
