package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dartslab/dartslab/internal/app/server"
	"github.com/dartslab/dartslab/internal/config"
	"github.com/spf13/cobra"
)

// NewTokenCommand signs a session token for clients of the game server.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token SESSION",
		Short: "Sign a session token for the game server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			if cfg.Server.JwtSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := server.NewSessionToken(cfg.Server.JwtSecret, args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}
