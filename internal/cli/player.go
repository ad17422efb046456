package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/spf13/cobra"
)

func NewPlayerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Manage players",
	}
	cmd.AddCommand(newPlayerRegisterCommand(rootOpts))
	cmd.AddCommand(newPlayerRenameCommand(rootOpts))
	cmd.AddCommand(newPlayerListCommand(rootOpts))
	return cmd
}

func newPlayerRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register CODE NAME",
		Short: "Register a player with the default rating",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			player, err := a.players.RegisterPlayer(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s %s (%d)\n", player.Code, player.Name, player.Elo)
			return nil
		},
	}
}

func newPlayerRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename CODE NAME",
		Short: "Change a player's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.players.RenamePlayer(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newPlayerListCommand(rootOpts *RootOptions) *cobra.Command {
	var byElo bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			var players []entities.Player
			if byElo {
				players, err = a.players.Leaderboard(cmd.Context())
			} else {
				players, err = a.players.ListPlayers(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printPlayers(cmd.OutOrStdout(), players)
		},
	}
	cmd.Flags().BoolVar(&byElo, "by-elo", false, "order by rating, best first")
	return cmd
}

func printPlayers(out io.Writer, players []entities.Player) error {
	if len(players) == 0 {
		fmt.Fprintln(out, "No players registered.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tELO\tMATCHES\tWINS\tWIN%")
	for _, p := range players {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n", p.Code, p.Name, p.Elo, p.Matches, p.Wins, p.WinRate())
	}
	return w.Flush()
}
