package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/spf13/cobra"
)

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the latest match records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("invalid limit %d", limit)
			}
			a, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.players.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches played.")
				return nil
			}
			for _, r := range records {
				printRecord(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records, 0 for all")
	return cmd
}

func printRecord(out io.Writer, r entities.MatchRecord) {
	losers := make([]string, 0, len(r.Losers))
	for _, l := range r.Losers {
		losers = append(losers, fmt.Sprintf("%s %s (%+d)", l.Code, l.Name, l.EloChange))
	}
	fmt.Fprintf(out, "%s  %s %s (%+d) beat %s\n",
		r.CompletedAt.Local().Format("2006-01-02 15:04"),
		r.WinnerCode,
		r.WinnerName,
		r.EloChange,
		strings.Join(losers, ", "),
	)
}
