package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/user"
	"strings"

	"github.com/dartslab/dartslab/internal/game"
	"github.com/dartslab/dartslab/internal/usecases"
	"github.com/dartslab/dartslab/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errInputClosed = errors.New("input closed before the match was settled")

func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play CODE CODE [CODE...]",
		Short: "Score a match at the terminal",
		Long: `Score a 501 match at the terminal, players throw in the order given.

Input, one per line:
  60      submit 60 points for the player to throw
  +6      type digits into the entry
  ok      submit the entry (an empty line does the same)
  c       clear the entry
  u       undo the last move
  q       abandon the match

The winner is settled as soon as someone checks out.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			players, err := a.players.Snapshots(cmd.Context(), args)
			if err != nil {
				return err
			}
			match, err := game.StartMatch(players)
			if err != nil {
				return err
			}
			return playMatch(cmd.Context(), a.settlement, match, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func playMatch(
	ctx context.Context,
	settlement *usecases.SettlementUsecase,
	match *game.Match,
	in io.Reader,
	out io.Writer,
) error {
	scanner := bufio.NewScanner(in)
	operator := operatorName()

	for {
		printMatch(out, match)
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return errInputClosed
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "q" {
			fmt.Fprintln(out, "match abandoned")
			return nil
		}
		outcome, err := applyInput(match, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if outcome == nil {
			continue
		}

		printMatch(out, match)
		fmt.Fprintf(out, "%s wins!\n", outcome.Winner.Name)
		logging.Info("match won at the terminal",
			zap.String("operator", operator),
			zap.String("winner", outcome.Winner.Code),
		)
		return commitWithRetry(ctx, settlement, outcome, scanner, out)
	}
}

func applyInput(match *game.Match, line string) (*game.Outcome, error) {
	switch {
	case line == "" || line == "ok":
		return match.SubmitEntry()
	case line == "c":
		match.ClearEntry()
		return nil, nil
	case line == "u":
		_, err := match.UndoLastMove()
		return nil, err
	case strings.HasPrefix(line, "+"):
		for _, r := range line[1:] {
			if r < '0' || r > '9' {
				return nil, fmt.Errorf("%w: %q is not a digit", game.ErrInvalidScore, r)
			}
			if err := match.EnterDigit(int(r - '0')); err != nil {
				return nil, err
			}
		}
		return nil, nil
	default:
		points, err := game.ParsePoints(line)
		if err != nil {
			return nil, err
		}
		return match.SubmitTurn(points)
	}
}

// commitWithRetry settles outcome, asking before every retry. The outcome
// is never dropped silently.
func commitWithRetry(
	ctx context.Context,
	settlement *usecases.SettlementUsecase,
	outcome *game.Outcome,
	scanner *bufio.Scanner,
	out io.Writer,
) error {
	for {
		record, err := settlement.Commit(ctx, outcome)
		if err == nil {
			printRecord(out, record)
			return nil
		}
		if errors.Is(err, usecases.ErrMatchSettled) {
			fmt.Fprintf(out, "match %s already settled\n", outcome.Id)
			return nil
		}
		fmt.Fprintf(out, "commit failed: %v\nretry? [y/N] ", err)
		if !scanner.Scan() {
			return errInputClosed
		}
		if answer := strings.ToLower(strings.TrimSpace(scanner.Text())); answer != "y" && answer != "yes" {
			return err
		}
	}
}

func printMatch(out io.Writer, match *game.Match) {
	var b strings.Builder
	for i, p := range match.Players() {
		marker := " "
		if i == match.TurnIndex() && match.Status() == game.ACTIVE {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s%s %3d  ", marker, p.Code, p.Score)
	}
	if entry := match.Entry(); entry != "" {
		fmt.Fprintf(&b, "entry: %s", entry)
	}
	fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
}

func operatorName() string {
	u, err := user.Current()
	if err != nil {
		return "unknown"
	}
	return u.Username
}
