package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dartslab/dartslab/internal/domains/dtos"
	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/game"
	"github.com/dartslab/dartslab/internal/usecases"
	"github.com/dartslab/dartslab/pkg/logging"
	"go.uber.org/zap"
)

// Handler for when a client sends a message. Messages of one connection
// are handled in order.
func (s *server) handleWebSocketMessage(ctx context.Context, c *client, payload payload) {
	var err error
	switch payload.Type {
	case "register_player":
		err = s.handleRegisterPlayer(ctx, c, payload.Data)
	case "rename_player":
		err = s.handleRenamePlayer(ctx, c, payload.Data)
	case "start_match":
		err = s.handleStartMatch(ctx, c, payload.Data)
	case "enter_digit":
		err = s.handleEnterDigit(c, payload.Data)
	case "clear_entry":
		err = s.withTable(c, func(t *table) error {
			t.clearEntry()
			return nil
		})
	case "submit_turn":
		err = s.handleSubmitTurn(ctx, c, payload.Data)
	case "undo_last_move":
		err = s.withTable(c, func(t *table) error {
			_, err := t.undo()
			return err
		})
	case "commit_match":
		err = s.handleCommitMatch(ctx, c)
	case "view_history":
		err = s.handleViewHistory(ctx, c, payload.Data)
	default:
		logging.Info("invalid payload type", zap.String("type", payload.Type))
		c.writeJson(response{
			Type:    "error",
			Error:   ErrStatusUnknownOperation,
			Message: payload.Type,
		})
		return
	}
	if err != nil {
		c.writeError(err)
	}
}

func (s *server) handleRegisterPlayer(ctx context.Context, c *client, data map[string]string) error {
	player, err := s.playerUsecase.RegisterPlayer(ctx, data["code"], data["name"])
	if err != nil {
		return err
	}
	resp := dtos.PlayerResponseFromEntity(player)
	c.writeJson(response{Type: "player", Player: &resp})
	return nil
}

func (s *server) handleRenamePlayer(ctx context.Context, c *client, data map[string]string) error {
	if err := s.playerUsecase.RenamePlayer(ctx, data["code"], data["name"]); err != nil {
		return err
	}
	players, err := s.playerUsecase.Snapshots(ctx, []string{data["code"]})
	if err != nil {
		return err
	}
	resp := dtos.PlayerResponseFromEntity(players[0])
	c.writeJson(response{Type: "player", Player: &resp})
	return nil
}

// handleStartMatch replaces the connection's table. Players are seeded from
// the feed when it knows all of them, otherwise from the store.
func (s *server) handleStartMatch(ctx context.Context, c *client, data map[string]string) error {
	if c.table != nil && c.table.busy() {
		return ErrMatchInProgress
	}
	codes := splitCodes(data["players"])
	players, err := s.seedPlayers(ctx, codes)
	if err != nil {
		return err
	}
	t, err := newTable(players)
	if err != nil {
		return err
	}
	if c.table != nil {
		s.tables.Delete(c.table.id)
	}
	c.table = t
	s.tables.Store(t.id, t)

	logging.Info("match started",
		zap.String("session_id", c.sessionId),
		zap.String("table_id", t.id),
		zap.Strings("players", codes),
	)
	c.writeMatchState(t)
	return nil
}

func (s *server) seedPlayers(ctx context.Context, codes []string) ([]entities.Player, error) {
	if snap, ok := s.hub.Latest(); ok {
		players := make([]entities.Player, 0, len(codes))
		for _, code := range codes {
			normalized, err := usecases.NormalizeCode(code)
			if err != nil {
				return nil, err
			}
			p, found := snap.Player(normalized)
			if !found {
				break
			}
			players = append(players, p)
		}
		if len(players) == len(codes) {
			return players, nil
		}
	}
	return s.playerUsecase.Snapshots(ctx, codes)
}

func (s *server) handleEnterDigit(c *client, data map[string]string) error {
	digit, err := strconv.Atoi(data["digit"])
	if err != nil {
		return fmt.Errorf("%w: %q is not a digit", game.ErrInvalidScore, data["digit"])
	}
	return s.withTable(c, func(t *table) error {
		return t.enterDigit(digit)
	})
}

func (s *server) handleSubmitTurn(ctx context.Context, c *client, data map[string]string) error {
	if c.table == nil {
		return ErrNoMatch
	}
	var points *int
	if raw := strings.TrimSpace(data["points"]); raw != "" {
		p, err := game.ParsePoints(raw)
		if err != nil {
			return err
		}
		points = &p
	}
	outcome, err := c.table.submit(points)
	if err != nil {
		return err
	}
	c.writeMatchState(c.table)
	if outcome != nil {
		logging.Info("match won",
			zap.String("table_id", c.table.id),
			zap.String("winner", outcome.Winner.Code),
		)
		s.commit(ctx, c, c.table)
	}
	return nil
}

func (s *server) handleCommitMatch(ctx context.Context, c *client) error {
	if c.table == nil || c.table.pendingOutcome() == nil {
		return ErrNothingToCommit
	}
	s.commit(ctx, c, c.table)
	return nil
}

// commit settles the table's pending outcome. On failure the outcome stays
// pending so the client can retry with commit_match.
func (s *server) commit(ctx context.Context, c *client, t *table) {
	outcome := t.pendingOutcome()
	record, err := s.settlementUsecase.Commit(ctx, outcome)
	if errors.Is(err, usecases.ErrMatchSettled) {
		t.settled()
		resp := dtos.OutcomeResponseFromOutcome(*outcome)
		c.writeJson(response{Type: "match_settled", Outcome: &resp})
		return
	}
	if err != nil {
		resp := dtos.OutcomeResponseFromOutcome(*outcome)
		c.writeJson(response{
			Type:    "commit_failed",
			Error:   errorStatus(err),
			Message: err.Error(),
			Outcome: &resp,
		})
		return
	}
	t.settled()
	resp := dtos.MatchRecordResponseFromEntity(record, true)
	c.writeJson(response{Type: "match_committed", Record: &resp})
}

func (s *server) handleViewHistory(ctx context.Context, c *client, data map[string]string) error {
	limit := s.config.HistoryLimit
	if raw := data["limit"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: invalid limit %q", ErrInvalidPayload, raw)
		}
		limit = n
	}
	records, err := s.playerUsecase.History(ctx, limit)
	if err != nil {
		return err
	}
	c.writeJson(response{
		Type:    "history",
		Records: dtos.MatchRecordListResponseFromEntities(records).Items,
	})
	return nil
}

// withTable runs fn on the connection's table and replies with its state.
func (s *server) withTable(c *client, fn func(*table) error) error {
	if c.table == nil {
		return ErrNoMatch
	}
	if err := fn(c.table); err != nil {
		return err
	}
	c.writeMatchState(c.table)
	return nil
}

// Handler for when a client connection closes.
func (s *server) handleDisconnect(c *client) {
	if c.table == nil {
		return
	}
	s.tables.Delete(c.table.id)
	if outcome := c.table.pendingOutcome(); outcome != nil {
		logging.Warn("unsettled match dropped",
			zap.String("session_id", c.sessionId),
			zap.String("table_id", c.table.id),
			zap.String("winner", outcome.Winner.Code),
		)
	}
}

func splitCodes(raw string) []string {
	var codes []string
	for _, code := range strings.Split(raw, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
