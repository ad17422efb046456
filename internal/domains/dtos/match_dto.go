package dtos

import (
	"fmt"
	"strings"
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
	"github.com/dartslab/dartslab/internal/game"
)

type MatchStartRequest struct {
	Players []string `json:"players"`
}

type MatchStateResponse struct {
	TableId   string                `json:"tableId"`
	Status    string                `json:"status"`
	TurnIndex int                   `json:"turnIndex"`
	Entry     string                `json:"entry"`
	Players   []MatchPlayerResponse `json:"players"`
	Moves     []MoveResponse        `json:"moves"`
	Outcome   *OutcomeResponse      `json:"outcome,omitempty"`
}

type MatchPlayerResponse struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Elo   int    `json:"elo"`
	Score int    `json:"score"`
}

type OutcomeResponse struct {
	MatchId     string    `json:"matchId"`
	WinnerCode  string    `json:"winnerCode"`
	LoserCodes  []string  `json:"loserCodes"`
	CompletedAt time.Time `json:"completedAt"`
}

func MatchStateResponseFromMatch(tableId string, m *game.Match) MatchStateResponse {
	resp := MatchStateResponse{
		TableId:   tableId,
		Status:    m.Status().String(),
		TurnIndex: m.TurnIndex(),
		Entry:     m.Entry(),
		Players:   []MatchPlayerResponse{},
		Moves:     MoveResponsesFromEntities(m.Moves()),
	}
	for _, p := range m.Players() {
		resp.Players = append(resp.Players, MatchPlayerResponse{
			Code:  p.Code,
			Name:  p.Name,
			Elo:   p.Elo,
			Score: p.Score,
		})
	}
	if outcome := m.Outcome(); outcome != nil {
		o := OutcomeResponseFromOutcome(*outcome)
		resp.Outcome = &o
	}
	return resp
}

func OutcomeResponseFromOutcome(o game.Outcome) OutcomeResponse {
	codes := o.Codes()
	return OutcomeResponse{
		MatchId:     o.Id,
		WinnerCode:  codes[0],
		LoserCodes:  codes[1:],
		CompletedAt: o.CompletedAt,
	}
}

// SettleMatchRequest carries a finished match from a client that ran the
// countdown itself. MatchId and CompletedAt must stay the same when the
// request is resubmitted.
type SettleMatchRequest struct {
	MatchId     string          `json:"matchId"`
	WinnerCode  string          `json:"winnerCode"`
	LoserCodes  []string        `json:"loserCodes"`
	Moves       []entities.Move `json:"moves"`
	CompletedAt time.Time       `json:"completedAt"`
}

func SettleMatchRequestToOutcome(req SettleMatchRequest) (*game.Outcome, error) {
	if strings.TrimSpace(req.MatchId) == "" {
		return nil, fmt.Errorf("missing match id")
	}
	if req.CompletedAt.IsZero() {
		return nil, fmt.Errorf("missing completion time")
	}
	if strings.TrimSpace(req.WinnerCode) == "" {
		return nil, fmt.Errorf("missing winner code")
	}
	if len(req.LoserCodes) == 0 {
		return nil, fmt.Errorf("missing loser codes")
	}
	outcome := &game.Outcome{
		Id:          strings.TrimSpace(req.MatchId),
		Winner:      game.MatchPlayer{Code: strings.ToUpper(strings.TrimSpace(req.WinnerCode))},
		Losers:      make([]game.MatchPlayer, 0, len(req.LoserCodes)),
		Moves:       req.Moves,
		CompletedAt: req.CompletedAt,
	}
	for _, code := range req.LoserCodes {
		outcome.Losers = append(outcome.Losers, game.MatchPlayer{
			Code: strings.ToUpper(strings.TrimSpace(code)),
		})
	}
	return outcome, nil
}

type FeedResponse struct {
	Revision uint64                `json:"revision"`
	Players  []PlayerResponse      `json:"players"`
	Records  []MatchRecordResponse `json:"records"`
}

func FeedResponseFromEntities(revision uint64, players []entities.Player, records []entities.MatchRecord) FeedResponse {
	return FeedResponse{
		Revision: revision,
		Players:  PlayerListResponseFromEntities(players).Items,
		Records:  MatchRecordListResponseFromEntities(records).Items,
	}
}
