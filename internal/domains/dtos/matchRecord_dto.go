package dtos

import (
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
)

type MatchRecordResponse struct {
	Id          string          `json:"id"`
	WinnerCode  string          `json:"winnerCode"`
	WinnerName  string          `json:"winnerName"`
	Losers      []LoserResponse `json:"losers"`
	EloChange   int             `json:"eloChange"`
	CompletedAt time.Time       `json:"completedAt"`
	Moves       []MoveResponse  `json:"moves,omitempty"`

	// Set for head-to-head matches only.
	Opponent *LoserResponse `json:"opponent,omitempty"`
}

type LoserResponse struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	EloChange int    `json:"eloChange"`
}

type MoveResponse struct {
	PlayerCode string    `json:"playerCode"`
	Points     int       `json:"points"`
	Remaining  int       `json:"remaining"`
	Bust       bool      `json:"bust"`
	At         time.Time `json:"at"`
}

type MatchRecordListResponse struct {
	Items []MatchRecordResponse `json:"items"`
}

func MatchRecordResponseFromEntity(record entities.MatchRecord, withMoves bool) MatchRecordResponse {
	resp := MatchRecordResponse{
		Id:          record.Id,
		WinnerCode:  record.WinnerCode,
		WinnerName:  record.WinnerName,
		Losers:      make([]LoserResponse, 0, len(record.Losers)),
		EloChange:   record.EloChange,
		CompletedAt: record.CompletedAt,
	}
	for _, l := range record.Losers {
		resp.Losers = append(resp.Losers, LoserResponse{
			Code:      l.Code,
			Name:      l.Name,
			EloChange: l.EloChange,
		})
	}
	if len(resp.Losers) == 1 {
		opponent := resp.Losers[0]
		resp.Opponent = &opponent
	}
	if withMoves {
		resp.Moves = MoveResponsesFromEntities(record.Moves)
	}
	return resp
}

func MatchRecordListResponseFromEntities(records []entities.MatchRecord) MatchRecordListResponse {
	items := make([]MatchRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, MatchRecordResponseFromEntity(r, false))
	}
	return MatchRecordListResponse{Items: items}
}

func MoveResponsesFromEntities(moves []entities.Move) []MoveResponse {
	resp := make([]MoveResponse, 0, len(moves))
	for _, m := range moves {
		resp = append(resp, MoveResponse{
			PlayerCode: m.PlayerCode,
			Points:     m.Points,
			Remaining:  m.Remaining,
			Bust:       m.Bust,
			At:         m.At,
		})
	}
	return resp
}
