package dtos

import (
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
)

type PlayerRegisterRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type PlayerRenameRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type PlayerResponse struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Elo       int       `json:"elo"`
	Matches   int       `json:"matches"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	WinRate   int       `json:"winRate"`
	CreatedAt time.Time `json:"createdAt"`
}

type PlayerListResponse struct {
	Items []PlayerResponse `json:"items"`
}

func PlayerResponseFromEntity(p entities.Player) PlayerResponse {
	return PlayerResponse{
		Code:      p.Code,
		Name:      p.Name,
		Elo:       p.Elo,
		Matches:   p.Matches,
		Wins:      p.Wins,
		Losses:    p.Losses(),
		WinRate:   p.WinRate(),
		CreatedAt: p.CreatedAt,
	}
}

func PlayerListResponseFromEntities(players []entities.Player) PlayerListResponse {
	items := make([]PlayerResponse, 0, len(players))
	for _, p := range players {
		items = append(items, PlayerResponseFromEntity(p))
	}
	return PlayerListResponse{Items: items}
}
