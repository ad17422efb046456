package game

import (
	"time"

	"github.com/dartslab/dartslab/internal/domains/entities"
)

type Status uint8

const (
	IDLE Status = iota
	ACTIVE
	COMPLETE
)

const (
	StartingScore  = 501
	MaxTurnPoints  = 180
	maxEntryDigits = 3
)

// MatchPlayer is a player's seat in a match: the snapshot taken at start
// plus the score still to count down.
type MatchPlayer struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Elo   int    `json:"elo"`
	Score int    `json:"score"`
}

// Outcome is what a finished match hands over for settlement. Id is fixed
// when the match completes and identifies the settlement across retries.
type Outcome struct {
	Id          string          `json:"id"`
	Winner      MatchPlayer     `json:"winner"`
	Losers      []MatchPlayer   `json:"losers"`
	Moves       []entities.Move `json:"moves"`
	CompletedAt time.Time       `json:"completedAt"`
}

func newMatchPlayer(p entities.Player) MatchPlayer {
	return MatchPlayer{
		Code:  p.Code,
		Name:  p.Name,
		Elo:   p.Elo,
		Score: StartingScore,
	}
}

func (s Status) String() string {
	switch s {
	case IDLE:
		return "IDLE"
	case ACTIVE:
		return "ACTIVE"
	case COMPLETE:
		return "COMPLETE"
	default:
		return "UNKNOWN"
	}
}

// Codes returns the player codes of an outcome, winner first.
func (o Outcome) Codes() []string {
	codes := make([]string, 0, len(o.Losers)+1)
	codes = append(codes, o.Winner.Code)
	for _, loser := range o.Losers {
		codes = append(codes, loser.Code)
	}
	return codes
}
