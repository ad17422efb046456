package entities

import "time"

const (
	DefaultElo       = 1200
	PlayerCodeLength = 3
)

type Player struct {
	Code      string    `dynamodbav:"Code" json:"code"`
	Name      string    `dynamodbav:"Name" json:"name"`
	Elo       int       `dynamodbav:"Elo" json:"elo"`
	Matches   int       `dynamodbav:"Matches" json:"matches"`
	Wins      int       `dynamodbav:"Wins" json:"wins"`
	CreatedAt time.Time `dynamodbav:"CreatedAt" json:"createdAt"`
	Version   int64     `dynamodbav:"Version" json:"-"`
}

// Losses is derived, Wins never exceeds Matches.
func (p Player) Losses() int {
	return p.Matches - p.Wins
}

// WinRate returns the rounded win percentage, 0 for a player with no matches.
func (p Player) WinRate() int {
	if p.Matches == 0 {
		return 0
	}
	return (p.Wins*100 + p.Matches/2) / p.Matches
}
