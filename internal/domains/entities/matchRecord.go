package entities

import "time"

type Move struct {
	PlayerCode string    `dynamodbav:"PlayerCode" json:"playerCode"`
	Points     int       `dynamodbav:"Points" json:"points"`
	Remaining  int       `dynamodbav:"Remaining" json:"remaining"`
	Bust       bool      `dynamodbav:"Bust" json:"bust"`
	At         time.Time `dynamodbav:"At" json:"at"`
}

type LoserEntry struct {
	Code      string `dynamodbav:"Code" json:"code"`
	Name      string `dynamodbav:"Name" json:"name"`
	EloChange int    `dynamodbav:"EloChange" json:"eloChange"`
}

type MatchRecord struct {
	Id          string       `dynamodbav:"RecordId" json:"id"`
	WinnerCode  string       `dynamodbav:"WinnerCode" json:"winnerCode"`
	WinnerName  string       `dynamodbav:"WinnerName" json:"winnerName"`
	Losers      []LoserEntry `dynamodbav:"Losers" json:"losers"`
	EloChange   int          `dynamodbav:"EloChange" json:"eloChange"`
	CompletedAt time.Time    `dynamodbav:"CompletedAt" json:"completedAt"`
	Moves       []Move       `dynamodbav:"Moves" json:"moves"`
}
