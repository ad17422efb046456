package server

import (
	"errors"

	"github.com/dartslab/dartslab/internal/domains/interfaces"
	"github.com/dartslab/dartslab/internal/game"
	"github.com/dartslab/dartslab/internal/usecases"
)

var (
	ErrStatusInvalidPayload   string = "INVALID_PAYLOAD"
	ErrStatusInvalidSetup     string = "INVALID_SETUP"
	ErrStatusInvalidScore     string = "INVALID_SCORE"
	ErrStatusNothingToUndo    string = "NOTHING_TO_UNDO"
	ErrStatusMatchNotActive   string = "MATCH_NOT_ACTIVE"
	ErrStatusNoMatch          string = "NO_MATCH"
	ErrStatusMatchInProgress  string = "MATCH_IN_PROGRESS"
	ErrStatusNothingToCommit  string = "NOTHING_TO_COMMIT"
	ErrStatusCommitFailed     string = "COMMIT_FAILED"
	ErrStatusInvalidPlayer    string = "INVALID_PLAYER"
	ErrStatusPlayerNotFound   string = "PLAYER_NOT_FOUND"
	ErrStatusPlayerExists     string = "PLAYER_EXISTS"
	ErrStatusInternal         string = "INTERNAL_ERROR"
	ErrStatusUnknownOperation string = "UNKNOWN_OPERATION"
)

var (
	ErrNoMatch         = errors.New("no match at this table")
	ErrMatchInProgress = errors.New("a match is still in progress")
	ErrNothingToCommit = errors.New("no finished match waiting for commit")
	ErrInvalidPayload  = errors.New("invalid payload")
)

func errorStatus(err error) string {
	switch {
	case errors.Is(err, usecases.ErrCommitFailed):
		return ErrStatusCommitFailed
	case errors.Is(err, game.ErrInvalidSetup), errors.Is(err, game.ErrMatchStarted):
		return ErrStatusInvalidSetup
	case errors.Is(err, game.ErrInvalidScore):
		return ErrStatusInvalidScore
	case errors.Is(err, game.ErrNothingToUndo):
		return ErrStatusNothingToUndo
	case errors.Is(err, game.ErrMatchNotActive):
		return ErrStatusMatchNotActive
	case errors.Is(err, ErrNoMatch):
		return ErrStatusNoMatch
	case errors.Is(err, ErrMatchInProgress):
		return ErrStatusMatchInProgress
	case errors.Is(err, ErrNothingToCommit):
		return ErrStatusNothingToCommit
	case errors.Is(err, ErrInvalidPayload):
		return ErrStatusInvalidPayload
	case errors.Is(err, usecases.ErrInvalidPlayer):
		return ErrStatusInvalidPlayer
	case errors.Is(err, interfaces.ErrPlayerNotFound):
		return ErrStatusPlayerNotFound
	case errors.Is(err, interfaces.ErrPlayerExists):
		return ErrStatusPlayerExists
	default:
		return ErrStatusInternal
	}
}
