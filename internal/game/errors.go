package game

import "errors"

var (
	ErrInvalidSetup   = errors.New("invalid setup")
	ErrInvalidScore   = errors.New("invalid score")
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrMatchNotActive = errors.New("match not active")
	ErrMatchStarted   = errors.New("match already started")
)
