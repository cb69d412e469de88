package domain

import "errors"

// Domain errors
var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameFull         = errors.New("game is full")
	ErrInvalidPhase     = errors.New("invalid action for current phase")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotHost          = errors.New("only host can perform this action")
	ErrNotSpymaster     = errors.New("only the current team's spymaster can give a hint")
	ErrIsSpymaster      = errors.New("spymasters cannot reveal or highlight cells")
	ErrNotYourTurn      = errors.New("not your team's turn")
	ErrNotReady         = errors.New("each team needs one spymaster and at least one agent")
	ErrEmptyHint        = errors.New("hint word cannot be empty")
	ErrInvalidHintCount = errors.New("hint count out of range")
	ErrInvalidCell      = errors.New("cell index out of range")
	ErrInvalidDuration  = errors.New("duration is not one of the allowed options")
	ErrInvalidTeam      = errors.New("invalid team")
	ErrEmptyName        = errors.New("name cannot be empty")

	// ErrNoop marks an intent that is valid but changes nothing, such as
	// revealing an already revealed cell. Callers treat it as success.
	ErrNoop = errors.New("no state change")
)
