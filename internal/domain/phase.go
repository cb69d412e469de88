package domain

// Phase represents the coarse lifecycle of a session
type Phase string

const (
	PhaseLobby    Phase = "lobby"    // Players choosing teams, host configuring timers
	PhasePlaying  Phase = "playing"  // Turns in progress
	PhaseFinished Phase = "finished" // A winner has been decided
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseLobby:    {PhasePlaying},
		PhasePlaying:  {PhaseFinished},
		PhaseFinished: {PhaseLobby}, // restart
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// TurnPhase is the sub-state of a turn while the session is playing
type TurnPhase string

const (
	TurnHint     TurnPhase = "hint"     // Spymaster must give a clue
	TurnGuessing TurnPhase = "guessing" // Field agents may reveal cells
)

// TurnEndReason says why a turn was handed over
type TurnEndReason string

const (
	TurnEndTimeout TurnEndReason = "timeout"
	TurnEndManual  TurnEndReason = "manual"
)
