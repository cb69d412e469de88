package domain

// AllowedDurations are the sub-timer lengths, in seconds, the host can pick from
var AllowedDurations = []int{30, 60, 90, 120, 180, 300}

// LobbySettings configures the per-session turn timers.
//
// Invariant: if both sub-timers are disabled, TimeLimitEnabled is false.
// Every mutator below preserves it.
type LobbySettings struct {
	TimeLimitEnabled      bool `json:"timeLimitEnabled"`
	SpymasterTimerEnabled bool `json:"spymasterTimerEnabled"`
	SpymasterDuration     int  `json:"spymasterDuration"`
	NormalTimerEnabled    bool `json:"normalTimerEnabled"`
	NormalDuration        int  `json:"normalDuration"`
}

// DefaultLobbySettings returns the settings a new session starts with
func DefaultLobbySettings() LobbySettings {
	return LobbySettings{
		TimeLimitEnabled:      false,
		SpymasterTimerEnabled: true,
		SpymasterDuration:     60,
		NormalTimerEnabled:    true,
		NormalDuration:        90,
	}
}

// IsAllowedDuration reports whether seconds is one of AllowedDurations
func IsAllowedDuration(seconds int) bool {
	for _, d := range AllowedDurations {
		if d == seconds {
			return true
		}
	}
	return false
}

// ToggleTimeLimit flips the master switch. Switching it on while both
// sub-timers are off turns both sub-timers on.
func (l *LobbySettings) ToggleTimeLimit() {
	l.TimeLimitEnabled = !l.TimeLimitEnabled
	if l.TimeLimitEnabled && !l.SpymasterTimerEnabled && !l.NormalTimerEnabled {
		l.SpymasterTimerEnabled = true
		l.NormalTimerEnabled = true
	}
}

// ToggleSpymasterTimer flips the hint-phase timer
func (l *LobbySettings) ToggleSpymasterTimer() {
	l.SpymasterTimerEnabled = !l.SpymasterTimerEnabled
	l.normalize()
}

// ToggleNormalTimer flips the guessing-phase timer
func (l *LobbySettings) ToggleNormalTimer() {
	l.NormalTimerEnabled = !l.NormalTimerEnabled
	l.normalize()
}

// SetSpymasterDuration sets the hint-phase duration in seconds
func (l *LobbySettings) SetSpymasterDuration(seconds int) error {
	if !IsAllowedDuration(seconds) {
		return ErrInvalidDuration
	}
	l.SpymasterDuration = seconds
	return nil
}

// SetNormalDuration sets the guessing-phase duration in seconds
func (l *LobbySettings) SetNormalDuration(seconds int) error {
	if !IsAllowedDuration(seconds) {
		return ErrInvalidDuration
	}
	l.NormalDuration = seconds
	return nil
}

func (l *LobbySettings) normalize() {
	if !l.SpymasterTimerEnabled && !l.NormalTimerEnabled {
		l.TimeLimitEnabled = false
	}
}

// SpymasterSeconds is the hint-phase length, or 0 when that phase is untimed
func (l LobbySettings) SpymasterSeconds() int {
	if l.TimeLimitEnabled && l.SpymasterTimerEnabled {
		return l.SpymasterDuration
	}
	return 0
}

// NormalSeconds is the guessing-phase length, or 0 when that phase is untimed
func (l LobbySettings) NormalSeconds() int {
	if l.TimeLimitEnabled && l.NormalTimerEnabled {
		return l.NormalDuration
	}
	return 0
}

// SecondsFor returns the configured length of the given turn phase
func (l LobbySettings) SecondsFor(tp TurnPhase) int {
	if tp == TurnGuessing {
		return l.NormalSeconds()
	}
	return l.SpymasterSeconds()
}
