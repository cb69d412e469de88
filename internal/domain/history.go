package domain

import "time"

// HistoryKind tags a HistoryEntry variant
type HistoryKind string

const (
	HistoryHint    HistoryKind = "hint"
	HistoryGuess   HistoryKind = "guess"
	HistoryTurnEnd HistoryKind = "turn_end"
)

// HistoryEntry is one line of the display log. Only the fields of its
// Kind are populated.
type HistoryEntry struct {
	Kind      HistoryKind   `json:"type"`
	Team      Team          `json:"team,omitempty"`
	Word      string        `json:"word,omitempty"`
	Amount    int           `json:"amount,omitempty"`
	Player    string        `json:"player,omitempty"`
	Color     CellType      `json:"color,omitempty"`
	Reason    TurnEndReason `json:"reason,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewHintEntry records a submitted hint
func NewHintEntry(team Team, word string, amount int) HistoryEntry {
	return HistoryEntry{
		Kind:      HistoryHint,
		Team:      team,
		Word:      word,
		Amount:    amount,
		Timestamp: time.Now(),
	}
}

// NewGuessEntry records a resolved reveal
func NewGuessEntry(player, word string, color CellType) HistoryEntry {
	return HistoryEntry{
		Kind:      HistoryGuess,
		Player:    player,
		Word:      word,
		Color:     color,
		Timestamp: time.Now(),
	}
}

// NewTurnEndEntry records a turn handed over to the other team
func NewTurnEndEntry(team Team, reason TurnEndReason) HistoryEntry {
	return HistoryEntry{
		Kind:      HistoryTurnEnd,
		Team:      team,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}
