package domain

// Team identifies one of the two competing sides
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// String returns the string representation of the team
func (t Team) String() string {
	return string(t)
}

// Valid reports whether t names one of the two teams
func (t Team) Valid() bool {
	return t == TeamA || t == TeamB
}

// Opponent returns the other team
func (t Team) Opponent() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// CellType is the hidden affiliation of a board cell
type CellType string

const (
	CellTeamA     CellType = "teamA"
	CellTeamB     CellType = "teamB"
	CellNeutral   CellType = "neutral"
	CellForbidden CellType = "forbidden"

	// CellHidden is what field agents see for an unrevealed cell
	CellHidden CellType = ""
)

// CellTypeFor returns the cell type that scores for the given team
func CellTypeFor(t Team) CellType {
	if t == TeamA {
		return CellTeamA
	}
	return CellTeamB
}

// Team returns the team a cell scores for, if any
func (c CellType) Team() (Team, bool) {
	switch c {
	case CellTeamA:
		return TeamA, true
	case CellTeamB:
		return TeamB, true
	default:
		return "", false
	}
}

// Scores holds a per-team counter
type Scores struct {
	A int `json:"A"`
	B int `json:"B"`
}

// Get returns the counter for a team
func (s Scores) Get(t Team) int {
	if t == TeamA {
		return s.A
	}
	return s.B
}

// Inc increments the counter for a team
func (s *Scores) Inc(t Team) {
	if t == TeamA {
		s.A++
	} else {
		s.B++
	}
}
