package domain

import (
	"fmt"
	"math/rand"

	"codewords/internal/words"
)

const (
	// BoardSize is the number of cells on a board
	BoardSize = 25

	StartingTeamCells = 9
	OtherTeamCells    = 8
	NeutralCells      = 7
	ForbiddenCells    = 1
)

// Cell is one word on the board
type Cell struct {
	Word        string   `json:"word"`
	Category    string   `json:"category,omitempty"`
	Type        CellType `json:"type"`
	Revealed    bool     `json:"revealed"`
	Highlighted bool     `json:"highlighted"`
}

// WordSampler supplies distinct words for a board
type WordSampler interface {
	Sample(r *rand.Rand, count int) ([]words.Word, error)
}

// Board is a freshly generated set of cells together with the team that
// plays first
type Board struct {
	Cells        []Cell
	StartingTeam Team
}

// TargetScores returns how many cells each team must reveal to win
func (b Board) TargetScores() Scores {
	if b.StartingTeam == TeamA {
		return Scores{A: StartingTeamCells, B: OtherTeamCells}
	}
	return Scores{A: OtherTeamCells, B: StartingTeamCells}
}

// GenerateBoard picks the starting team uniformly at random, samples
// BoardSize words and assigns them a shuffled multiset of cell types.
func GenerateBoard(sampler WordSampler, r *rand.Rand) (Board, error) {
	starting := TeamA
	if r.Intn(2) == 1 {
		starting = TeamB
	}

	ws, err := sampler.Sample(r, BoardSize)
	if err != nil {
		return Board{}, fmt.Errorf("sample board words: %w", err)
	}
	if len(ws) != BoardSize {
		return Board{}, fmt.Errorf("sample board words: got %d, want %d", len(ws), BoardSize)
	}

	types := cellTypes(starting)
	r.Shuffle(len(types), func(i, j int) {
		types[i], types[j] = types[j], types[i]
	})

	cells := make([]Cell, BoardSize)
	for i, w := range ws {
		cells[i] = Cell{
			Word:     w.Text,
			Category: w.Category,
			Type:     types[i],
		}
	}

	return Board{Cells: cells, StartingTeam: starting}, nil
}

// cellTypes builds the unshuffled type multiset for a board
func cellTypes(starting Team) []CellType {
	types := make([]CellType, 0, BoardSize)
	for i := 0; i < StartingTeamCells; i++ {
		types = append(types, CellTypeFor(starting))
	}
	for i := 0; i < OtherTeamCells; i++ {
		types = append(types, CellTypeFor(starting.Opponent()))
	}
	for i := 0; i < NeutralCells; i++ {
		types = append(types, CellNeutral)
	}
	for i := 0; i < ForbiddenCells; i++ {
		types = append(types, CellForbidden)
	}
	return types
}
