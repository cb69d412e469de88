package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fixedBoard lays out cells deterministically: 9 cells for the starting
// team, then 8 for the other, 7 neutral, and the forbidden cell last.
func fixedBoard(starting Team) Board {
	types := cellTypes(starting)
	cells := make([]Cell, len(types))
	for i, ct := range types {
		cells[i] = Cell{Word: wordAt(i), Type: ct}
	}
	return Board{Cells: cells, StartingTeam: starting}
}

func wordAt(i int) string {
	return string(rune('a'+i)) + "word"
}

const (
	hostA  = "host-a"
	agentA = "agent-a"
	spyB   = "spy-b"
	agentB = "agent-b"

	firstStartingCell = 0
	firstOtherCell    = StartingTeamCells
	firstNeutralCell  = StartingTeamCells + OtherTeamCells
	forbiddenCell     = BoardSize - 1
)

// readyLobby returns a lobby where team A is {hostA (spymaster), agentA}
// and team B is {spyB (spymaster), agentB}.
func readyLobby(t *testing.T, starting Team) *Session {
	t.Helper()
	s := NewSession("ABCDE", fixedBoard(starting))

	for _, p := range []struct{ id, name string }{
		{hostA, "Host"},
		{spyB, "Spy B"},
		{agentA, "Agent A"},
		{agentB, "Agent B"},
	} {
		_, err := s.AddPlayer(p.id, p.name)
		require.NoError(t, err)
	}
	require.NoError(t, s.ToggleSpymaster(hostA, hostA))
	require.NoError(t, s.ToggleSpymaster(spyB, spyB))
	require.True(t, s.CanStart())
	return s
}

// playing returns a started session on team A's hint phase
func playing(t *testing.T) *Session {
	t.Helper()
	s := readyLobby(t, TeamA)
	require.NoError(t, s.Start(hostA))
	return s
}

// guessing returns a started session where team A's spymaster has hinted
func guessing(t *testing.T, count int) *Session {
	t.Helper()
	s := playing(t)
	require.NoError(t, s.SubmitHint(hostA, "desert", count))
	return s
}
