package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codewords/internal/domain"
	"codewords/internal/store"
)

func TestGameSession_PlaysATurn(t *testing.T) {
	hub, st := newTestHub(t, HubOptions{})
	s := readyGame(t, hub)
	ctx := context.Background()

	assert.ErrorIs(t, s.StartGame(ctx, agentA), domain.ErrNotHost)
	require.NoError(t, s.StartGame(ctx, host))

	snap := snapshot(t, st, s.GetRoomCode())
	team := snap.CurrentTeam
	spymaster, agent := actors(team)

	assert.ErrorIs(t, s.SubmitHint(ctx, agent, "desert", 2), domain.ErrNotSpymaster)
	require.NoError(t, s.SubmitHint(ctx, spymaster, "desert", 2))

	own := cellsOf(snap, domain.CellTypeFor(team))
	require.NoError(t, s.Reveal(ctx, agent, own[0]))

	snap = snapshot(t, st, s.GetRoomCode())
	assert.Equal(t, 1, snap.Scores.Get(team))
	assert.Equal(t, 2, snap.GuessesRemaining)
	assert.Equal(t, domain.TurnGuessing, snap.TurnPhase)

	require.NoError(t, s.EndTurn(ctx, agent))
	snap = snapshot(t, st, s.GetRoomCode())
	assert.Equal(t, team.Opponent(), snap.CurrentTeam)
	assert.Equal(t, domain.TurnHint, snap.TurnPhase)
}

func TestGameSession_NoopDoesNotWrite(t *testing.T) {
	hub, st := newTestHub(t, HubOptions{})
	s := readyGame(t, hub)
	ctx := context.Background()

	require.NoError(t, s.StartGame(ctx, host))
	snap := snapshot(t, st, s.GetRoomCode())
	spymaster, agent := actors(snap.CurrentTeam)
	require.NoError(t, s.SubmitHint(ctx, spymaster, "desert", 3))

	idx := cellsOf(snap, domain.CellTypeFor(snap.CurrentTeam))[0]
	require.NoError(t, s.Reveal(ctx, agent, idx))
	before := snapshot(t, st, s.GetRoomCode())

	require.NoError(t, s.Reveal(ctx, agent, idx))
	after := snapshot(t, st, s.GetRoomCode())
	assert.Equal(t, before.Version, after.Version)
}

func TestGameSession_ConcurrentRevealsAreNotLost(t *testing.T) {
	hub, st := newTestHub(t, HubOptions{WriteRetries: 10})
	s := readyGame(t, hub)
	ctx := context.Background()

	require.NoError(t, s.StartGame(ctx, host))
	snap := snapshot(t, st, s.GetRoomCode())
	team := snap.CurrentTeam
	spymaster, agent := actors(team)
	require.NoError(t, s.SubmitHint(ctx, spymaster, "desert", 9))

	targets := cellsOf(snap, domain.CellTypeFor(team))[:5]

	var wg sync.WaitGroup
	for _, idx := range targets {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			assert.NoError(t, s.Reveal(ctx, agent, idx))
		}(idx)
	}
	wg.Wait()

	snap = snapshot(t, st, s.GetRoomCode())
	assert.Equal(t, len(targets), snap.Scores.Get(team))
	for _, idx := range targets {
		assert.True(t, snap.Board[idx].Revealed, "cell %d", idx)
	}
	assert.Equal(t, 10-len(targets), snap.GuessesRemaining)
}

func TestGameSession_ReturnsConflictAfterRetries(t *testing.T) {
	mem := store.NewMemoryStore()
	defer mem.Close()
	ctx := context.Background()

	initial := domain.NewSession("ABCDE", domain.Board{
		Cells:        make([]domain.Cell, domain.BoardSize),
		StartingTeam: domain.TeamA,
	})
	require.NoError(t, mem.Create(ctx, initial))

	st := &conflictingStore{Store: mem}
	s := newGameSession(initial, st, nil, sessionConfig{retries: 3, tickInterval: time.Hour}, testLogger())
	defer s.Close()

	_, err := s.Join(ctx, "p1", "Alice")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 4, st.puts)
}

func TestGameSession_RejectedIntentDoesNotWrite(t *testing.T) {
	hub, st := newTestHub(t, HubOptions{})
	s := readyGame(t, hub)
	ctx := context.Background()

	before := snapshot(t, st, s.GetRoomCode())
	assert.ErrorIs(t, s.UpdateSettings(ctx, agentA, func(l *domain.LobbySettings) error {
		l.ToggleTimeLimit()
		return nil
	}), domain.ErrNotHost)
	assert.ErrorIs(t, s.SubmitHint(ctx, host, "desert", 1), domain.ErrInvalidPhase)

	after := snapshot(t, st, s.GetRoomCode())
	assert.Equal(t, before.Version, after.Version)
}

func TestGameSession_JoinLeaveAndConnection(t *testing.T) {
	hub, st := newTestHub(t, HubOptions{})
	s, err := hub.CreateGame(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	p, err := s.Join(ctx, "p1", "Alice")
	require.NoError(t, err)
	assert.True(t, p.IsHost)
	assert.Equal(t, domain.TeamA, p.Team)

	p, err = s.Join(ctx, "p2", "Bob")
	require.NoError(t, err)
	assert.Equal(t, domain.TeamB, p.Team)

	_, err = s.Join(ctx, "p3", "  ")
	assert.ErrorIs(t, err, domain.ErrEmptyName)

	require.NoError(t, s.Disconnect(ctx, "p2"))
	require.NoError(t, s.Disconnect(ctx, "nobody"))
	snap := snapshot(t, st, s.GetRoomCode())
	bob, err := snap.GetPlayer("p2")
	require.NoError(t, err)
	assert.False(t, bob.IsConnected())

	require.NoError(t, s.Connect(ctx, "p2"))
	assert.ErrorIs(t, s.Connect(ctx, "nobody"), domain.ErrPlayerNotFound)

	require.NoError(t, s.Leave(ctx, "p1"))
	snap = snapshot(t, st, s.GetRoomCode())
	assert.Equal(t, "p2", snap.HostID)
	assert.Len(t, snap.Players, 1)
}

func TestGameSession_LeaveDuringPlayKeepsSeat(t *testing.T) {
	hub, st := newTestHub(t, HubOptions{})
	s := readyGame(t, hub)
	ctx := context.Background()

	require.NoError(t, s.StartGame(ctx, host))
	require.NoError(t, s.Leave(ctx, spyB))
	require.NoError(t, s.Leave(ctx, spyB))

	snap := snapshot(t, st, s.GetRoomCode())
	assert.Len(t, snap.Players, 4)
	require.NotNil(t, snap.Spymaster(domain.TeamB))
	assert.Equal(t, spyB, snap.Spymaster(domain.TeamB).ID)
	assert.False(t, snap.Spymaster(domain.TeamB).IsConnected())
	assert.Len(t, snap.TeamMembers(domain.TeamB), 2)

	require.NoError(t, s.Connect(ctx, spyB))
	snap = snapshot(t, st, s.GetRoomCode())
	assert.True(t, snap.Spymaster(domain.TeamB).IsConnected())
}

func TestGameSession_LobbyIntents(t *testing.T) {
	hub, st := newTestHub(t, HubOptions{})
	s := readyGame(t, hub)
	ctx := context.Background()

	require.NoError(t, s.SwitchTeam(ctx, agentA, agentA, domain.TeamB))
	assert.ErrorIs(t, s.SwitchTeam(ctx, agentB, agentA, domain.TeamA), domain.ErrNotHost)
	require.NoError(t, s.SwitchTeam(ctx, host, agentA, domain.TeamA))

	require.NoError(t, s.ToggleSpymaster(ctx, host, agentA))
	snap := snapshot(t, st, s.GetRoomCode())
	assert.Equal(t, agentA, snap.Spymaster(domain.TeamA).ID)
	assert.True(t, snap.CanStart())

	require.NoError(t, s.ToggleSpymaster(ctx, spyB, spyB))
	snap = snapshot(t, st, s.GetRoomCode())
	assert.Nil(t, snap.Spymaster(domain.TeamB))
	assert.False(t, snap.CanStart())
	assert.ErrorIs(t, s.StartGame(ctx, host), domain.ErrNotReady)

	require.NoError(t, s.UpdateSettings(ctx, host, func(l *domain.LobbySettings) error {
		l.ToggleTimeLimit()
		return l.SetNormalDuration(120)
	}))
	snap = snapshot(t, st, s.GetRoomCode())
	assert.True(t, snap.LobbySettings.TimeLimitEnabled)
	assert.Equal(t, 120, snap.LobbySettings.NormalDuration)

	assert.ErrorIs(t, s.UpdateSettings(ctx, host, func(l *domain.LobbySettings) error {
		return l.SetNormalDuration(45)
	}), domain.ErrInvalidDuration)
}

func TestGameSession_Restart(t *testing.T) {
	hub, st := newTestHub(t, HubOptions{})
	s := readyGame(t, hub)
	ctx := context.Background()

	require.NoError(t, s.StartGame(ctx, host))
	assert.ErrorIs(t, s.Restart(ctx, host), domain.ErrInvalidPhase)

	snap := snapshot(t, st, s.GetRoomCode())
	team := snap.CurrentTeam
	spymaster, agent := actors(team)
	require.NoError(t, s.SubmitHint(ctx, spymaster, "desert", 1))
	require.NoError(t, s.Reveal(ctx, agent, cellsOf(snap, domain.CellForbidden)[0]))

	snap = snapshot(t, st, s.GetRoomCode())
	require.Equal(t, domain.PhaseFinished, snap.Phase)
	assert.Equal(t, team.Opponent(), snap.Winner)

	assert.ErrorIs(t, s.Restart(ctx, agentA), domain.ErrNotHost)
	require.NoError(t, s.Restart(ctx, host))

	snap = snapshot(t, st, s.GetRoomCode())
	assert.Equal(t, domain.PhaseLobby, snap.Phase)
	assert.Len(t, snap.Board, domain.BoardSize)
	assert.Len(t, snap.Players, 4)
	assert.Empty(t, snap.History)
	assert.Equal(t, domain.Scores{}, snap.Scores)
	for _, c := range snap.Board {
		assert.False(t, c.Revealed)
	}
}

func TestGameSession_BroadcastsRedactedViews(t *testing.T) {
	hub, _ := newTestHub(t, HubOptions{})
	s := readyGame(t, hub)
	ctx := context.Background()

	spy := &fakeClient{id: host}
	agent := &fakeClient{id: agentA}
	s.RegisterClient(host, spy)
	s.RegisterClient(agentA, agent)

	require.NoError(t, s.StartGame(ctx, host))

	require.Eventually(t, func() bool {
		v := agent.last()
		return v != nil && v.Phase == domain.PhasePlaying
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		v := spy.last()
		return v != nil && v.Phase == domain.PhasePlaying
	}, time.Second, 5*time.Millisecond)

	for _, c := range agent.last().Board {
		assert.Equal(t, domain.CellHidden, c.Type)
	}
	for _, c := range spy.last().Board {
		assert.NotEqual(t, domain.CellHidden, c.Type)
	}

	view, err := s.View(ctx, agentA)
	require.NoError(t, err)
	assert.Equal(t, domain.CellHidden, view.Board[0].Type)
}

func TestGameSession_ClientRegistry(t *testing.T) {
	hub, _ := newTestHub(t, HubOptions{})
	s, err := hub.CreateGame(context.Background())
	require.NoError(t, err)

	first := &fakeClient{id: "p1"}
	second := &fakeClient{id: "p1"}

	s.RegisterClient("p1", first)
	s.RegisterClient("p1", second)
	assert.True(t, first.isClosed(), "a replaced connection is closed")
	assert.Equal(t, 1, s.ClientCount())

	s.UnregisterClient("p1", first)
	got, ok := s.GetClient("p1")
	require.True(t, ok)
	assert.Same(t, second, got)

	s.UnregisterClient("p1", second)
	assert.Equal(t, 0, s.ClientCount())
}

func TestGameSession_CloseClosesClients(t *testing.T) {
	hub, _ := newTestHub(t, HubOptions{})
	s, err := hub.CreateGame(context.Background())
	require.NoError(t, err)

	c := &fakeClient{id: "p1"}
	s.RegisterClient("p1", c)
	s.Close()
	s.Close()

	assert.True(t, c.isClosed())
	assert.Equal(t, 0, hub.GetSessionCount())
}
