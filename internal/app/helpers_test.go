package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codewords/internal/domain"
	"codewords/internal/store"
	"codewords/internal/words"
)

const (
	host   = "host"
	spyB   = "spy-b"
	agentA = "agent-a"
	agentB = "agent-b"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHub returns a hub over an in-memory store whose timer never fires
// unless opts say otherwise
func newTestHub(t *testing.T, opts HubOptions) (*GameHub, store.Store) {
	t.Helper()
	if opts.TickInterval == 0 {
		opts.TickInterval = time.Hour
	}
	st := store.NewMemoryStore()
	hub := NewGameHub(st, words.Default(), opts, testLogger())
	t.Cleanup(func() {
		hub.Close()
		st.Close()
	})
	return hub, st
}

// backdate moves a session's last activity d into the past
func backdate(s *GameSession, d time.Duration) {
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	s.lastActivity = s.lastActivity.Add(-d)
}

// readyGame seats host (team A spymaster), spyB (team B spymaster) and one
// agent per team
func readyGame(t *testing.T, hub *GameHub) *GameSession {
	t.Helper()
	ctx := context.Background()

	s, err := hub.CreateGame(ctx)
	require.NoError(t, err)

	for _, id := range []string{host, spyB, agentA, agentB} {
		_, err := s.Join(ctx, id, id)
		require.NoError(t, err)
	}
	require.NoError(t, s.ToggleSpymaster(ctx, host, host))
	require.NoError(t, s.ToggleSpymaster(ctx, spyB, spyB))
	return s
}

func snapshot(t *testing.T, st store.Store, roomCode string) *domain.Session {
	t.Helper()
	s, err := st.Get(context.Background(), roomCode)
	require.NoError(t, err)
	return s
}

// actors returns the spymaster and agent ids of a team
func actors(team domain.Team) (spymaster, agent string) {
	if team == domain.TeamA {
		return host, agentA
	}
	return spyB, agentB
}

// cellsOf returns the unrevealed cell indexes of a type
func cellsOf(s *domain.Session, ct domain.CellType) []int {
	idx := make([]int, 0)
	for i, c := range s.Board {
		if c.Type == ct && !c.Revealed {
			idx = append(idx, i)
		}
	}
	return idx
}

type fakeClient struct {
	id string

	mu     sync.Mutex
	views  []*domain.Session
	closed bool
}

func (c *fakeClient) SendState(view *domain.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = append(c.views, view)
	return nil
}

func (c *fakeClient) GetPlayerID() string { return c.id }

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) last() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.views) == 0 {
		return nil
	}
	return c.views[len(c.views)-1]
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// conflictingStore loses every write
type conflictingStore struct {
	store.Store

	mu   sync.Mutex
	puts int
}

func (s *conflictingStore) Put(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	return store.ErrVersionConflict
}
