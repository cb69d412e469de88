package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"codewords/internal/domain"
	"codewords/internal/store"
)

// DefaultWriteRetries is how many times a conflicting write is retried
// against a fresh snapshot before ErrConflict is returned
const DefaultWriteRetries = 5

// ClientConnection represents a connected client
type ClientConnection interface {
	SendState(view *domain.Session) error
	GetPlayerID() string
	Close() error
}

// BoardSource produces a fresh board for a restart
type BoardSource func() (domain.Board, error)

// GameSession is the live handle on one room. Every intent reads the
// shared snapshot, applies a domain transition and writes it back with a
// version check. Written snapshots come back through the store
// subscription and are pushed to each connected client as its own view.
type GameSession struct {
	roomCode string
	store    store.Store
	boards   BoardSource
	retries  int
	logger   *slog.Logger

	clients   map[string]ClientConnection // playerID -> client
	clientsMu sync.RWMutex

	latest       *domain.Session
	lastActivity time.Time
	latestMu     sync.RWMutex

	timer     *TimerAuthority
	snapshots <-chan *domain.Session
	cancel    func()
	onClosed  func(*GameSession)

	done      chan struct{}
	closeOnce sync.Once
}

type sessionConfig struct {
	retries      int
	tickInterval time.Duration
	onClosed     func(*GameSession)
}

// newGameSession attaches to a stored session and starts its broadcaster
// and timer
func newGameSession(initial *domain.Session, st store.Store, boards BoardSource, cfg sessionConfig, logger *slog.Logger) *GameSession {
	if cfg.retries <= 0 {
		cfg.retries = DefaultWriteRetries
	}

	s := &GameSession{
		roomCode: initial.RoomCode,
		store:    st,
		boards:   boards,
		retries:  cfg.retries,
		logger:   logger.With("roomCode", initial.RoomCode),
		clients:  make(map[string]ClientConnection),
		latest:   initial,
		onClosed: cfg.onClosed,
		done:     make(chan struct{}),
	}
	s.lastActivity = time.Now()

	s.timer = NewTimerAuthority(cfg.tickInterval, s.tick, s.logger)
	s.snapshots, s.cancel = st.Subscribe(s.roomCode)

	go s.eventLoop()
	go s.timer.Run()

	return s
}

// GetRoomCode returns the room code
func (s *GameSession) GetRoomCode() string {
	return s.roomCode
}

// Latest returns the most recent snapshot this session has observed
func (s *GameSession) Latest() *domain.Session {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return s.latest.Clone()
}

// LastActivity returns when this session last observed a new snapshot, or
// when it was attached if nothing has been written since
func (s *GameSession) LastActivity() time.Time {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return s.lastActivity
}

// GetPlayerCount returns the number of seated players
func (s *GameSession) GetPlayerCount() int {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return len(s.latest.Players)
}

// GetPhase returns the current game phase
func (s *GameSession) GetPhase() domain.Phase {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return s.latest.Phase
}

// View reads the current snapshot as playerID may see it
func (s *GameSession) View(ctx context.Context, playerID string) (*domain.Session, error) {
	cur, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return cur.ViewFor(playerID), nil
}

// RegisterClient registers a client connection for a player
func (s *GameSession) RegisterClient(playerID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if prev, ok := s.clients[playerID]; ok && prev != client {
		prev.Close()
	}
	s.clients[playerID] = client
}

// UnregisterClient removes a client connection if it is still the one
// registered for the player
func (s *GameSession) UnregisterClient(playerID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if cur, ok := s.clients[playerID]; ok && cur == client {
		delete(s.clients, playerID)
	}
}

// GetClient returns the client for a player
func (s *GameSession) GetClient(playerID string) (ClientConnection, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	client, ok := s.clients[playerID]
	return client, ok
}

// ClientCount returns the number of open client connections
func (s *GameSession) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Join seats a player in the lobby, or reconnects a seated one
func (s *GameSession) Join(ctx context.Context, playerID, name string) (*domain.Player, error) {
	var player *domain.Player
	_, err := s.apply(ctx, "join", func(sess *domain.Session) error {
		p, err := sess.AddPlayer(playerID, name)
		player = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// Leave removes a player from the session. During play the seat is kept
// and the player is only marked disconnected, so they can rejoin.
func (s *GameSession) Leave(ctx context.Context, playerID string) error {
	_, err := s.apply(ctx, "leave", func(sess *domain.Session) error {
		err := sess.RemovePlayer(playerID)
		if errors.Is(err, domain.ErrInvalidPhase) {
			return sess.SetConnected(playerID, false)
		}
		return err
	})
	return err
}

// Connect marks a seated player as connected
func (s *GameSession) Connect(ctx context.Context, playerID string) error {
	_, err := s.apply(ctx, "connect", func(sess *domain.Session) error {
		return sess.SetConnected(playerID, true)
	})
	return err
}

// Disconnect marks a seated player as disconnected. Unknown players are
// ignored.
func (s *GameSession) Disconnect(ctx context.Context, playerID string) error {
	_, err := s.apply(ctx, "disconnect", func(sess *domain.Session) error {
		return sess.SetConnected(playerID, false)
	})
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return nil
	}
	return err
}

func (s *GameSession) SwitchTeam(ctx context.Context, actorID, targetID string, team domain.Team) error {
	_, err := s.apply(ctx, "switch_team", func(sess *domain.Session) error {
		return sess.SwitchTeam(actorID, targetID, team)
	})
	return err
}

func (s *GameSession) ToggleSpymaster(ctx context.Context, actorID, targetID string) error {
	_, err := s.apply(ctx, "toggle_spymaster", func(sess *domain.Session) error {
		return sess.ToggleSpymaster(actorID, targetID)
	})
	return err
}

// UpdateSettings applies a host-only lobby settings change
func (s *GameSession) UpdateSettings(ctx context.Context, actorID string, mutate func(*domain.LobbySettings) error) error {
	_, err := s.apply(ctx, "update_settings", func(sess *domain.Session) error {
		return sess.UpdateSettings(actorID, mutate)
	})
	return err
}

// StartGame starts the game (host only)
func (s *GameSession) StartGame(ctx context.Context, actorID string) error {
	_, err := s.apply(ctx, "start_game", func(sess *domain.Session) error {
		return sess.Start(actorID)
	})
	if err == nil {
		s.logger.Info("game started")
	}
	return err
}

func (s *GameSession) SubmitHint(ctx context.Context, actorID, word string, count int) error {
	_, err := s.apply(ctx, "submit_hint", func(sess *domain.Session) error {
		return sess.SubmitHint(actorID, word, count)
	})
	return err
}

// Reveal resolves a guess. Revealing an already revealed cell succeeds
// without a write.
func (s *GameSession) Reveal(ctx context.Context, actorID string, idx int) error {
	next, err := s.apply(ctx, "reveal", func(sess *domain.Session) error {
		return sess.Reveal(actorID, idx)
	})
	if err == nil && next.Phase == domain.PhaseFinished {
		s.logger.Info("game finished", "winner", next.Winner)
	}
	return err
}

func (s *GameSession) ToggleHighlight(ctx context.Context, actorID string, idx int) error {
	_, err := s.apply(ctx, "toggle_highlight", func(sess *domain.Session) error {
		return sess.ToggleHighlight(actorID, idx)
	})
	return err
}

func (s *GameSession) EndTurn(ctx context.Context, actorID string) error {
	_, err := s.apply(ctx, "end_turn", func(sess *domain.Session) error {
		return sess.EndTurn(actorID)
	})
	return err
}

// Restart deals a new board and returns a finished game to the lobby
// (host only)
func (s *GameSession) Restart(ctx context.Context, actorID string) error {
	board, err := s.boards()
	if err != nil {
		return fmt.Errorf("generate board: %w", err)
	}

	_, err = s.apply(ctx, "restart", func(sess *domain.Session) error {
		return sess.Restart(actorID, board)
	})
	if err == nil {
		s.logger.Info("game restarted")
	}
	return err
}

// tick advances the turn clock. It is driven by the session's timer.
func (s *GameSession) tick(ctx context.Context) error {
	_, err := s.apply(ctx, "tick", (*domain.Session).Tick)
	return err
}

func (s *GameSession) read(ctx context.Context) (*domain.Session, error) {
	cur, err := s.store.Get(ctx, s.roomCode)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return cur, nil
}

// apply runs transition against a fresh copy of the stored snapshot and
// writes the result back. A write that loses to a concurrent one is
// retried from a new read; domain.ErrNoop counts as success without a
// write. It returns the snapshot the intent ended on.
func (s *GameSession) apply(ctx context.Context, op string, transition func(*domain.Session) error) (*domain.Session, error) {
	for attempt := 0; attempt <= s.retries; attempt++ {
		cur, err := s.read(ctx)
		if err != nil {
			return nil, err
		}

		next := cur.Clone()
		if err := transition(next); err != nil {
			if errors.Is(err, domain.ErrNoop) {
				return cur, nil
			}
			s.logger.Debug("intent rejected", "op", op, "error", err)
			return nil, err
		}

		err = s.store.Put(ctx, next)
		switch {
		case err == nil:
			return next, nil
		case errors.Is(err, store.ErrVersionConflict):
			s.logger.Debug("write conflict", "op", op, "attempt", attempt+1)
		case errors.Is(err, store.ErrNotFound):
			return nil, domain.ErrGameNotFound
		default:
			return nil, fmt.Errorf("write session: %w", err)
		}
	}

	s.logger.Warn("write lost after retries", "op", op, "retries", s.retries)
	return nil, ErrConflict
}

// eventLoop pushes every written snapshot to the connected clients
func (s *GameSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case snap, ok := <-s.snapshots:
			if !ok {
				s.logger.Info("session removed from store")
				s.Close()
				return
			}
			if !s.observe(snap) {
				continue
			}
			s.broadcastState(snap)
		}
	}
}

// observe records snap as the latest snapshot unless a newer one was
// already seen
func (s *GameSession) observe(snap *domain.Session) bool {
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	if snap.Version <= s.latest.Version {
		return false
	}
	s.latest = snap
	s.lastActivity = time.Now()
	return true
}

// broadcastState sends each client its view of snap
func (s *GameSession) broadcastState(snap *domain.Session) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for playerID, client := range s.clients {
		if err := client.SendState(snap.ViewFor(playerID)); err != nil {
			s.logger.Debug("failed to send to client", "playerID", playerID, "error", err)
		}
	}
}

// Close shuts down the session
func (s *GameSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.timer.Stop()
		s.cancel()

		s.clientsMu.Lock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clients = make(map[string]ClientConnection)
		s.clientsMu.Unlock()

		if s.onClosed != nil {
			s.onClosed(s)
		}
	})
}
