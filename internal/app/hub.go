package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"codewords/internal/domain"
	"codewords/internal/store"
	"codewords/internal/words"
)

const (
	// StaleGameTimeout is how long before an inactive game is cleaned up
	StaleGameTimeout = 2 * time.Hour

	// CleanupInterval is how often stale games are looked for
	CleanupInterval = 10 * time.Minute

	maxCodeAttempts = 10
)

// HubOptions tunes a GameHub
type HubOptions struct {
	RoomCodeLength  int
	MaxPlayers      int
	StaleTimeout    time.Duration
	CleanupInterval time.Duration
	WriteRetries    int
	TickInterval    time.Duration
}

// DefaultHubOptions returns the options used when nothing is configured
func DefaultHubOptions() HubOptions {
	return HubOptions{
		RoomCodeLength:  DefaultRoomCodeLength,
		MaxPlayers:      domain.DefaultMaxPlayers,
		StaleTimeout:    StaleGameTimeout,
		CleanupInterval: CleanupInterval,
		WriteRetries:    DefaultWriteRetries,
		TickInterval:    DefaultTickInterval,
	}
}

func (o HubOptions) withDefaults() HubOptions {
	d := DefaultHubOptions()
	if o.RoomCodeLength <= 0 {
		o.RoomCodeLength = d.RoomCodeLength
	}
	if o.MaxPlayers <= 0 {
		o.MaxPlayers = d.MaxPlayers
	}
	if o.StaleTimeout <= 0 {
		o.StaleTimeout = d.StaleTimeout
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = d.CleanupInterval
	}
	if o.WriteRetries <= 0 {
		o.WriteRetries = d.WriteRetries
	}
	if o.TickInterval <= 0 {
		o.TickInterval = d.TickInterval
	}
	return o
}

// GameHub manages all live game sessions of this process
type GameHub struct {
	store    store.Store
	corpus   *words.Corpus
	opts     HubOptions
	sessions map[string]*GameSession
	mu       sync.RWMutex
	logger   *slog.Logger
	done     chan struct{}

	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewGameHub creates a new game hub
func NewGameHub(st store.Store, corpus *words.Corpus, opts HubOptions, logger *slog.Logger) *GameHub {
	hub := &GameHub{
		store:    st,
		corpus:   corpus,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*GameSession),
		logger:   logger,
		done:     make(chan struct{}),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	go hub.cleanupLoop()

	return hub
}

// CreateGame deals a board, stores a new lobby under a fresh room code
// and returns its session
func (h *GameHub) CreateGame(ctx context.Context) (*GameSession, error) {
	board, err := h.newBoard()
	if err != nil {
		return nil, fmt.Errorf("generate board: %w", err)
	}

	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		sess := domain.NewSession(GenerateRoomCode(h.opts.RoomCodeLength), board)
		sess.MaxPlayers = h.opts.MaxPlayers

		err := h.store.Create(ctx, sess)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}

		h.logger.Info("game created", "roomCode", sess.RoomCode, "startingTeam", sess.StartingTeam)
		return h.attach(sess), nil
	}

	return nil, fmt.Errorf("failed to generate unique room code")
}

// GetSession returns the live session for a room code, attaching to the
// stored session if this process has not served it yet
func (h *GameHub) GetSession(ctx context.Context, roomCode string) (*GameSession, error) {
	roomCode = NormalizeRoomCode(roomCode)

	h.mu.RLock()
	session, ok := h.sessions[roomCode]
	h.mu.RUnlock()
	if ok {
		return session, nil
	}

	sess, err := h.store.Get(ctx, roomCode)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	return h.attach(sess), nil
}

// Exists reports whether a room code is known to the store
func (h *GameHub) Exists(ctx context.Context, roomCode string) (bool, error) {
	_, err := h.store.Get(ctx, NormalizeRoomCode(roomCode))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// attach registers a live session, or returns the one that won a
// concurrent attach
func (h *GameHub) attach(sess *domain.Session) *GameSession {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.sessions[sess.RoomCode]; ok {
		return existing
	}

	session := newGameSession(sess, h.store, h.newBoard, sessionConfig{
		retries:      h.opts.WriteRetries,
		tickInterval: h.opts.TickInterval,
		onClosed:     h.detach,
	}, h.logger)
	h.sessions[sess.RoomCode] = session
	return session
}

// detach forgets a closed session
func (h *GameHub) detach(session *GameSession) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.sessions[session.GetRoomCode()]; ok && cur == session {
		delete(h.sessions, session.GetRoomCode())
	}
}

// DeleteSession closes a session and removes it from the store
func (h *GameHub) DeleteSession(ctx context.Context, roomCode string) error {
	roomCode = NormalizeRoomCode(roomCode)

	h.mu.RLock()
	session, ok := h.sessions[roomCode]
	h.mu.RUnlock()
	if ok {
		session.Close()
	}

	if err := h.store.Delete(ctx, roomCode); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	h.logger.Info("game deleted", "roomCode", roomCode)
	return nil
}

// GetSessionCount returns the number of live sessions
func (h *GameHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalPlayerCount returns the total number of players across all sessions
func (h *GameHub) GetTotalPlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.GetPlayerCount()
	}
	return total
}

// Close shuts down the hub and all sessions. Stored sessions are kept.
func (h *GameHub) Close() {
	select {
	case <-h.done:
		return
	default:
		close(h.done)
	}

	h.mu.Lock()
	sessions := make([]*GameSession, 0, len(h.sessions))
	for _, session := range h.sessions {
		sessions = append(sessions, session)
	}
	h.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

// newBoard deals a board from the hub's corpus
func (h *GameHub) newBoard() (domain.Board, error) {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return domain.GenerateBoard(h.corpus, h.rng)
}

// cleanupLoop periodically cleans up stale games
func (h *GameHub) cleanupLoop() {
	ticker := time.NewTicker(h.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleGames(context.Background())
		}
	}
}

// cleanupStaleGames removes games nobody is connected to once nothing has
// been written to them for the stale timeout
func (h *GameHub) cleanupStaleGames(ctx context.Context) {
	now := time.Now()
	stale := make([]string, 0)

	h.mu.RLock()
	for roomCode, session := range h.sessions {
		if session.ClientCount() == 0 && now.Sub(session.LastActivity()) > h.opts.StaleTimeout {
			stale = append(stale, roomCode)
		}
	}
	h.mu.RUnlock()

	for _, roomCode := range stale {
		if err := h.DeleteSession(ctx, roomCode); err != nil {
			h.logger.Error("failed to clean up stale game", "roomCode", roomCode, "error", err)
			continue
		}
		h.logger.Info("stale game cleaned up", "roomCode", roomCode)
	}
}
