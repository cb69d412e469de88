package store

import (
	"context"
	"sync"

	"codewords/internal/domain"
)

// memory is an in-memory map-based Store implementation.
// State is lost when the process restarts.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	notify   *notifier
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		sessions: make(map[string]*domain.Session),
		notify:   newNotifier(),
	}
}

func (m *memory) Create(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.RoomCode]; ok {
		return ErrAlreadyExists
	}
	s.Version = 1
	m.sessions[s.RoomCode] = s.Clone()
	return nil
}

func (m *memory) Get(ctx context.Context, roomCode string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[roomCode]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *memory) Put(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.sessions[s.RoomCode]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != s.Version {
		return ErrVersionConflict
	}

	s.Version++
	m.sessions[s.RoomCode] = s.Clone()
	m.notify.publish(s)
	return nil
}

func (m *memory) Delete(ctx context.Context, roomCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[roomCode]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, roomCode)
	m.notify.closeRoom(roomCode)
	return nil
}

func (m *memory) Subscribe(roomCode string) (<-chan *domain.Session, func()) {
	return m.notify.subscribe(roomCode)
}

func (m *memory) Close() error {
	m.notify.closeAll()
	return nil
}
