// Package store holds the shared session store: the single source of truth
// every participant reads from and writes to.
//
// Writes are optimistic: Put succeeds only when the stored version matches
// the version the caller read, so a stale read-modify-write is rejected
// instead of silently overwriting a concurrent change.
package store

import (
	"context"
	"errors"

	"codewords/internal/domain"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrAlreadyExists   = errors.New("session already exists")
	ErrVersionConflict = errors.New("session was modified concurrently")
)

// Store persists sessions keyed by room code
type Store interface {
	// Create stores a new session at version 1. It fails with
	// ErrAlreadyExists if the room code is taken.
	Create(ctx context.Context, s *domain.Session) error

	// Get returns a copy of the current snapshot.
	Get(ctx context.Context, roomCode string) (*domain.Session, error)

	// Put replaces the snapshot if s.Version equals the stored version,
	// then increments s.Version. Otherwise it returns ErrVersionConflict.
	Put(ctx context.Context, s *domain.Session) error

	// Delete removes a session. Subscribers are closed.
	Delete(ctx context.Context, roomCode string) error

	// Subscribe delivers every successfully written snapshot of a room
	// until cancel is called or the room is deleted.
	Subscribe(roomCode string) (snapshots <-chan *domain.Session, cancel func())

	Close() error
}
