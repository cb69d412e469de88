package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"codewords/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	room_code  TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	data       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// sqliteStore keeps each session as a JSON document next to its version
// column. Put is a single conditional UPDATE, so the version check and the
// write are atomic even across processes sharing the file.
type sqliteStore struct {
	db     *sql.DB
	notify *notifier
}

// OpenSQLite opens (and creates if missing) a SQLite-backed Store at path.
func OpenSQLite(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &sqliteStore{db: db, notify: newNotifier()}, nil
}

func (s *sqliteStore) Create(ctx context.Context, sess *domain.Session) error {
	sess.Version = 1
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (room_code, version, data, updated_at) VALUES (?, ?, ?, ?)`,
		sess.RoomCode, sess.Version, string(data), now(),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return ErrAlreadyExists
	}
	return err
}

func (s *sqliteStore) Get(ctx context.Context, roomCode string) (*domain.Session, error) {
	var (
		version uint64
		data    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT version, data FROM sessions WHERE room_code = ?`, roomCode,
	).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", roomCode, err)
	}
	sess.Version = version
	return &sess, nil
}

func (s *sqliteStore) Put(ctx context.Context, sess *domain.Session) error {
	expected := sess.Version
	next := sess.Clone()
	next.Version = expected + 1

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET version = ?, data = ?, updated_at = ? WHERE room_code = ? AND version = ?`,
		next.Version, string(data), now(), sess.RoomCode, expected,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM sessions WHERE room_code = ?`, sess.RoomCode,
		).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrVersionConflict
	}

	sess.Version = next.Version
	s.notify.publish(sess)
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, roomCode string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE room_code = ?`, roomCode)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	s.notify.closeRoom(roomCode)
	return nil
}

func (s *sqliteStore) Subscribe(roomCode string) (<-chan *domain.Session, func()) {
	return s.notify.subscribe(roomCode)
}

func (s *sqliteStore) Close() error {
	s.notify.closeAll()
	return s.db.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
