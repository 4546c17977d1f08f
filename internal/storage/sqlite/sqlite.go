// Package sqlite keeps the ledger snapshot in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/storage"
)

var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore stores one snapshot row per key.
type SQLiteStore struct {
	db  *sql.DB
	key string
}

// New opens (or creates) the database at dbPath and brings the schema up to
// date. An empty key means storage.DefaultKey.
func New(dbPath, key string) (*SQLiteStore, error) {
	if key == "" {
		key = storage.DefaultKey
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	// A single writer avoids SQLITE_BUSY between the ledger and the health probe.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, key: key}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) LoadState(ctx context.Context) ([]byte, error) {
	var data []byte
	row := s.db.QueryRowContext(ctx, `SELECT value FROM ledger_state WHERE key = ?`, s.key)
	switch err := row.Scan(&data); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, storage.ErrNoState
	case err != nil:
		return nil, fmt.Errorf("load %q: %w", s.key, err)
	}
	return data, nil
}

func (s *SQLiteStore) SaveState(ctx context.Context, data []byte) error {
	const upsert = `
INSERT INTO ledger_state (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, upsert, s.key, data, time.Now().Unix()); err != nil {
		return fmt.Errorf("save %q: %w", s.key, err)
	}
	return nil
}
