// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
)

// DefaultKey names the single slot the ledger snapshot lives in.
const DefaultKey = "grill_state"

// ErrNoState is returned by LoadState when nothing has been saved yet.
var ErrNoState = errors.New("no saved state")

// Store defines the interface for ledger state storage.
// The ledger is persisted as one opaque JSON document in a single key-value
// slot, so any backend that can hold a blob (SQLite, PostgreSQL, Redis)
// can serve it without changing the ledger.
type Store interface {
	// LoadState returns the last saved snapshot.
	// Returns ErrNoState if nothing has been saved.
	LoadState(ctx context.Context) ([]byte, error)

	// SaveState replaces the snapshot.
	SaveState(ctx context.Context, data []byte) error

	// Health checks backend connectivity.
	Health(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
