// Package ledger owns the day's state of the stand: open accounts, paid
// history, running totals, stock and the sync outbox. Every mutation is
// serialized by one mutex and followed by a snapshot write to the store.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/storage"
)

const (
	// DefaultSideItemID is the complimentary side offered with weighed meat.
	DefaultSideItemID = "brambora"

	// DefaultOverdueAfter marks a ready batch overdue on the dispatch board.
	DefaultOverdueAfter = 20 * time.Minute
)

// Notifier is poked after every outbox enqueue. It must not block.
type Notifier interface {
	Notify()
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithSideItem sets the menu item used for complimentary sides.
func WithSideItem(id string) Option {
	return func(l *Ledger) { l.sideItemID = id }
}

// WithOverdueAfter sets the dispatch board overdue threshold.
func WithOverdueAfter(d time.Duration) Option {
	return func(l *Ledger) { l.overdueAfter = d }
}

// WithStockGate makes OpenAccount refuse new customers until the initial
// stock of every food item is set.
func WithStockGate() Option {
	return func(l *Ledger) { l.stockGate = true }
}

// Ledger is the single owner of the stand's state.
type Ledger struct {
	mu    sync.Mutex
	store storage.Store
	state *models.Snapshot

	now          func() time.Time
	notifier     Notifier
	sideItemID   string
	overdueAfter time.Duration
	stockGate    bool
}

// Open loads the snapshot from the store. A missing snapshot starts an empty
// day with the default menu; one that is not a JSON object is replaced by a
// full reset. A single malformed field only falls back to its empty value.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:        store,
		now:          time.Now,
		sideItemID:   DefaultSideItemID,
		overdueAfter: DefaultOverdueAfter,
	}
	for _, opt := range opts {
		opt(l)
	}

	data, err := store.LoadState(ctx)
	switch {
	case errors.Is(err, storage.ErrNoState):
		l.state = models.NewSnapshot()
		slog.Info("No saved state, starting a new day")
		return l, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		slog.Error("Saved state is unreadable, resetting", "error", err)
		l.state = models.NewSnapshot()
		if err := l.save(ctx); err != nil {
			slog.Warn("Reset state not saved yet", "error", err)
		}
		return l, nil
	}

	normalize(snap)
	l.state = snap

	if n := migrateLegacy(l.state); n > 0 {
		slog.Info("Migrated legacy snapshot fields", "count", n)
		if err := l.save(ctx); err != nil {
			slog.Warn("Migrated state not saved yet", "error", err)
		}
	}

	slog.Info("Ledger state loaded",
		"open_tables", len(l.state.Tables),
		"paid_accounts", len(l.state.PaidAccounts),
		"sync_queue", len(l.state.SyncQueue),
	)
	return l, nil
}

// SetNotifier registers the outbox worker.
func (l *Ledger) SetNotifier(n Notifier) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifier = n
}

// State returns a deep copy of the whole snapshot.
func (l *Ledger) State() (models.Snapshot, error) {
	l.mu.Lock()
	data, err := json.Marshal(l.state)
	l.mu.Unlock()
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to copy state: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to copy state: %w", err)
	}
	return snap, nil
}

// save writes the snapshot. Callers hold l.mu.
func (l *Ledger) save(ctx context.Context) error {
	data, err := json.Marshal(l.state)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := l.store.SaveState(ctx, data); err != nil {
		slog.Error("Failed to save ledger state", "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// decodeSnapshot reads the snapshot one top-level field at a time, so a field
// of the wrong shape is dropped on its own. It fails only when data is not a
// JSON object.
func decodeSnapshot(data []byte) (*models.Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	snap := &models.Snapshot{}
	fields := map[string]any{
		"paidCash":       &snap.PaidCash,
		"paidCard":       &snap.PaidCard,
		"paidQR":         &snap.PaidQR,
		"paidOnTheHouse": &snap.PaidOnTheHouse,
		"tables":         &snap.Tables,
		"initialStock":   &snap.InitialStock,
		"paidAccounts":   &snap.PaidAccounts,
		"menuConfig":     &snap.Menu,
		"syncQueue":      &snap.SyncQueue,
		"syncError":      &snap.SyncError,
		"dispatchSeq":    &snap.DispatchSeq,
	}
	for key, dst := range fields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			slog.Warn("Malformed snapshot field, using empty value", "field", key, "error", err)
			resetField(dst)
		}
	}
	return snap, nil
}

// resetField zeroes dst after a failed decode may have half-filled it.
func resetField(dst any) {
	switch v := dst.(type) {
	case *int64:
		*v = 0
	case *bool:
		*v = false
	case *map[string][]models.Account:
		*v = nil
	case *map[string]int64:
		*v = nil
	case *[]models.PaidAccount:
		*v = nil
	case *[]models.MenuItem:
		*v = nil
	case *[]models.OutboxEvent:
		*v = nil
	}
}

// normalize fills the empty values a partial or older snapshot leaves nil.
func normalize(s *models.Snapshot) {
	if s.Tables == nil {
		s.Tables = make(map[string][]models.Account)
	}
	for table, accounts := range s.Tables {
		if len(accounts) == 0 {
			delete(s.Tables, table)
		}
	}
	if s.InitialStock == nil {
		s.InitialStock = make(map[string]int64)
	}
	if len(s.Menu) == 0 {
		s.Menu = models.DefaultMenu()
	}
	for _, accounts := range s.Tables {
		for _, account := range accounts {
			for _, batch := range account.Batches {
				s.DispatchSeq = max(s.DispatchSeq, batch.ReadySeq)
			}
		}
	}
}
