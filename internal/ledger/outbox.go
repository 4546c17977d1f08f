package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/metrics"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// SyncStatus is the outbox state shown to the operator.
type SyncStatus struct {
	Pending int
	Error   bool
}

// enqueue appends an event to the outbox and pokes the worker. Callers hold
// l.mu and save afterwards.
func (l *Ledger) enqueue(action models.SyncAction, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", action, err)
	}
	l.state.SyncQueue = append(l.state.SyncQueue, models.OutboxEvent{
		ID:         uuid.NewString(),
		Action:     action,
		Payload:    data,
		EnqueuedAt: l.now(),
	})
	metrics.OutboxPending.Set(float64(len(l.state.SyncQueue)))

	if l.notifier != nil {
		l.notifier.Notify()
	}
	return nil
}

// NextEvent returns the head of the outbox.
func (l *Ledger) NextEvent(ctx context.Context) (models.OutboxEvent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.state.SyncQueue) == 0 {
		return models.OutboxEvent{}, false
	}
	return l.state.SyncQueue[0], true
}

// AckEvent removes a delivered event.
func (l *Ledger) AckEvent(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, ev := range l.state.SyncQueue {
		if ev.ID == id {
			l.state.SyncQueue = append(l.state.SyncQueue[:i], l.state.SyncQueue[i+1:]...)
			metrics.OutboxPending.Set(float64(len(l.state.SyncQueue)))
			return l.save(ctx)
		}
	}
	return notFoundf("outbox event %s", id)
}

// SetSyncError persists the sync error flag.
func (l *Ledger) SetSyncError(ctx context.Context, failed bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.SyncError == failed {
		return nil
	}
	l.state.SyncError = failed
	return l.save(ctx)
}

// SyncStatus reports the outbox length and error flag.
func (l *Ledger) SyncStatus() SyncStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return SyncStatus{Pending: len(l.state.SyncQueue), Error: l.state.SyncError}
}

// Clock returns the ledger's notion of now.
func (l *Ledger) Clock() time.Time {
	return l.now()
}
