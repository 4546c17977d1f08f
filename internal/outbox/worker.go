// Package outbox delivers queued ledger events to the remote backend.
//
// Events are sent one at a time in queue order and removed only after the
// backend accepted them. A failed send stops the drain, leaves the event at
// the head of the queue and raises the persistent sync error flag until the
// next successful drain.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/metrics"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

var (
	// ErrSync is returned when the backend did not accept an event.
	ErrSync = errors.New("sync failed")
	// ErrBusy is returned when another drain is in progress.
	ErrBusy = errors.New("sync already running")
	// ErrOffline is returned when the backend is not reachable.
	ErrOffline = errors.New("backend offline")
)

// Queue is the durable event queue. The ledger implements it.
type Queue interface {
	NextEvent(ctx context.Context) (models.OutboxEvent, bool)
	AckEvent(ctx context.Context, id string) error
	SetSyncError(ctx context.Context, failed bool) error
}

// Sender posts one payload to the backend.
type Sender interface {
	Send(ctx context.Context, payload []byte) error
}

// Prober reports whether the backend is reachable.
type Prober interface {
	Online(ctx context.Context) bool
}

// Option configures a Worker.
type Option func(*Worker)

// WithInterval sets the periodic retry interval.
func WithInterval(d time.Duration) Option {
	return func(w *Worker) { w.interval = d }
}

// WithSendTimeout bounds each send.
func WithSendTimeout(d time.Duration) Option {
	return func(w *Worker) { w.sendTimeout = d }
}

// WithProber enables offline detection.
func WithProber(p Prober) Option {
	return func(w *Worker) { w.prober = p }
}

// Worker drains the queue on Notify, on a ticker and when the backend comes
// back online.
type Worker struct {
	queue  Queue
	sender Sender
	prober Prober

	interval    time.Duration
	sendTimeout time.Duration

	trigger chan struct{}
	running atomic.Bool
}

// New creates a Worker. Defaults: 30 s interval, 15 s send timeout, always online.
func New(queue Queue, sender Sender, opts ...Option) *Worker {
	w := &Worker{
		queue:       queue,
		sender:      sender,
		interval:    30 * time.Second,
		sendTimeout: 15 * time.Second,
		trigger:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Notify asks for a drain. It never blocks; triggers coalesce.
func (w *Worker) Notify() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Running reports whether a drain is in progress.
func (w *Worker) Running() bool {
	return w.running.Load()
}

// Drain sends queued events until the queue is empty or a send fails.
// It returns the number of delivered events.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	if !w.running.CompareAndSwap(false, true) {
		return 0, ErrBusy
	}
	defer w.running.Store(false)

	if _, ok := w.queue.NextEvent(ctx); !ok {
		return 0, nil
	}
	if w.prober != nil && !w.prober.Online(ctx) {
		return 0, ErrOffline
	}
	if err := w.queue.SetSyncError(ctx, false); err != nil {
		return 0, err
	}

	var sent int
	for {
		ev, ok := w.queue.NextEvent(ctx)
		if !ok {
			if sent > 0 {
				slog.Info("Sync queue drained", "sent", sent)
			}
			return sent, nil
		}

		sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
		err := w.sender.Send(sendCtx, ev.Payload)
		cancel()
		if err != nil {
			metrics.OutboxFailures.Inc()
			slog.Error("Failed to sync event", "event", ev.ID, "action", ev.Action, "error", err)
			if ferr := w.queue.SetSyncError(ctx, true); ferr != nil {
				slog.Error("Failed to store sync error flag", "error", ferr)
			}
			return sent, fmt.Errorf("%w: %w", ErrSync, err)
		}

		if err := w.queue.AckEvent(ctx, ev.ID); err != nil {
			return sent, fmt.Errorf("failed to ack event %s: %w", ev.ID, err)
		}
		metrics.OutboxDelivered.Inc()
		sent++
		slog.Debug("Event synced", "event", ev.ID, "action", ev.Action)

		if err := ctx.Err(); err != nil {
			return sent, err
		}
	}
}

// Run drains on every trigger until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	online := true
	w.drain(ctx, "startup")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.trigger:
			w.drain(ctx, "notify")
		case <-ticker.C:
			if w.prober != nil {
				now := w.prober.Online(ctx)
				restored := now && !online
				online = now
				if restored {
					slog.Info("Backend reachable again")
					w.drain(ctx, "reconnect")
					continue
				}
			}
			w.drain(ctx, "tick")
		}
	}
}

func (w *Worker) drain(ctx context.Context, reason string) {
	_, err := w.Drain(ctx)
	switch {
	case err == nil, errors.Is(err, ErrBusy), errors.Is(err, context.Canceled):
	case errors.Is(err, ErrOffline):
		slog.Debug("Sync skipped, backend offline", "trigger", reason)
	default:
		slog.Warn("Sync stopped", "trigger", reason, "error", err)
	}
}
