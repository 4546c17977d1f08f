package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

type fakeQueue struct {
	mu     sync.Mutex
	events []models.OutboxEvent
	failed bool
}

func newFakeQueue(ids ...string) *fakeQueue {
	q := &fakeQueue{}
	for _, id := range ids {
		q.events = append(q.events, models.OutboxEvent{ID: id, Action: models.ActionLogTransaction, Payload: []byte(`{"id":"` + id + `"}`)})
	}
	return q
}

func (q *fakeQueue) NextEvent(ctx context.Context) (models.OutboxEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return models.OutboxEvent{}, false
	}
	return q.events[0], true
}

func (q *fakeQueue) AckEvent(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 || q.events[0].ID != id {
		return errors.New("ack out of order")
	}
	q.events = q.events[1:]
	return nil
}

func (q *fakeQueue) SetSyncError(ctx context.Context, failed bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed = failed
	return nil
}

func (q *fakeQueue) state() (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events), q.failed
}

// fakeSender records payloads and fails once failAt payloads were accepted.
type fakeSender struct {
	mu     sync.Mutex
	sent   []string
	failAt int
	block  chan struct{}
}

func (s *fakeSender) Send(ctx context.Context, payload []byte) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt >= 0 && len(s.sent) == s.failAt {
		return errors.New("connection reset")
	}
	s.sent = append(s.sent, string(payload))
	return nil
}

type fixedProber bool

func (p fixedProber) Online(ctx context.Context) bool { return bool(p) }

func TestDrain(t *testing.T) {
	ctx := context.Background()

	t.Run("sends everything in order", func(t *testing.T) {
		q := newFakeQueue("a", "b", "c")
		q.failed = true
		s := &fakeSender{failAt: -1}

		sent, err := New(q, s).Drain(ctx)
		if err != nil {
			t.Fatalf("Drain() error: %v", err)
		}
		if sent != 3 {
			t.Errorf("sent = %d, want 3", sent)
		}
		want := []string{`{"id":"a"}`, `{"id":"b"}`, `{"id":"c"}`}
		for i := range want {
			if s.sent[i] != want[i] {
				t.Errorf("sent[%d] = %s, want %s", i, s.sent[i], want[i])
			}
		}
		if n, failed := q.state(); n != 0 || failed {
			t.Errorf("queue = %d events, failed = %v; want empty and cleared", n, failed)
		}
	})

	t.Run("failure halts and keeps the head", func(t *testing.T) {
		q := newFakeQueue("a", "b", "c")
		s := &fakeSender{failAt: 1}

		sent, err := New(q, s).Drain(ctx)
		if !errors.Is(err, ErrSync) {
			t.Fatalf("Drain() error = %v, want ErrSync", err)
		}
		if sent != 1 {
			t.Errorf("sent = %d, want 1", sent)
		}
		n, failed := q.state()
		if n != 2 || !failed {
			t.Errorf("queue = %d events, failed = %v; want 2 and set", n, failed)
		}
		if head, _ := q.NextEvent(ctx); head.ID != "b" {
			t.Errorf("head = %s, want b", head.ID)
		}
	})

	t.Run("offline skips", func(t *testing.T) {
		q := newFakeQueue("a")
		s := &fakeSender{failAt: -1}

		if _, err := New(q, s, WithProber(fixedProber(false))).Drain(ctx); !errors.Is(err, ErrOffline) {
			t.Fatalf("Drain() error = %v, want ErrOffline", err)
		}
		if len(s.sent) != 0 {
			t.Error("offline drain sent events")
		}
	})

	t.Run("empty queue is a no-op", func(t *testing.T) {
		q := newFakeQueue()
		q.failed = true
		sent, err := New(q, &fakeSender{failAt: -1}).Drain(ctx)
		if err != nil || sent != 0 {
			t.Errorf("Drain() = %d, %v", sent, err)
		}
	})

	t.Run("single flight", func(t *testing.T) {
		q := newFakeQueue("a")
		s := &fakeSender{failAt: -1, block: make(chan struct{})}
		w := New(q, s)

		done := make(chan error, 1)
		go func() {
			_, err := w.Drain(ctx)
			done <- err
		}()

		deadline := time.Now().Add(2 * time.Second)
		for !w.Running() && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if _, err := w.Drain(ctx); !errors.Is(err, ErrBusy) {
			t.Errorf("concurrent Drain() error = %v, want ErrBusy", err)
		}

		close(s.block)
		if err := <-done; err != nil {
			t.Errorf("first Drain() error: %v", err)
		}
	})
}

func TestRunDrainsOnNotify(t *testing.T) {
	q := newFakeQueue()
	s := &fakeSender{failAt: -1}
	w := New(q, s, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	q.mu.Lock()
	q.events = append(q.events, models.OutboxEvent{ID: "x", Payload: []byte(`{}`)})
	q.mu.Unlock()
	w.Notify()
	w.Notify() // coalesces, never blocks

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n, _ := q.state(); n == 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if n, _ := q.state(); n != 0 {
		t.Errorf("queue still has %d events", n)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
