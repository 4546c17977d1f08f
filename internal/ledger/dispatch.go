package ledger

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// BoardEntry is one ready batch on the kitchen dispatch board.
type BoardEntry struct {
	TableID      string
	AccountID    string
	CustomerName string
	BatchID      string

	// Items holds only the kitchen lines of the batch.
	Items []models.BillItem

	// ReadyAt is zero for batches that never recorded a send time.
	ReadyAt time.Time
	Elapsed time.Duration
	Overdue bool
}

// SendToDispatch moves the pending batch to the kitchen. The batch must hold
// at least one non-other line.
func (l *Ledger) SendToDispatch(ctx context.Context, tableID, accountID string) (models.DispatchBatch, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.findAccount(tableID, accountID)
	if err != nil {
		return models.DispatchBatch{}, err
	}
	pending := account.PendingBatch()
	if pending == nil || !pending.HasKitchenItems() {
		return models.DispatchBatch{}, ErrNothingToDispatch
	}

	readyAt := l.now()
	l.state.DispatchSeq++
	pending.Status = models.BatchReady
	pending.ReadyAt = &readyAt
	pending.ReadySeq = l.state.DispatchSeq
	account.LastAddedItemID = ""

	slog.Info("Batch sent to kitchen", "table", tableID, "account", accountID, "batch", pending.ID, "items", len(pending.Items))
	return *pending, l.save(ctx)
}

// ConfirmDispatch marks a ready batch as handed out.
func (l *Ledger) ConfirmDispatch(ctx context.Context, tableID, accountID, batchID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.findAccount(tableID, accountID)
	if err != nil {
		return err
	}
	for i := range account.Batches {
		batch := &account.Batches[i]
		if batch.ID != batchID {
			continue
		}
		if batch.Status != models.BatchReady {
			return validationf("batch %s is %s, not ready", batchID, batch.Status)
		}
		batch.Status = models.BatchDispatched
		slog.Info("Batch handed out", "table", tableID, "account", accountID, "batch", batchID)
		return l.save(ctx)
	}
	return notFoundf("batch %s", batchID)
}

// DispatchBoard lists every ready batch with kitchen lines, oldest first.
// Batches sent at the same instant keep the order they were sent in; batches
// without a send time go last.
func (l *Ledger) DispatchBoard(now time.Time) []BoardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	tables := make([]string, 0, len(l.state.Tables))
	for table := range l.state.Tables {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var (
		board []BoardEntry
		seqs  []int64
	)
	for _, table := range tables {
		for _, account := range l.state.Tables[table] {
			for _, batch := range account.Batches {
				if batch.Status != models.BatchReady || !batch.HasKitchenItems() {
					continue
				}
				entry := BoardEntry{
					TableID:      table,
					AccountID:    account.ID,
					CustomerName: account.CustomerName,
					BatchID:      batch.ID,
				}
				for _, item := range batch.Items {
					if !item.IsOther {
						entry.Items = append(entry.Items, item)
					}
				}
				if batch.ReadyAt != nil {
					entry.ReadyAt = *batch.ReadyAt
					entry.Elapsed = now.Sub(entry.ReadyAt)
					entry.Overdue = entry.Elapsed > l.overdueAfter
				}
				board = append(board, entry)
				seqs = append(seqs, batch.ReadySeq)
			}
		}
	}

	sort.Stable(boardOrder{board, seqs})
	return board
}

// boardOrder sorts board entries by ReadyAt, then by send sequence, with a
// missing ReadyAt after every known one.
type boardOrder struct {
	entries []BoardEntry
	seqs    []int64
}

func (b boardOrder) Len() int { return len(b.entries) }

func (b boardOrder) Swap(i, j int) {
	b.entries[i], b.entries[j] = b.entries[j], b.entries[i]
	b.seqs[i], b.seqs[j] = b.seqs[j], b.seqs[i]
}

func (b boardOrder) Less(i, j int) bool {
	ti, tj := b.entries[i].ReadyAt, b.entries[j].ReadyAt
	switch {
	case ti.IsZero() != tj.IsZero():
		return tj.IsZero()
	case !ti.Equal(tj):
		return ti.Before(tj)
	}
	return b.seqs[i] < b.seqs[j]
}
