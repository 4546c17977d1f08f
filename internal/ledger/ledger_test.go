package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/calculator"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/storage"
)

// memStore is an in-memory storage.Store. Setting fail makes SaveState error.
type memStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
	fail  bool
}

func (m *memStore) LoadState(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, storage.ErrNoState
	}
	return m.data, nil
}

func (m *memStore) SaveState(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("disk full")
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memStore) Health(ctx context.Context) error { return nil }
func (m *memStore) Close() error                     { return nil }

func (m *memStore) snapshot(t *testing.T) models.Snapshot {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var s models.Snapshot
	if err := json.Unmarshal(m.data, &s); err != nil {
		t.Fatalf("stored snapshot is not valid JSON: %v", err)
	}
	return s
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify() { c.n++ }

var testNow = time.Date(2026, 7, 4, 18, 30, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*Ledger, *memStore) {
	t.Helper()
	store := &memStore{}
	l, err := Open(context.Background(), store, WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	return l, store
}

func mustOpen(t *testing.T, l *Ledger, table, name string) models.Account {
	t.Helper()
	a, err := l.OpenAccount(context.Background(), table, name)
	if err != nil {
		t.Fatalf("OpenAccount(%s, %s) error: %v", table, name, err)
	}
	return a
}

func mustAdd(t *testing.T, l *Ledger, req AddItemRequest) models.BillItem {
	t.Helper()
	item, err := l.AddLineItem(context.Background(), req)
	if err != nil {
		t.Fatalf("AddLineItem(%+v) error: %v", req, err)
	}
	return item
}

func cash(amount int64) models.Payment {
	return models.Payment{Method: models.MethodCash, Cash: amount}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store starts with default menu", func(t *testing.T) {
		l, _ := newTestLedger(t)
		if got := len(l.Menu()); got != len(models.DefaultMenu()) {
			t.Errorf("menu has %d items, want %d", got, len(models.DefaultMenu()))
		}
		if l.HasOpenTables() {
			t.Error("new ledger should have no open tables")
		}
	})

	t.Run("unparsable state is reset and saved", func(t *testing.T) {
		store := &memStore{data: []byte("{not json")}
		l, err := Open(ctx, store)
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		if store.saves != 1 {
			t.Errorf("saves = %d, want 1", store.saves)
		}
		if len(l.Menu()) != 4 {
			t.Errorf("menu not reset to default")
		}
	})

	t.Run("missing fields default to empty", func(t *testing.T) {
		store := &memStore{data: []byte(`{"paidCash": 120, "menuConfig": []}`)}
		l, err := Open(ctx, store)
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		state, err := l.State()
		if err != nil {
			t.Fatalf("State() error: %v", err)
		}
		if state.PaidCash != 120 {
			t.Errorf("PaidCash = %d, want 120", state.PaidCash)
		}
		if state.Tables == nil || state.InitialStock == nil {
			t.Error("maps should be initialized")
		}
		if len(state.Menu) != 4 {
			t.Errorf("empty menu should fall back to default, got %d items", len(state.Menu))
		}
	})

	t.Run("malformed field keeps the rest", func(t *testing.T) {
		data := `{
			"paidCash": 500,
			"tables": {"T1": [{"accountId": "a1", "customerName": "Novák", "dispatchBatches": []}]},
			"paidAccounts": {},
			"syncError": "yes"
		}`
		store := &memStore{data: []byte(data)}
		l, err := Open(ctx, store)
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		state, err := l.State()
		if err != nil {
			t.Fatalf("State() error: %v", err)
		}
		if state.PaidCash != 500 {
			t.Errorf("PaidCash = %d, want 500", state.PaidCash)
		}
		if got := len(state.Tables["T1"]); got != 1 {
			t.Errorf("T1 has %d accounts, want 1", got)
		}
		if len(state.PaidAccounts) != 0 || state.SyncError {
			t.Errorf("malformed fields should be empty, got %d paid, syncError %v", len(state.PaidAccounts), state.SyncError)
		}
		if store.saves != 0 {
			t.Errorf("saves = %d, the stored state must not be overwritten", store.saves)
		}
	})

	t.Run("non-object state is reset", func(t *testing.T) {
		store := &memStore{data: []byte(`[1, 2]`)}
		l, err := Open(ctx, store)
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		if store.saves != 1 || l.HasOpenTables() {
			t.Errorf("saves = %d, open tables %v", store.saves, l.HasOpenTables())
		}
	})

	t.Run("legacy batch fields are migrated", func(t *testing.T) {
		legacy := `{
			"tables": {"T1": [{"accountId": "a1", "customerName": "Malý", "lastAddedItemIdToPendingBatch": "i2",
				"dispatchBatches": [
					{"batchId": "b1", "status": "ready", "readyTimestamp": 1720110600000, "readySeq": 4, "items": [
						{"id": "i1", "menuItemId": "camembert", "name": "Camembert", "price": 129, "quantity": 1, "unit": "pieces"}
					]},
					{"batchId": "b2", "status": "pending", "readyTimestamp": null, "items": [
						{"id": "i2", "menuItemId": "camembert", "name": "Camembert", "price": 129, "quantity": 1, "unit": "pieces"}
					]}
				]}]}
		}`
		store := &memStore{data: []byte(legacy)}
		l, err := Open(ctx, store, WithClock(func() time.Time { return testNow }))
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}

		account, err := l.Account("T1", "a1")
		if err != nil {
			t.Fatalf("Account() error: %v", err)
		}
		if account.LastAddedItemID != "i2" {
			t.Errorf("LastAddedItemID = %q, want i2", account.LastAddedItemID)
		}
		ready := account.Batches[0]
		want := time.UnixMilli(1720110600000).UTC()
		if ready.ReadyAt == nil || !ready.ReadyAt.Equal(want) {
			t.Errorf("ReadyAt = %v, want %v", ready.ReadyAt, want)
		}
		if account.Batches[1].ReadyAt != nil {
			t.Errorf("pending batch ReadyAt = %v, want nil", account.Batches[1].ReadyAt)
		}
		if store.saves != 1 || strings.Contains(string(store.data), "readyTimestamp") {
			t.Errorf("saves = %d, stored = %s", store.saves, store.data)
		}

		if removed, err := l.UndoLastItem(ctx, "T1", "a1"); err != nil || removed == nil || removed.ID != "i2" {
			t.Errorf("UndoLastItem() = %+v, %v; want i2", removed, err)
		}

		// the next send continues after the highest stored sequence
		mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: "a1", MenuItemID: "camembert", Quantity: 1})
		batch, err := l.SendToDispatch(ctx, "T1", "a1")
		if err != nil {
			t.Fatalf("SendToDispatch() error: %v", err)
		}
		if batch.ReadySeq != 5 {
			t.Errorf("ReadySeq = %d, want 5", batch.ReadySeq)
		}
	})

	t.Run("legacy lines are migrated", func(t *testing.T) {
		legacy := `{
			"tables": {"T1": [{"accountId": "a1", "customerName": "Dvořák", "dispatchBatches": [
				{"batchId": "b1", "status": "pending", "items": [
					{"id": "i1", "name": "Kuřecí (350g)", "price": 312, "quantity": 1, "unit": "grams"},
					{"id": "i2", "name": "Pečená brambora (Z)", "price": 0, "quantity": 2, "unit": "pieces"}
				]}
			]}]},
			"paidAccounts": [{"accountId": "a0", "customerName": "Horák", "dispatchBatches": [
				{"batchId": "b0", "status": "dispatched", "items": [
					{"id": "i0", "name": "2 x Camembert", "price": 129, "quantity": 2, "unit": "pieces"}
				]}
			]}]
		}`
		store := &memStore{data: []byte(legacy)}
		l, err := Open(ctx, store)
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}

		account, err := l.Account("T1", "a1")
		if err != nil {
			t.Fatalf("Account() error: %v", err)
		}
		first := account.Batches[0].Items[0]
		if first.MenuItemID != "kureci" || first.WeightGrams != 350 {
			t.Errorf("migrated line = %+v, want kureci 350 g", first)
		}
		sold := l.SoldStock()
		if sold["kureci"].Grams != 350 || sold["brambora"].Pieces != 2 || sold["camembert"].Pieces != 2 {
			t.Errorf("sold = %+v", sold)
		}
		if store.saves != 1 {
			t.Errorf("migration should be saved once, saves = %d", store.saves)
		}
	})
}

func TestOpenAccount(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		table   string
		cust    string
		wantErr error
	}{
		{"valid", "T1", "Novák", nil},
		{"name is trimmed", "T1", "  Svoboda ", nil},
		{"empty name", "T1", "   ", ErrValidation},
		{"empty table", "", "Novák", ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := l.OpenAccount(ctx, tt.table, tt.cust)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("OpenAccount() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && (a.ID == "" || a.CustomerName == "" || len(a.Batches) != 0) {
				t.Errorf("account = %+v", a)
			}
		})
	}

	if got := len(l.Tables()["T1"]); got != 2 {
		t.Errorf("T1 has %d accounts, want 2", got)
	}
	if got := l.Tables()["T1"][1].CustomerName; got != "Svoboda" {
		t.Errorf("customer name = %q, want trimmed", got)
	}
}

func TestAddLineItem(t *testing.T) {
	l, _ := newTestLedger(t)
	a := mustOpen(t, l, "T1", "Novák")

	t.Run("weight pricing", func(t *testing.T) {
		item := mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "kureci", Quantity: 2, WeightGrams: 350})
		if item.Price != 312 {
			t.Errorf("price = %d, want 312", item.Price)
		}
		if item.Name != "Kuřecí (350g)" || item.WeightGrams != 350 || item.MenuItemID != "kureci" {
			t.Errorf("item = %+v", item)
		}
	})

	t.Run("complimentary line", func(t *testing.T) {
		item := mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "brambora", Quantity: 1, Complimentary: true})
		if item.Price != 0 || item.Name != "Pečená brambora (Z)" || !item.Complimentary {
			t.Errorf("item = %+v", item)
		}
	})

	t.Run("lines share one pending batch", func(t *testing.T) {
		account, _ := l.Account("T1", a.ID)
		if len(account.Batches) != 1 || len(account.Batches[0].Items) != 2 {
			t.Fatalf("batches = %+v", account.Batches)
		}
		if account.LastAddedItemID != account.Batches[0].Items[1].ID {
			t.Errorf("LastAddedItemID = %q", account.LastAddedItemID)
		}
	})

	errTests := []struct {
		name    string
		req     AddItemRequest
		wantErr error
	}{
		{"unknown account", AddItemRequest{TableID: "T1", AccountID: "nope", MenuItemID: "camembert", Quantity: 1}, ErrNotFound},
		{"unknown table", AddItemRequest{TableID: "T9", AccountID: a.ID, MenuItemID: "camembert", Quantity: 1}, ErrNotFound},
		{"unknown menu item", AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "klobasa", Quantity: 1}, ErrNotFound},
		{"zero quantity", AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert"}, ErrValidation},
		{"weight without grams", AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "veprove", Quantity: 1}, ErrValidation},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.AddLineItem(context.Background(), tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddLineItem() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddWeighedPortion(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	a := mustOpen(t, l, "T2", "Černý")

	items, err := l.AddWeighedPortion(ctx, PortionRequest{TableID: "T2", AccountID: a.ID, MenuItemID: "veprove", WeightGrams: 300, Pieces: 2, SidePieces: 2})
	if err != nil {
		t.Fatalf("AddWeighedPortion() error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d lines, want 2", len(items))
	}
	if items[0].Price != 267 || items[0].Quantity != 2 {
		t.Errorf("portion = %+v", items[0])
	}
	if items[1].MenuItemID != "brambora" || items[1].Price != 0 || items[1].Quantity != 2 || !items[1].Complimentary {
		t.Errorf("side = %+v", items[1])
	}

	if _, err := l.AddWeighedPortion(ctx, PortionRequest{TableID: "T2", AccountID: a.ID, MenuItemID: "camembert", WeightGrams: 100, Pieces: 1}); !errors.Is(err, ErrValidation) {
		t.Errorf("piece item should be rejected, got %v", err)
	}
	if _, err := l.AddWeighedPortion(ctx, PortionRequest{TableID: "T2", AccountID: a.ID, MenuItemID: "kureci", WeightGrams: 100, Pieces: 0}); !errors.Is(err, ErrValidation) {
		t.Errorf("zero pieces should be rejected, got %v", err)
	}

	account, _ := l.Account("T2", a.ID)
	if n := len(account.Items()); n != 2 {
		t.Errorf("failed portions must not add lines, have %d", n)
	}
}

func TestUndoLastItem(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to undo without pending batch", func(t *testing.T) {
		l, _ := newTestLedger(t)
		a := mustOpen(t, l, "T1", "Novák")
		mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 1})
		if _, err := l.SendToDispatch(ctx, "T1", a.ID); err != nil {
			t.Fatalf("SendToDispatch() error: %v", err)
		}
		before, _ := l.Account("T1", a.ID)

		removed, err := l.UndoLastItem(ctx, "T1", a.ID)
		if !errors.Is(err, ErrNothingToUndo) || removed != nil {
			t.Fatalf("UndoLastItem() = %v, %v; want nil, ErrNothingToUndo", removed, err)
		}

		after, _ := l.Account("T1", a.ID)
		if len(after.Batches) != 1 || len(after.Batches[0].Items) != len(before.Batches[0].Items) || after.Batches[0].Status != models.BatchReady {
			t.Errorf("ready batch was touched: %+v", after.Batches)
		}
	})

	t.Run("removes last added, then the previous one", func(t *testing.T) {
		l, _ := newTestLedger(t)
		a := mustOpen(t, l, "T1", "Novák")
		first := mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 1})
		second := mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "brambora", Quantity: 3})

		removed, err := l.UndoLastItem(ctx, "T1", a.ID)
		if err != nil || removed.ID != second.ID {
			t.Fatalf("UndoLastItem() = %+v, %v; want %s", removed, err, second.ID)
		}
		account, _ := l.Account("T1", a.ID)
		if account.LastAddedItemID != first.ID {
			t.Errorf("LastAddedItemID = %q, want %q", account.LastAddedItemID, first.ID)
		}

		if removed, err = l.UndoLastItem(ctx, "T1", a.ID); err != nil || removed.ID != first.ID {
			t.Fatalf("second UndoLastItem() = %+v, %v", removed, err)
		}
		account, _ = l.Account("T1", a.ID)
		if account.LastAddedItemID != "" {
			t.Errorf("LastAddedItemID = %q, want empty", account.LastAddedItemID)
		}

		if _, err := l.UndoLastItem(ctx, "T1", a.ID); !errors.Is(err, ErrNothingToUndo) {
			t.Errorf("undo on empty batch error = %v, want ErrNothingToUndo", err)
		}
	})
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	if _, err := l.UpsertMenuItem(ctx, models.MenuItem{ID: "pivo", Name: "Pivo", Price: 45, Unit: models.UnitPiece, Category: models.CategoryOther}); err != nil {
		t.Fatalf("UpsertMenuItem() error: %v", err)
	}

	t.Run("only other items never become ready", func(t *testing.T) {
		a := mustOpen(t, l, "T3", "Beer only")
		mustAdd(t, l, AddItemRequest{TableID: "T3", AccountID: a.ID, MenuItemID: "pivo", Quantity: 2})

		if _, err := l.SendToDispatch(ctx, "T3", a.ID); !errors.Is(err, ErrNothingToDispatch) {
			t.Fatalf("SendToDispatch() error = %v, want ErrNothingToDispatch", err)
		}
		account, _ := l.Account("T3", a.ID)
		if account.Batches[0].Status != models.BatchPending {
			t.Errorf("status = %s, want pending", account.Batches[0].Status)
		}
	})

	t.Run("no pending batch", func(t *testing.T) {
		a := mustOpen(t, l, "T4", "Empty")
		if _, err := l.SendToDispatch(ctx, "T4", a.ID); !errors.Is(err, ErrNothingToDispatch) {
			t.Errorf("SendToDispatch() error = %v, want ErrNothingToDispatch", err)
		}
	})

	t.Run("send, board, confirm", func(t *testing.T) {
		early := mustOpen(t, l, "T5", "Early")
		late := mustOpen(t, l, "T1", "Late")

		mustAdd(t, l, AddItemRequest{TableID: "T5", AccountID: early.ID, MenuItemID: "camembert", Quantity: 1})
		mustAdd(t, l, AddItemRequest{TableID: "T5", AccountID: early.ID, MenuItemID: "pivo", Quantity: 1})
		earlyBatch, err := l.SendToDispatch(ctx, "T5", early.ID)
		if err != nil {
			t.Fatalf("SendToDispatch() error: %v", err)
		}
		if earlyBatch.Status != models.BatchReady || earlyBatch.ReadyAt == nil {
			t.Errorf("batch = %+v", earlyBatch)
		}
		account, _ := l.Account("T5", early.ID)
		if account.LastAddedItemID != "" {
			t.Error("LastAddedItemID should be cleared on dispatch")
		}

		l.now = func() time.Time { return testNow.Add(10 * time.Minute) }
		mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: late.ID, MenuItemID: "kureci", Quantity: 1, WeightGrams: 200})
		if _, err := l.SendToDispatch(ctx, "T1", late.ID); err != nil {
			t.Fatalf("SendToDispatch() error: %v", err)
		}

		board := l.DispatchBoard(testNow.Add(25 * time.Minute))
		if len(board) != 2 {
			t.Fatalf("board has %d entries, want 2", len(board))
		}
		if board[0].BatchID != earlyBatch.ID {
			t.Errorf("oldest batch should be first, got %s", board[0].CustomerName)
		}
		if len(board[0].Items) != 1 || board[0].Items[0].IsOther {
			t.Errorf("board should list kitchen items only: %+v", board[0].Items)
		}
		if !board[0].Overdue || board[1].Overdue {
			t.Errorf("overdue = %v, %v; want true, false", board[0].Overdue, board[1].Overdue)
		}
		if board[0].Elapsed != 25*time.Minute {
			t.Errorf("elapsed = %v, want 25m", board[0].Elapsed)
		}

		if err := l.ConfirmDispatch(ctx, "T5", early.ID, earlyBatch.ID); err != nil {
			t.Fatalf("ConfirmDispatch() error: %v", err)
		}
		if err := l.ConfirmDispatch(ctx, "T5", early.ID, earlyBatch.ID); !errors.Is(err, ErrValidation) {
			t.Errorf("second ConfirmDispatch() error = %v, want ErrValidation", err)
		}
		if err := l.ConfirmDispatch(ctx, "T5", early.ID, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("ConfirmDispatch(missing) error = %v, want ErrNotFound", err)
		}
		if got := len(l.DispatchBoard(testNow)); got != 1 {
			t.Errorf("board has %d entries after confirm, want 1", got)
		}
	})
}

func TestDispatchBoardTies(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	for _, table := range []string{"T2", "T1"} {
		for _, name := range []string{"A", "B"} {
			a := mustOpen(t, l, table, name)
			mustAdd(t, l, AddItemRequest{TableID: table, AccountID: a.ID, MenuItemID: "camembert", Quantity: 1})
			if _, err := l.SendToDispatch(ctx, table, a.ID); err != nil {
				t.Fatalf("SendToDispatch() error: %v", err)
			}
		}
	}

	board := l.DispatchBoard(testNow)
	want := []string{"T2/A", "T2/B", "T1/A", "T1/B"}
	if len(board) != len(want) {
		t.Fatalf("board has %d entries, want %d", len(board), len(want))
	}
	for i, entry := range board {
		if got := entry.TableID + "/" + entry.CustomerName; got != want[i] {
			t.Errorf("board[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func TestDispatchBoardMissingReadyAt(t *testing.T) {
	data := `{
		"tables": {
			"A1": [{"accountId": "a1", "customerName": "Bez času", "dispatchBatches": [
				{"batchId": "b1", "status": "ready", "items": [
					{"id": "i1", "menuItemId": "camembert", "name": "Camembert", "price": 129, "quantity": 1, "unit": "pieces"}
				]}
			]}],
			"B1": [{"accountId": "a2", "customerName": "Včas", "dispatchBatches": [
				{"batchId": "b2", "status": "ready", "readyAt": "2026-07-04T18:00:00Z", "items": [
					{"id": "i2", "menuItemId": "camembert", "name": "Camembert", "price": 129, "quantity": 1, "unit": "pieces"}
				]}
			]}]
		}
	}`
	l, err := Open(context.Background(), &memStore{data: []byte(data)})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	board := l.DispatchBoard(testNow)
	if len(board) != 2 {
		t.Fatalf("board has %d entries, want 2", len(board))
	}
	if board[0].BatchID != "b2" || board[1].BatchID != "b1" {
		t.Errorf("board order = %s, %s; want b2, b1", board[0].BatchID, board[1].BatchID)
	}
	if !board[0].Overdue || board[1].Overdue {
		t.Errorf("overdue = %v, %v; want true, false", board[0].Overdue, board[1].Overdue)
	}
}

func TestStockGate(t *testing.T) {
	ctx := context.Background()
	l, err := Open(ctx, &memStore{}, WithStockGate(), WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	if _, err := l.OpenAccount(ctx, "T1", "Novák"); !errors.Is(err, ErrStockNotSet) {
		t.Fatalf("OpenAccount() error = %v, want ErrStockNotSet", err)
	}
	if l.HasOpenTables() {
		t.Error("refused account must not be seated")
	}

	if err := l.SetInitialStock(ctx, map[string]int64{"kureci": 5000, "veprove": 3000, "camembert": 20, "brambora": 40}); err != nil {
		t.Fatalf("SetInitialStock() error: %v", err)
	}
	mustOpen(t, l, "T1", "Novák")
}

func TestPayFullScenario(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	notifier := &countingNotifier{}
	l.SetNotifier(notifier)

	a := mustOpen(t, l, "T1", "Novák")
	mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 1})
	account, _ := l.Account("T1", a.ID)
	if got := calculator.AccountTotal(account); got != 129 {
		t.Fatalf("total = %d, want 129", got)
	}
	mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "kureci", Quantity: 1, WeightGrams: 300})
	account, _ = l.Account("T1", a.ID)
	total := calculator.AccountTotal(account)
	if total != 396 {
		t.Fatalf("total = %d, want 396", total)
	}

	record, err := l.PayFull(ctx, "T1", a.ID, cash(396))
	if err != nil {
		t.Fatalf("PayFull() error: %v", err)
	}

	state, _ := l.State()
	if state.PaidCash != 396 {
		t.Errorf("PaidCash = %d, want 396", state.PaidCash)
	}
	if _, ok := state.Tables["T1"]; ok {
		t.Error("table T1 should be gone")
	}
	if len(state.PaidAccounts) != 1 || len(state.PaidAccounts[0].Items()) != 2 {
		t.Fatalf("paid accounts = %+v", state.PaidAccounts)
	}
	if got := calculator.AccountTotal(state.PaidAccounts[0].Account); got != total {
		t.Errorf("paid value %d != account total %d", got, total)
	}
	for _, b := range state.PaidAccounts[0].Batches {
		if b.Status != models.BatchDispatched {
			t.Errorf("batch %s status = %s, want dispatched", b.ID, b.Status)
		}
	}
	if record.Payment.Total != 396 || len(record.Bill) != 2 || record.CustomerName != "Novák" {
		t.Errorf("record = %+v", record)
	}

	if len(state.SyncQueue) != 1 || state.SyncQueue[0].Action != models.ActionLogTransaction {
		t.Fatalf("sync queue = %+v", state.SyncQueue)
	}
	var payload models.LogTransactionPayload
	if err := json.Unmarshal(state.SyncQueue[0].Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.Action != models.ActionLogTransaction || payload.TransactionData.Payment.Cash != 396 {
		t.Errorf("payload = %+v", payload)
	}
	if notifier.n != 1 {
		t.Errorf("notifier called %d times, want 1", notifier.n)
	}
	if persisted := store.snapshot(t); persisted.PaidCash != 396 || len(persisted.SyncQueue) != 1 {
		t.Errorf("persisted snapshot not updated: %+v", persisted.RunningTotals)
	}

	_, err = l.PayFull(ctx, "T1", a.ID, cash(396))
	if !errors.Is(err, ErrAlreadySettled) || !errors.Is(err, ErrNotFound) {
		t.Errorf("second PayFull() error = %v, want ErrAlreadySettled", err)
	}
	if state, _ := l.State(); state.PaidCash != 396 {
		t.Errorf("repeated payment changed totals: %d", state.PaidCash)
	}
}

func TestPayFullValidation(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	a := mustOpen(t, l, "T1", "Novák")
	mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 2})

	tests := []struct {
		name string
		p    models.Payment
	}{
		{"short payment", cash(200)},
		{"over payment", cash(300)},
		{"negative amount", models.Payment{Method: models.MethodCash, Cash: 300, Card: -42}},
		{"unknown method", models.Payment{Method: "bitcoin", Cash: 258}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.PayFull(ctx, "T1", a.ID, tt.p); !errors.Is(err, ErrValidation) {
				t.Errorf("PayFull() error = %v, want ErrValidation", err)
			}
		})
	}

	split := models.Payment{Method: models.MethodCash, Cash: 100, Card: 100, QR: 58}
	if _, err := l.PayFull(ctx, "T1", a.ID, split); err != nil {
		t.Errorf("mixed payment error: %v", err)
	}
}

func TestNewPayment(t *testing.T) {
	if _, err := NewPayment(models.MethodCard, 0, 120, 0, 0); err != nil {
		t.Errorf("NewPayment() error: %v", err)
	}
	if _, err := NewPayment(models.MethodCard, 0, -1, 0, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("negative amount error = %v, want ErrValidation", err)
	}
	if _, err := NewPayment("voucher", 10, 0, 0, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown method error = %v, want ErrValidation", err)
	}
}

func TestPayPartial(t *testing.T) {
	ctx := context.Background()

	t.Run("one of three units", func(t *testing.T) {
		l, _ := newTestLedger(t)
		a := mustOpen(t, l, "T1", "Novák")
		line := mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "brambora", Quantity: 3})

		res, err := l.PayPartial(ctx, "T1", a.ID, []models.PartialSelection{{OriginalLineID: line.ID, PayQuantity: 1, Price: 40}}, cash(40))
		if err != nil {
			t.Fatalf("PayPartial() error: %v", err)
		}
		if res.Closed || res.Remaining != 80 {
			t.Errorf("result = %+v, want open with 80 remaining", res)
		}

		account, _ := l.Account("T1", a.ID)
		if got := account.Items()[0].Quantity; got != 2 {
			t.Errorf("open quantity = %d, want 2", got)
		}
		state, _ := l.State()
		if len(state.PaidAccounts) != 1 {
			t.Fatalf("paid accounts = %d, want 1", len(state.PaidAccounts))
		}
		paid := state.PaidAccounts[0]
		if !paid.Partial || paid.CustomerName != "Novák (část)" {
			t.Errorf("paid record = %+v", paid)
		}
		items := paid.Items()
		if len(items) != 1 || items[0].Quantity != 1 || items[0].Price != 40 {
			t.Errorf("paid items = %+v, want qty 1 price 40", items)
		}
		if state.PaidCash != 40 {
			t.Errorf("PaidCash = %d, want 40", state.PaidCash)
		}
		if len(state.SyncQueue) != 1 {
			t.Errorf("sync queue = %d, want 1", len(state.SyncQueue))
		}

		// Conservation: open + paid == everything rung up.
		if got := calculator.AccountTotal(account) + calculator.AccountTotal(paid.Account); got != 120 {
			t.Errorf("open + paid = %d, want 120", got)
		}
	})

	t.Run("last payable line closes the account", func(t *testing.T) {
		l, _ := newTestLedger(t)
		a := mustOpen(t, l, "T1", "Novák")
		portion, err := l.AddWeighedPortion(ctx, PortionRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "kureci", WeightGrams: 350, Pieces: 1, SidePieces: 1})
		if err != nil {
			t.Fatalf("AddWeighedPortion() error: %v", err)
		}

		res, err := l.PayPartial(ctx, "T1", a.ID, []models.PartialSelection{{OriginalLineID: portion[0].ID, PayQuantity: 1}}, models.Payment{Method: models.MethodCard, Card: 312})
		if err != nil {
			t.Fatalf("PayPartial() error: %v", err)
		}
		if !res.Closed || res.Remaining != 0 {
			t.Errorf("result = %+v, want closed", res)
		}
		if l.HasOpenTables() {
			t.Error("table should be removed")
		}

		sold := l.SoldStock()
		if sold["kureci"].Grams != 350 || sold["brambora"].Pieces != 1 {
			t.Errorf("stock lost on close: %+v", sold)
		}
		if len(res.Record.Bill) != 2 {
			t.Errorf("record bill = %+v, want portion and side", res.Record.Bill)
		}
	})

	t.Run("picked split lines", func(t *testing.T) {
		l, _ := newTestLedger(t)
		a := mustOpen(t, l, "T1", "Novák")
		line := mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 3})

		selections, total, err := l.SelectLines("T1", a.ID, []string{line.ID + "-0", line.ID + "-2"})
		if err != nil {
			t.Fatalf("SelectLines() error: %v", err)
		}
		if total != 258 || len(selections) != 1 || selections[0].PayQuantity != 2 {
			t.Errorf("SelectLines() = %+v, %d", selections, total)
		}
		if _, _, err := l.SelectLines("T1", a.ID, []string{"nope"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("unknown id error = %v, want ErrNotFound", err)
		}
		if _, _, err := l.SelectLines("T1", a.ID, []string{line.ID + "-1", line.ID + "-1"}); !errors.Is(err, ErrValidation) {
			t.Errorf("duplicate id error = %v, want ErrValidation", err)
		}

		res, err := l.PayPartial(ctx, "T1", a.ID, selections, cash(total))
		if err != nil {
			t.Fatalf("PayPartial() error: %v", err)
		}
		if res.Remaining != 129 {
			t.Errorf("remaining = %d, want 129", res.Remaining)
		}
	})

	t.Run("rejections do not mutate", func(t *testing.T) {
		l, store := newTestLedger(t)
		a := mustOpen(t, l, "T1", "Novák")
		pieces := mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 2})
		weight := mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "kureci", Quantity: 2, WeightGrams: 400})
		saves := store.saves

		tests := []struct {
			name    string
			sel     []models.PartialSelection
			p       models.Payment
			wantErr error
		}{
			{"payment mismatch", []models.PartialSelection{{OriginalLineID: pieces.ID, PayQuantity: 1}}, cash(100), ErrValidation},
			{"too many units", []models.PartialSelection{{OriginalLineID: pieces.ID, PayQuantity: 3}}, cash(387), ErrValidation},
			{"part of weight line", []models.PartialSelection{{OriginalLineID: weight.ID, PayQuantity: 1}}, cash(178), ErrValidation},
			{"stale price", []models.PartialSelection{{OriginalLineID: pieces.ID, PayQuantity: 1, Price: 99}}, cash(129), ErrValidation},
			{"unknown line", []models.PartialSelection{{OriginalLineID: "gone", PayQuantity: 1}}, cash(129), ErrNotFound},
			{"empty selection", nil, cash(0), ErrValidation},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := l.PayPartial(ctx, "T1", a.ID, tt.sel, tt.p); !errors.Is(err, tt.wantErr) {
					t.Errorf("PayPartial() error = %v, want %v", err, tt.wantErr)
				}
			})
		}

		if store.saves != saves {
			t.Errorf("rejected payments saved state")
		}
		state, _ := l.State()
		if state.PaidCash != 0 || len(state.PaidAccounts) != 0 || len(state.SyncQueue) != 0 {
			t.Errorf("state changed: %+v", state.RunningTotals)
		}
		if _, err := l.PayPartial(ctx, "T1", "gone", []models.PartialSelection{{OriginalLineID: pieces.ID, PayQuantity: 1}}, cash(129)); !errors.Is(err, ErrAlreadySettled) {
			t.Errorf("missing account error = %v, want ErrAlreadySettled", err)
		}
	})
}

func TestPayOnTheHouse(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		comped     int64
		method     models.PaymentMethod
		wantMethod models.PaymentMethod
		wantCard   int64
		wantComped int64
		wantErr    error
	}{
		{"partly comped, rest by card", 100, models.MethodCard, models.MethodOnTheHouseCard, 158, 100, nil},
		{"fully comped", 258, "", models.MethodOnTheHouse, 0, 258, nil},
		{"comp clamps to total", 1000, models.MethodCard, models.MethodOnTheHouse, 0, 258, nil},
		{"remainder without method", 50, "", "", 0, 0, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger(t)
			a := mustOpen(t, l, "T1", "Host")
			mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 2})

			record, err := l.PayOnTheHouse(ctx, "T1", a.ID, tt.comped, tt.method)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("PayOnTheHouse() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if record.Payment.Method != tt.wantMethod || record.Payment.Card != tt.wantCard || record.Payment.OnTheHouse != tt.wantComped {
				t.Errorf("payment = %+v", record.Payment)
			}
			state, _ := l.State()
			if state.PaidOnTheHouse != tt.wantComped || state.Revenue() != tt.wantCard {
				t.Errorf("totals = %+v", state.RunningTotals)
			}
		})
	}
}

func TestStock(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	if l.StockReady() {
		t.Error("stock should not be ready before it is set")
	}
	if err := l.SetInitialStock(ctx, map[string]int64{"pivo": 10}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown item error = %v, want ErrNotFound", err)
	}
	if err := l.SetInitialStock(ctx, map[string]int64{"kureci": -1}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative stock error = %v, want ErrValidation", err)
	}
	if err := l.SetInitialStock(ctx, map[string]int64{"kureci": 500, "veprove": 1000, "camembert": 1, "brambora": 10}); err != nil {
		t.Fatalf("SetInitialStock() error: %v", err)
	}
	if !l.StockReady() {
		t.Error("stock should be ready")
	}

	a := mustOpen(t, l, "T1", "Hungry")
	mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "kureci", Quantity: 2, WeightGrams: 700})
	mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 3})
	mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "brambora", Quantity: 2, Complimentary: true})

	remaining := l.RemainingStock()
	want := map[string]int64{"kureci": 0, "veprove": 1000, "camembert": 0, "brambora": 8}
	for id, w := range want {
		if remaining[id] != w {
			t.Errorf("remaining[%s] = %d, want %d", id, remaining[id], w)
		}
	}
	for id, v := range remaining {
		if v < 0 {
			t.Errorf("remaining[%s] = %d is negative", id, v)
		}
	}

	sold := l.SoldStock()
	if sold["kureci"].Count != 2 || sold["kureci"].Grams != 700 {
		t.Errorf("sold kureci = %+v", sold["kureci"])
	}
}

func TestDailyClose(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected with open table", func(t *testing.T) {
		l, store := newTestLedger(t)
		paid := mustOpen(t, l, "T1", "Paid")
		mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: paid.ID, MenuItemID: "camembert", Quantity: 1})
		if _, err := l.PayFull(ctx, "T1", paid.ID, cash(129)); err != nil {
			t.Fatalf("PayFull() error: %v", err)
		}
		open := mustOpen(t, l, "T2", "Still eating")
		mustAdd(t, l, AddItemRequest{TableID: "T2", AccountID: open.ID, MenuItemID: "brambora", Quantity: 1})
		before, _ := l.State()
		saves := store.saves

		if _, err := l.PerformDailyClose(ctx); !errors.Is(err, ErrOpenTables) {
			t.Fatalf("PerformDailyClose() error = %v, want ErrOpenTables", err)
		}

		after, _ := l.State()
		if after.RunningTotals != before.RunningTotals || len(after.SyncQueue) != len(before.SyncQueue) {
			t.Error("rejected close changed totals or queue")
		}
		if l.SoldStock()["camembert"].Pieces != 1 || l.SoldStock()["brambora"].Pieces != 1 {
			t.Error("rejected close changed stock")
		}
		if store.saves != saves {
			t.Error("rejected close saved state")
		}
	})

	t.Run("reports and resets the day", func(t *testing.T) {
		l, _ := newTestLedger(t)
		if _, err := l.UpsertMenuItem(ctx, models.MenuItem{ID: "pivo", Name: "Pivo", Price: 45, Unit: models.UnitPiece, Category: models.CategoryOther}); err != nil {
			t.Fatalf("UpsertMenuItem() error: %v", err)
		}
		if err := l.SetInitialStock(ctx, map[string]int64{"kureci": 2000, "veprove": 0, "camembert": 5, "brambora": 5}); err != nil {
			t.Fatalf("SetInitialStock() error: %v", err)
		}
		a := mustOpen(t, l, "T1", "Novák")
		mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "kureci", Quantity: 1, WeightGrams: 350})
		mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 1})
		if _, err := l.PayFull(ctx, "T1", a.ID, models.Payment{Method: models.MethodQR, QR: 441}); err != nil {
			t.Fatalf("PayFull() error: %v", err)
		}
		if err := l.SetSyncError(ctx, true); err != nil {
			t.Fatalf("SetSyncError() error: %v", err)
		}

		payload, err := l.PerformDailyClose(ctx)
		if err != nil {
			t.Fatalf("PerformDailyClose() error: %v", err)
		}
		if payload.Date != "04.07.2026" || payload.Action != models.ActionDailyClose {
			t.Errorf("payload header = %s %s", payload.Action, payload.Date)
		}
		if payload.Totals.QR != 441 || payload.Totals.TotalRevenue != 441 {
			t.Errorf("totals = %+v", payload.Totals)
		}
		if got := payload.RemainingStock["Kuřecí"]; got.Value != 1650 || got.Unit != models.UnitWeight {
			t.Errorf("remaining Kuřecí = %+v", got)
		}
		if got := payload.SoldStock["Camembert"]; got.Pieces != 1 {
			t.Errorf("sold Camembert = %+v", got)
		}
		if _, ok := payload.SoldStock["Pivo"]; ok {
			t.Error("non-food item in close payload")
		}

		state, _ := l.State()
		if state.RunningTotals != (models.RunningTotals{}) || len(state.PaidAccounts) != 0 || len(state.InitialStock) != 0 {
			t.Errorf("day not reset: %+v", state)
		}
		if len(state.Menu) != 5 {
			t.Errorf("menu should survive the close, has %d items", len(state.Menu))
		}
		if len(state.SyncQueue) != 2 || state.SyncQueue[1].Action != models.ActionDailyClose {
			t.Errorf("sync queue = %+v", state.SyncQueue)
		}
		if !state.SyncError {
			t.Error("sync error flag should survive the close")
		}
	})

	t.Run("full reset restores default menu", func(t *testing.T) {
		l, _ := newTestLedger(t)
		if err := l.DeleteMenuItem(ctx, "camembert"); err != nil {
			t.Fatalf("DeleteMenuItem() error: %v", err)
		}
		if err := l.ResetDay(ctx, false); err != nil {
			t.Fatalf("ResetDay(false) error: %v", err)
		}
		if len(l.Menu()) != 3 {
			t.Errorf("partial reset changed the menu")
		}
		if err := l.ResetDay(ctx, true); err != nil {
			t.Fatalf("ResetDay(true) error: %v", err)
		}
		if len(l.Menu()) != 4 {
			t.Errorf("full reset should restore the default menu")
		}
	})
}

func TestMenu(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	item, err := l.UpsertMenuItem(ctx, models.MenuItem{Name: " Klobása ", Price: 99, Unit: models.UnitPiece, Category: models.CategoryFood})
	if err != nil {
		t.Fatalf("UpsertMenuItem() error: %v", err)
	}
	if item.ID == "" || item.Name != "Klobása" {
		t.Errorf("item = %+v", item)
	}

	item.Price = 109
	if _, err := l.UpsertMenuItem(ctx, item); err != nil {
		t.Fatalf("UpsertMenuItem(update) error: %v", err)
	}
	if got, _ := models.FindMenuItem(l.Menu(), item.ID); got.Price != 109 {
		t.Errorf("price = %d, want 109", got.Price)
	}

	badItems := []models.MenuItem{
		{Name: "", Price: 1, Unit: models.UnitPiece, Category: models.CategoryFood},
		{Name: "Free lunch", Price: -1, Unit: models.UnitPiece, Category: models.CategoryFood},
		{Name: "Kilo", Price: 1, Unit: "kg", Category: models.CategoryFood},
		{Name: "Toy", Price: 1, Unit: models.UnitPiece, Category: "toys"},
	}
	for _, bad := range badItems {
		if _, err := l.UpsertMenuItem(ctx, bad); !errors.Is(err, ErrValidation) {
			t.Errorf("UpsertMenuItem(%+v) error = %v, want ErrValidation", bad, err)
		}
	}

	if err := l.DeleteMenuItem(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteMenuItem(missing) error = %v, want ErrNotFound", err)
	}

	if err := l.ReplaceMenu(ctx, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("ReplaceMenu(empty) error = %v, want ErrValidation", err)
	}
	bad := append(models.DefaultMenu(), models.MenuItem{ID: "x", Name: "X", Price: 1, Unit: "liters", Category: models.CategoryOther})
	if err := l.ReplaceMenu(ctx, bad); !errors.Is(err, ErrValidation) {
		t.Errorf("ReplaceMenu(bad) error = %v, want ErrValidation", err)
	}
	if len(l.Menu()) != 5 {
		t.Errorf("rejected replace changed the menu")
	}
	if err := l.ReplaceMenu(ctx, models.DefaultMenu()[:2]); err != nil {
		t.Fatalf("ReplaceMenu() error: %v", err)
	}
	if len(l.Menu()) != 2 {
		t.Errorf("menu has %d items, want 2", len(l.Menu()))
	}
}

func TestPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	store.fail = true

	a, err := l.OpenAccount(ctx, "T1", "Novák")
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("OpenAccount() error = %v, want ErrPersistence", err)
	}
	if _, err := l.Account("T1", a.ID); err != nil {
		t.Errorf("in-memory account should be retained: %v", err)
	}

	store.fail = false
	if _, err := l.AddLineItem(ctx, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "camembert", Quantity: 1}); err != nil {
		t.Fatalf("AddLineItem() error: %v", err)
	}
	persisted := store.snapshot(t)
	if len(persisted.Tables["T1"]) != 1 {
		t.Errorf("next save should persist the retained account")
	}
}

func TestOutboxQueue(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	if _, ok := l.NextEvent(ctx); ok {
		t.Fatal("empty queue returned an event")
	}

	for i, name := range []string{"A", "B"} {
		a := mustOpen(t, l, "T1", name)
		mustAdd(t, l, AddItemRequest{TableID: "T1", AccountID: a.ID, MenuItemID: "brambora", Quantity: i + 1})
		if _, err := l.PayFull(ctx, "T1", a.ID, cash(int64(40*(i+1)))); err != nil {
			t.Fatalf("PayFull() error: %v", err)
		}
	}
	if got := l.SyncStatus(); got.Pending != 2 || got.Error {
		t.Errorf("SyncStatus() = %+v", got)
	}

	first, ok := l.NextEvent(ctx)
	if !ok {
		t.Fatal("NextEvent() returned nothing")
	}
	var payload models.LogTransactionPayload
	if err := json.Unmarshal(first.Payload, &payload); err != nil || payload.TransactionData.CustomerName != "A" {
		t.Errorf("head payload = %+v, %v; want customer A", payload, err)
	}

	if err := l.AckEvent(ctx, first.ID); err != nil {
		t.Fatalf("AckEvent() error: %v", err)
	}
	if err := l.AckEvent(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second AckEvent() error = %v, want ErrNotFound", err)
	}
	next, _ := l.NextEvent(ctx)
	if next.ID == first.ID {
		t.Error("acked event still at head")
	}

	if err := l.SetSyncError(ctx, true); err != nil {
		t.Fatalf("SetSyncError() error: %v", err)
	}
	if !l.SyncStatus().Error {
		t.Error("error flag not set")
	}
}
