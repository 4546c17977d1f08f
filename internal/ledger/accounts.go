package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/calculator"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// AddItemRequest rings up one line on an open account.
type AddItemRequest struct {
	TableID    string
	AccountID  string
	MenuItemID string

	// Quantity is the piece count; for weight items the number of pieces in
	// the weighed portion.
	Quantity int

	// WeightGrams is the total weight; required for weight items.
	WeightGrams int

	Complimentary bool
}

// PortionRequest rings up a weighed portion with optional free sides.
type PortionRequest struct {
	TableID     string
	AccountID   string
	MenuItemID  string
	WeightGrams int
	Pieces      int
	SidePieces  int
}

// OpenAccount seats a customer at a table.
func (l *Ledger) OpenAccount(ctx context.Context, tableID, customerName string) (models.Account, error) {
	tableID = strings.TrimSpace(tableID)
	customerName = strings.TrimSpace(customerName)
	if tableID == "" {
		return models.Account{}, validationf("table is required")
	}
	if customerName == "" {
		return models.Account{}, validationf("customer name is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stockGate && !calculator.StockReady(l.state.Menu, l.state.InitialStock) {
		return models.Account{}, ErrStockNotSet
	}

	account := models.Account{
		ID:           uuid.Must(uuid.NewV7()).String(),
		CustomerName: customerName,
		OpenedAt:     l.now(),
	}
	l.state.Tables[tableID] = append(l.state.Tables[tableID], account)

	slog.Info("Account opened", "table", tableID, "account", account.ID, "customer", customerName)
	return account, l.save(ctx)
}

// AddLineItem appends a line to the account's pending batch, creating the
// batch when needed. Every order entry goes through here.
func (l *Ledger) AddLineItem(ctx context.Context, req AddItemRequest) (models.BillItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, err := l.addLine(req)
	if err != nil {
		return models.BillItem{}, err
	}
	return item, l.save(ctx)
}

// AddWeighedPortion adds a weighed line and, when SidePieces > 0 and the side
// item is on the menu, a complimentary side line. Both lines are added or
// neither is.
func (l *Ledger) AddWeighedPortion(ctx context.Context, req PortionRequest) ([]models.BillItem, error) {
	if req.SidePieces < 0 {
		return nil, validationf("side pieces must not be negative")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	menuItem, ok := models.FindMenuItem(l.state.Menu, req.MenuItemID)
	if !ok {
		return nil, notFoundf("menu item %s", req.MenuItemID)
	}
	if menuItem.Unit != models.UnitWeight {
		return nil, validationf("%s is not sold by weight", menuItem.Name)
	}

	account, err := l.findAccount(req.TableID, req.AccountID)
	if err != nil {
		return nil, err
	}
	before := cloneBatches(account.Batches)
	lastAdded := account.LastAddedItemID

	portion, err := l.addLine(AddItemRequest{
		TableID:     req.TableID,
		AccountID:   req.AccountID,
		MenuItemID:  req.MenuItemID,
		Quantity:    req.Pieces,
		WeightGrams: req.WeightGrams,
	})
	if err != nil {
		return nil, err
	}
	items := []models.BillItem{portion}

	if _, ok := models.FindMenuItem(l.state.Menu, l.sideItemID); ok && req.SidePieces > 0 {
		side, err := l.addLine(AddItemRequest{
			TableID:       req.TableID,
			AccountID:     req.AccountID,
			MenuItemID:    l.sideItemID,
			Quantity:      req.SidePieces,
			Complimentary: true,
		})
		if err != nil {
			account.Batches, account.LastAddedItemID = before, lastAdded
			return nil, err
		}
		items = append(items, side)
	}

	return items, l.save(ctx)
}

// UndoLastItem removes the last added line of the pending batch. Ready and
// dispatched batches are never touched. Returns ErrNothingToUndo when there
// is no pending line.
func (l *Ledger) UndoLastItem(ctx context.Context, tableID, accountID string) (*models.BillItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.findAccount(tableID, accountID)
	if err != nil {
		return nil, err
	}
	pending := account.PendingBatch()
	if pending == nil || len(pending.Items) == 0 {
		return nil, ErrNothingToUndo
	}

	idx := len(pending.Items) - 1
	if account.LastAddedItemID != "" {
		if i := slices.IndexFunc(pending.Items, func(it models.BillItem) bool {
			return it.ID == account.LastAddedItemID
		}); i >= 0 {
			idx = i
		}
	}

	removed := pending.Items[idx]
	pending.Items = slices.Delete(pending.Items, idx, idx+1)
	if n := len(pending.Items); n > 0 {
		account.LastAddedItemID = pending.Items[n-1].ID
	} else {
		account.LastAddedItemID = ""
	}

	slog.Info("Line removed", "table", tableID, "account", accountID, "item", removed.Name)
	return &removed, l.save(ctx)
}

// Tables returns a copy of all open tables.
func (l *Ledger) Tables() map[string][]models.Account {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string][]models.Account, len(l.state.Tables))
	for table, accounts := range l.state.Tables {
		copied := make([]models.Account, len(accounts))
		for i, a := range accounts {
			a.Batches = cloneBatches(a.Batches)
			copied[i] = a
		}
		out[table] = copied
	}
	return out
}

// Account returns a copy of one open account.
func (l *Ledger) Account(tableID, accountID string) (models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.findAccount(tableID, accountID)
	if err != nil {
		return models.Account{}, err
	}
	out := *account
	out.Batches = cloneBatches(account.Batches)
	return out, nil
}

// HasOpenTables reports whether any table has an account.
func (l *Ledger) HasOpenTables() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state.Tables) > 0
}

// OpenTablesTotal is the value still owed on all open accounts.
func (l *Ledger) OpenTablesTotal() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total int64
	for _, accounts := range l.state.Tables {
		for _, a := range accounts {
			total += calculator.AccountTotal(a)
		}
	}
	return total
}

// addLine validates and appends one line. Callers hold l.mu and save.
func (l *Ledger) addLine(req AddItemRequest) (models.BillItem, error) {
	account, err := l.findAccount(req.TableID, req.AccountID)
	if err != nil {
		return models.BillItem{}, err
	}
	menuItem, ok := models.FindMenuItem(l.state.Menu, req.MenuItemID)
	if !ok {
		return models.BillItem{}, notFoundf("menu item %s", req.MenuItemID)
	}
	if req.Quantity < 1 {
		return models.BillItem{}, validationf("quantity must be at least 1, got %d", req.Quantity)
	}

	item := models.BillItem{
		ID:         uuid.NewString(),
		MenuItemID: menuItem.ID,
		Name:       menuItem.Name,
		Price:      menuItem.Price,
		Quantity:   req.Quantity,
		Unit:       menuItem.Unit,
		IsOther:    menuItem.Category == models.CategoryOther,
	}
	if menuItem.Unit == models.UnitWeight {
		if req.WeightGrams <= 0 {
			return models.BillItem{}, validationf("weight in grams is required for %s", menuItem.Name)
		}
		item.WeightGrams = req.WeightGrams
		item.Price = calculator.WeightPrice(req.WeightGrams, menuItem.Price)
		item.Name = fmt.Sprintf("%s (%dg)", menuItem.Name, req.WeightGrams)
	}
	if req.Complimentary {
		item.Complimentary = true
		item.Price = 0
		item.Name = menuItem.Name + calculator.ComplimentaryMarker
	}

	pending := account.PendingBatch()
	if pending == nil {
		account.Batches = append(account.Batches, models.DispatchBatch{
			ID:     uuid.NewString(),
			Status: models.BatchPending,
		})
		pending = &account.Batches[len(account.Batches)-1]
	}
	pending.Items = append(pending.Items, item)
	account.LastAddedItemID = item.ID

	slog.Debug("Line added",
		"table", req.TableID,
		"account", req.AccountID,
		"item", item.Name,
		"quantity", item.Quantity,
		"price", item.Price,
	)
	return item, nil
}

// findAccount returns a pointer into the table's account slice. Callers hold l.mu.
func (l *Ledger) findAccount(tableID, accountID string) (*models.Account, error) {
	accounts := l.state.Tables[tableID]
	for i := range accounts {
		if accounts[i].ID == accountID {
			return &accounts[i], nil
		}
	}
	return nil, notFoundf("account %s at table %s", accountID, tableID)
}

// removeAccount drops an account and deletes the table when it empties.
func (l *Ledger) removeAccount(tableID, accountID string) {
	accounts := slices.DeleteFunc(l.state.Tables[tableID], func(a models.Account) bool {
		return a.ID == accountID
	})
	if len(accounts) == 0 {
		delete(l.state.Tables, tableID)
		return
	}
	l.state.Tables[tableID] = accounts
}

func cloneBatches(batches []models.DispatchBatch) []models.DispatchBatch {
	if batches == nil {
		return nil
	}
	out := make([]models.DispatchBatch, len(batches))
	for i, b := range batches {
		b.Items = slices.Clone(b.Items)
		out[i] = b
	}
	return out
}
