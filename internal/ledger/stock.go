package ledger

import (
	"context"
	"log/slog"
	"maps"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/calculator"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// SetInitialStock replaces the day's opening stock. Keys must be food items of
// the menu, values grams or pieces by the item's unit.
func (l *Ledger) SetInitialStock(ctx context.Context, stock map[string]int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, v := range stock {
		item, ok := models.FindMenuItem(l.state.Menu, id)
		if !ok {
			return notFoundf("menu item %s", id)
		}
		if !item.TracksStock() {
			return validationf("%s is not stock-tracked", item.Name)
		}
		if v < 0 {
			return validationf("stock of %s must not be negative", item.Name)
		}
	}

	l.state.InitialStock = maps.Clone(stock)
	if l.state.InitialStock == nil {
		l.state.InitialStock = make(map[string]int64)
	}
	slog.Info("Initial stock set", "items", len(stock))
	return l.save(ctx)
}

// InitialStock returns a copy of the opening stock.
func (l *Ledger) InitialStock() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.state.InitialStock)
}

// SoldStock derives the sold quantities from open and paid lines.
func (l *Ledger) SoldStock() map[string]calculator.SoldEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.soldStock()
}

// RemainingStock derives what is left per food item; never negative.
func (l *Ledger) RemainingStock() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return calculator.RemainingStock(l.state.Menu, l.state.InitialStock, l.soldStock())
}

// StockReady reports whether the opening stock is set for every food item.
func (l *Ledger) StockReady() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return calculator.StockReady(l.state.Menu, l.state.InitialStock)
}

func (l *Ledger) soldStock() map[string]calculator.SoldEntry {
	return calculator.SoldStock(l.state.Menu, l.allLines())
}

// allLines collects every line rung up today, open and paid.
func (l *Ledger) allLines() []models.BillItem {
	var items []models.BillItem
	for _, accounts := range l.state.Tables {
		for _, a := range accounts {
			items = append(items, a.Items()...)
		}
	}
	for _, paid := range l.state.PaidAccounts {
		items = append(items, paid.Items()...)
	}
	return items
}
