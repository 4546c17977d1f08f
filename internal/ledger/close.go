package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/calculator"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/metrics"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// CloseDateLayout is the date format of the daily close payload.
const CloseDateLayout = "02.01.2006"

// PerformDailyClose queues the day's report and starts a new day: totals,
// tables, opening stock and paid history are cleared while the menu and the
// outbox survive. Refuses with ErrOpenTables while any account is open.
func (l *Ledger) PerformDailyClose(ctx context.Context) (models.ClosePayload, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.state.Tables) > 0 {
		return models.ClosePayload{}, ErrOpenTables
	}

	payload := l.closePayload(l.now())
	if err := l.enqueue(models.ActionDailyClose, payload); err != nil {
		return models.ClosePayload{}, err
	}
	l.reset(false)
	metrics.DailyCloses.Inc()

	slog.Info("Daily close",
		"date", payload.Date,
		"revenue", payload.Totals.TotalRevenue,
		"on_the_house", payload.Totals.OnHouse,
	)
	return payload, l.save(ctx)
}

// PreviewClose builds the close payload for now without changing anything.
func (l *Ledger) PreviewClose(now time.Time) models.ClosePayload {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closePayload(now)
}

// ResetDay discards the day's data without reporting it. A full reset also
// restores the default menu. The outbox is always kept.
func (l *Ledger) ResetDay(ctx context.Context, full bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reset(full)
	slog.Warn("Day reset", "full", full)
	return l.save(ctx)
}

func (l *Ledger) reset(full bool) {
	next := models.NewSnapshot()
	if !full {
		next.Menu = l.state.Menu
	}
	next.SyncQueue = l.state.SyncQueue
	next.SyncError = l.state.SyncError
	l.state = next
}

func (l *Ledger) closePayload(now time.Time) models.ClosePayload {
	sold := l.soldStock()
	remaining := calculator.RemainingStock(l.state.Menu, l.state.InitialStock, sold)

	payload := models.ClosePayload{
		Action: models.ActionDailyClose,
		Date:   now.Format(CloseDateLayout),
		Totals: models.CloseTotals{
			Cash:         l.state.PaidCash,
			Card:         l.state.PaidCard,
			QR:           l.state.PaidQR,
			OnHouse:      l.state.PaidOnTheHouse,
			TotalRevenue: l.state.Revenue(),
		},
		RemainingStock: make(map[string]models.RemainingEntry),
		SoldStock:      make(map[string]models.SoldEntry),
	}
	for _, item := range calculator.StockItems(l.state.Menu) {
		payload.RemainingStock[item.Name] = models.RemainingEntry{Value: remaining[item.ID], Unit: item.Unit}
		entry := sold[item.ID]
		payload.SoldStock[item.Name] = models.SoldEntry{Grams: entry.Grams, Pieces: entry.Pieces}
	}
	return payload
}
