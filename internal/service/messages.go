package service

import (
	"time"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/calculator"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/ledger"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// AccountRef addresses one open account.
type AccountRef struct {
	TableID   string `json:"tableId"`
	AccountID string `json:"accountId"`
}

// Payment is the payment breakdown sent by the terminal.
type Payment struct {
	Method     models.PaymentMethod `json:"method"`
	Cash       int64                `json:"cash"`
	Card       int64                `json:"card"`
	QR         int64                `json:"qr"`
	OnTheHouse int64                `json:"onTheHouse"`
}

func (p Payment) toModel() (models.Payment, error) {
	return ledger.NewPayment(p.Method, p.Cash, p.Card, p.QR, p.OnTheHouse)
}

type SyncStatus struct {
	Pending int  `json:"pending"`
	Error   bool `json:"error"`
	Running bool `json:"running"`
}

type GetStateRequest struct{}

type GetStateResponse struct {
	Tables          map[string][]models.Account `json:"tables"`
	Totals          models.RunningTotals        `json:"totals"`
	Revenue         int64                       `json:"revenue"`
	OpenTablesTotal int64                       `json:"openTablesTotal"`
	Menu            []models.MenuItem           `json:"menu"`
	StockReady      bool                        `json:"stockReady"`
	Sync            SyncStatus                  `json:"sync"`
}

type OpenAccountRequest struct {
	TableID      string `json:"tableId"`
	CustomerName string `json:"customerName"`
}

type OpenAccountResponse struct {
	TableID string         `json:"tableId"`
	Account models.Account `json:"account"`
}

type AddLineItemRequest struct {
	AccountRef
	MenuItemID    string `json:"menuItemId"`
	Quantity      int    `json:"quantity"`
	WeightGrams   int    `json:"weightGrams"`
	Complimentary bool   `json:"complimentary"`
}

type AddLineItemResponse struct {
	Item models.BillItem `json:"item"`
}

type AddWeighedPortionRequest struct {
	AccountRef
	MenuItemID  string `json:"menuItemId"`
	WeightGrams int    `json:"weightGrams"`
	Pieces      int    `json:"pieces"`
	SidePieces  int    `json:"sidePieces"`
}

type AddWeighedPortionResponse struct {
	Items []models.BillItem `json:"items"`
}

type UndoLastItemRequest struct {
	AccountRef
}

type UndoLastItemResponse struct {
	Removed *models.BillItem `json:"removed,omitempty"`
}

type SendToDispatchRequest struct {
	AccountRef
}

type SendToDispatchResponse struct {
	Batch models.DispatchBatch `json:"batch"`
}

type ConfirmDispatchRequest struct {
	AccountRef
	BatchID string `json:"batchId"`
}

type ConfirmDispatchResponse struct{}

type DispatchBoardRequest struct{}

// BoardEntry is one ready batch waiting at the grill.
type BoardEntry struct {
	TableID        string            `json:"tableId"`
	AccountID      string            `json:"accountId"`
	CustomerName   string            `json:"customerName"`
	BatchID        string            `json:"batchId"`
	Items          []models.BillItem `json:"items"`
	ReadyAt        time.Time         `json:"readyAt"`
	ElapsedSeconds int64             `json:"elapsedSeconds"`
	Overdue        bool              `json:"overdue"`
}

type DispatchBoardResponse struct {
	Entries []BoardEntry `json:"entries"`
}

func boardEntries(entries []ledger.BoardEntry) []BoardEntry {
	out := make([]BoardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, BoardEntry{
			TableID:        e.TableID,
			AccountID:      e.AccountID,
			CustomerName:   e.CustomerName,
			BatchID:        e.BatchID,
			Items:          e.Items,
			ReadyAt:        e.ReadyAt,
			ElapsedSeconds: int64(e.Elapsed / time.Second),
			Overdue:        e.Overdue,
		})
	}
	return out
}

type SplitCandidatesRequest struct {
	AccountRef
}

// SplitLine is one selectable unit of a partial payment.
type SplitLine struct {
	ID             string `json:"id"`
	OriginalLineID string `json:"originalLineId"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	Quantity       int    `json:"quantity"`
	Selectable     bool   `json:"selectable"`
}

type SplitCandidatesResponse struct {
	Lines []SplitLine `json:"lines"`
}

func splitLines(lines []calculator.SplitLine) []SplitLine {
	out := make([]SplitLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, SplitLine{
			ID:             l.ID,
			OriginalLineID: l.OriginalLineID,
			Name:           l.Name,
			Price:          l.Price,
			Quantity:       l.Quantity,
			Selectable:     l.Selectable,
		})
	}
	return out
}

type PayFullRequest struct {
	AccountRef
	Payment Payment `json:"payment"`
}

type PaymentResponse struct {
	Transaction *models.TransactionRecord `json:"transaction,omitempty"`

	// AlreadySettled is set when the account was gone, e.g. a repeated click.
	AlreadySettled bool `json:"alreadySettled,omitempty"`
}

type PayPartialRequest struct {
	AccountRef

	// Selected holds split line IDs; they are aggregated per bill line.
	Selected []string `json:"selected,omitempty"`

	// Selections is used as is when Selected is empty.
	Selections []models.PartialSelection `json:"selections,omitempty"`

	Payment Payment `json:"payment"`
}

type PayPartialResponse struct {
	Transaction *models.TransactionRecord `json:"transaction,omitempty"`
	Remaining   int64                     `json:"remaining"`
	Closed      bool                      `json:"closed"`
}

type PayOnTheHouseRequest struct {
	AccountRef
	Comped int64 `json:"comped"`

	// Method pays the remainder: cash, card or qr.
	Method models.PaymentMethod `json:"method"`
}

type SetInitialStockRequest struct {
	Stock map[string]int64 `json:"stock"`
}

type SetInitialStockResponse struct {
	Ready bool `json:"ready"`
}

type GetStockRequest struct{}

// StockLine is the stock state of one food item.
type StockLine struct {
	MenuItemID string      `json:"menuItemId"`
	Name       string      `json:"name"`
	Unit       models.Unit `json:"type"`
	Initial    int64       `json:"initial"`
	Sold       int64       `json:"sold"`

	// Count is the number of pieces in the sold weight lines.
	Count     int64 `json:"count,omitempty"`
	Remaining int64 `json:"remaining"`
}

type GetStockResponse struct {
	Items []StockLine `json:"items"`
	Ready bool        `json:"ready"`
}

type SyncStatusRequest struct{}

type SyncStatusResponse struct {
	Sync SyncStatus `json:"sync"`
}

type RetrySyncRequest struct{}

type RetrySyncResponse struct {
	Sent int        `json:"sent"`
	Sync SyncStatus `json:"sync"`
}

type UpsertMenuItemRequest struct {
	Item models.MenuItem `json:"item"`
}

type UpsertMenuItemResponse struct {
	Item models.MenuItem `json:"item"`
}

type DeleteMenuItemRequest struct {
	ID string `json:"id"`
}

type DeleteMenuItemResponse struct{}

type RefreshMenuRequest struct{}

type RefreshMenuResponse struct {
	Menu []models.MenuItem `json:"menu"`
}

type DailyCloseRequest struct{}

type DailyCloseResponse struct {
	Close models.ClosePayload `json:"close"`
}

type ResetDayRequest struct {
	// Full also restores the default menu.
	Full bool `json:"full"`
}

type ResetDayResponse struct{}

type LoginRequest struct {
	PIN string `json:"pin"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
