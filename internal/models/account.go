package models

import "time"

// BatchStatus is the kitchen lifecycle state of a DispatchBatch.
type BatchStatus string

const (
	// BatchPending is still being ordered; new lines are appended here.
	BatchPending BatchStatus = "pending"
	// BatchReady was sent to the grill and waits for pickup.
	BatchReady BatchStatus = "ready"
	// BatchDispatched was handed out. Terminal.
	BatchDispatched BatchStatus = "dispatched"
)

// BillItem represents one ordered line on a bill.
type BillItem struct {
	// ID is unique within the whole ledger (UUID format).
	ID string `json:"id"`

	// MenuItemID references the catalog item this line was rung up from.
	MenuItemID string `json:"menuItemId"`

	// Name is the rendered label, e.g. "Kuřecí (350g)" or "Pečená brambora (Z)".
	Name string `json:"name"`

	// Price is the whole-portion price for weight lines and the per-piece
	// price for piece lines. Always 0 for complimentary lines.
	Price int64 `json:"price"`

	// Quantity is the number of pieces (steaks for weight lines), at least 1.
	Quantity int `json:"quantity"`

	Unit Unit `json:"unit"`

	// WeightGrams is the total weighed amount of a weight line, 0 otherwise.
	WeightGrams int `json:"weightGrams,omitempty"`

	Complimentary bool `json:"complimentary,omitempty"`

	// IsOther marks lines of CategoryOther items; they never go to the kitchen.
	IsOther bool `json:"isOther"`
}

// DispatchBatch is a group of lines that travel to the kitchen together.
type DispatchBatch struct {
	ID     string      `json:"batchId"`
	Items  []BillItem  `json:"items"`
	Status BatchStatus `json:"status"`

	// ReadyAt is set when the batch is sent to the kitchen.
	ReadyAt *time.Time `json:"readyAt,omitempty"`

	// ReadySeq orders batches sent at the same instant; it grows with every send.
	ReadySeq int64 `json:"readySeq,omitempty"`

	// LegacyReadyTimestamp is the epoch-millisecond send time of older
	// snapshots. It is moved into ReadyAt on load.
	LegacyReadyTimestamp *int64 `json:"readyTimestamp,omitempty"`
}

// HasKitchenItems reports whether the batch holds at least one non-other line.
func (b DispatchBatch) HasKitchenItems() bool {
	for _, item := range b.Items {
		if !item.IsOther {
			return true
		}
	}
	return false
}

// Account represents one customer's running bill at a table.
type Account struct {
	// ID is a UUIDv7, so sorting by ID sorts by opening time.
	ID string `json:"accountId"`

	CustomerName string `json:"customerName"`

	// Batches are kept in creation order. At most one is BatchPending.
	Batches []DispatchBatch `json:"dispatchBatches"`

	// LastAddedItemID tracks the most recent line of the pending batch for undo.
	LastAddedItemID string `json:"lastAddedItemId,omitempty"`

	// LegacyLastAddedItemID is the older name of LastAddedItemID.
	LegacyLastAddedItemID string `json:"lastAddedItemIdToPendingBatch,omitempty"`

	OpenedAt time.Time `json:"openedAt"`
}

// PendingBatch returns a pointer to the pending batch, or nil.
func (a *Account) PendingBatch() *DispatchBatch {
	for i := range a.Batches {
		if a.Batches[i].Status == BatchPending {
			return &a.Batches[i]
		}
	}
	return nil
}

// Items flattens the lines of all batches in order.
func (a Account) Items() []BillItem {
	var items []BillItem
	for _, batch := range a.Batches {
		items = append(items, batch.Items...)
	}
	return items
}

// PaidAccount is an immutable snapshot appended to the day's history on
// full or partial settlement. It is only read for stock and revenue.
type PaidAccount struct {
	Account

	Payment PaymentInfo `json:"paymentInfo"`
	PaidAt  time.Time   `json:"paidAt"`

	// Partial is true for records split off an account that stayed open.
	Partial bool `json:"partial,omitempty"`
}
