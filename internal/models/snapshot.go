package models

import (
	"encoding/json"
	"time"
)

// SyncAction names the backend action carried by an outbox event.
type SyncAction string

const (
	ActionLogTransaction SyncAction = "logTransaction"
	ActionDailyClose     SyncAction = "performDailyClose"
)

// OutboxEvent is one business event waiting for delivery.
// Payload is posted to the backend verbatim.
type OutboxEvent struct {
	ID         string          `json:"id"`
	Action     SyncAction      `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// LogTransactionPayload is the body of a logTransaction event.
type LogTransactionPayload struct {
	Action          SyncAction        `json:"action"`
	TransactionData TransactionRecord `json:"transactionData"`
}

// CloseTotals is the revenue block of a daily close.
type CloseTotals struct {
	Cash         int64 `json:"cash"`
	Card         int64 `json:"card"`
	QR           int64 `json:"qr"`
	OnHouse      int64 `json:"onHouse"`
	TotalRevenue int64 `json:"totalRevenue"`
}

// RemainingEntry is what is left of one food item at close, keyed by item name.
type RemainingEntry struct {
	Value int64 `json:"value"`
	Unit  Unit  `json:"type"`
}

// SoldEntry is what was sold of one food item at close, keyed by item name.
type SoldEntry struct {
	Grams  int64 `json:"grams"`
	Pieces int64 `json:"pieces"`
}

// ClosePayload is the body of a performDailyClose event.
type ClosePayload struct {
	Action         SyncAction                `json:"action"`
	Date           string                    `json:"date"`
	Totals         CloseTotals               `json:"totals"`
	RemainingStock map[string]RemainingEntry `json:"remainingStock"`
	SoldStock      map[string]SoldEntry      `json:"soldStock"`
}

// Snapshot is the whole persisted ledger document. It is written after every
// mutation and loaded once at startup.
type Snapshot struct {
	RunningTotals

	Tables       map[string][]Account `json:"tables"`
	InitialStock map[string]int64     `json:"initialStock"`
	PaidAccounts []PaidAccount        `json:"paidAccounts"`
	Menu         []MenuItem           `json:"menuConfig"`
	SyncQueue    []OutboxEvent        `json:"syncQueue"`
	SyncError    bool                 `json:"syncError"`

	// DispatchSeq is the last ReadySeq handed out.
	DispatchSeq int64 `json:"dispatchSeq"`
}

// NewSnapshot returns an empty day with the default menu.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Tables:       make(map[string][]Account),
		InitialStock: make(map[string]int64),
		Menu:         DefaultMenu(),
	}
}
