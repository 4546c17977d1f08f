package models

import "time"

// PaymentMethod tags how a payment was settled.
type PaymentMethod string

const (
	MethodCash           PaymentMethod = "cash"
	MethodCard           PaymentMethod = "card"
	MethodQR             PaymentMethod = "qr"
	MethodOnTheHouse     PaymentMethod = "on_the_house"
	MethodOnTheHouseCash PaymentMethod = "on_the_house_cash"
	MethodOnTheHouseCard PaymentMethod = "on_the_house_card"
	MethodOnTheHouseQR   PaymentMethod = "on_the_house_qr"
	MethodOnTheHousePart PaymentMethod = "on_the_house_partial"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodQR,
		MethodOnTheHouse, MethodOnTheHouseCash, MethodOnTheHouseCard, MethodOnTheHouseQR, MethodOnTheHousePart:
		return true
	}
	return false
}

// Payment is the breakdown of one settlement. Build it with ledger.NewPayment
// so that every amount is checked to be non-negative.
type Payment struct {
	Method     PaymentMethod
	Cash       int64
	Card       int64
	QR         int64
	OnTheHouse int64
}

// Revenue is the money actually collected (everything except on-the-house).
func (p Payment) Revenue() int64 {
	return p.Cash + p.Card + p.QR
}

// Total is the bill value covered by this payment, including on-the-house.
func (p Payment) Total() int64 {
	return p.Revenue() + p.OnTheHouse
}

// Info converts the payment to its persisted/logged form.
func (p Payment) Info() PaymentInfo {
	return PaymentInfo{
		Method:     p.Method,
		Cash:       p.Cash,
		Card:       p.Card,
		QR:         p.QR,
		OnTheHouse: p.OnTheHouse,
		Total:      p.Revenue(),
	}
}

// PaymentInfo is the payment block stored on PaidAccount and sent with
// every logged transaction.
type PaymentInfo struct {
	Method     PaymentMethod `json:"method"`
	Cash       int64         `json:"cash"`
	Card       int64         `json:"card"`
	QR         int64         `json:"qr"`
	OnTheHouse int64         `json:"onTheHouseAmount"`

	// Total is the collected revenue, on-the-house excluded.
	Total int64 `json:"total"`
}

// RunningTotals is the revenue collected since the last daily close.
// Every field only grows during a business day.
type RunningTotals struct {
	PaidCash       int64 `json:"paidCash"`
	PaidCard       int64 `json:"paidCard"`
	PaidQR         int64 `json:"paidQR"`
	PaidOnTheHouse int64 `json:"paidOnTheHouse"`
}

// Add books a payment into the totals.
func (t *RunningTotals) Add(p Payment) {
	t.PaidCash += p.Cash
	t.PaidCard += p.Card
	t.PaidQR += p.QR
	t.PaidOnTheHouse += p.OnTheHouse
}

// Revenue is cash + card + QR.
func (t RunningTotals) Revenue() int64 {
	return t.PaidCash + t.PaidCard + t.PaidQR
}

// PartialSelection asks to pay PayQuantity units of one open bill line.
type PartialSelection struct {
	OriginalLineID string `json:"originalLineId"`
	PayQuantity    int    `json:"payQuantity"`

	// Price is the line price the operator saw; 0 skips the staleness check.
	Price int64 `json:"price,omitempty"`
}

// TransactionRecord is the logTransaction payload sent to the backend.
type TransactionRecord struct {
	Timestamp    time.Time   `json:"timestamp"`
	CustomerName string      `json:"customerName"`
	Bill         []BillItem  `json:"bill"`
	Payment      PaymentInfo `json:"payment"`
}
