package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/calculator"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/metrics"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// PartialSuffix marks the settled record split off an account that paid part of its bill.
const PartialSuffix = " (část)"

// PartialResult is the outcome of PayPartial.
type PartialResult struct {
	Record models.TransactionRecord

	// Remaining is what is still owed on the account.
	Remaining int64

	// Closed is true when the payment settled the last payable line and the
	// account was removed from its table.
	Closed bool
}

// NewPayment builds a validated payment: a known method and no negative amount.
func NewPayment(method models.PaymentMethod, cash, card, qr, onTheHouse int64) (models.Payment, error) {
	p := models.Payment{Method: method, Cash: cash, Card: card, QR: qr, OnTheHouse: onTheHouse}
	if err := validatePayment(p); err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

func validatePayment(p models.Payment) error {
	if !p.Method.Valid() {
		return validationf("unknown payment method %q", p.Method)
	}
	if p.Cash < 0 || p.Card < 0 || p.QR < 0 || p.OnTheHouse < 0 {
		return validationf("payment amounts must not be negative")
	}
	return nil
}

// PayFull settles the whole account: the totals grow by the payment, all
// batches are marked dispatched, the account moves to the paid history and a
// logTransaction event is queued. The payment must cover exactly the account
// total. A missing account returns ErrAlreadySettled without any change.
func (l *Ledger) PayFull(ctx context.Context, tableID, accountID string, p models.Payment) (models.TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.payFull(ctx, tableID, accountID, p, "full")
}

// PayOnTheHouse comps part of the bill. The comped amount is clamped to
// [0, total]; the rest is paid through method (cash, card or qr). When
// nothing is left the whole bill is recorded as on the house.
func (l *Ledger) PayOnTheHouse(ctx context.Context, tableID, accountID string, comped int64, method models.PaymentMethod) (models.TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.findAccount(tableID, accountID)
	if err != nil {
		return models.TransactionRecord{}, ErrAlreadySettled
	}
	onTheHouse, rest := calculator.OnTheHouseSplit(calculator.AccountTotal(*account), comped)

	p := models.Payment{Method: models.MethodOnTheHouse, OnTheHouse: onTheHouse}
	if rest > 0 {
		switch method {
		case models.MethodCash:
			p.Method, p.Cash = models.MethodOnTheHouseCash, rest
		case models.MethodCard:
			p.Method, p.Card = models.MethodOnTheHouseCard, rest
		case models.MethodQR:
			p.Method, p.QR = models.MethodOnTheHouseQR, rest
		default:
			return models.TransactionRecord{}, validationf("remainder of %d Kč needs cash, card or qr, got %q", rest, method)
		}
	}
	return l.payFull(ctx, tableID, accountID, p, "on_the_house")
}

// payFull is PayFull without locking. Callers hold l.mu.
func (l *Ledger) payFull(ctx context.Context, tableID, accountID string, p models.Payment, kind string) (models.TransactionRecord, error) {
	if err := validatePayment(p); err != nil {
		return models.TransactionRecord{}, err
	}
	account, err := l.findAccount(tableID, accountID)
	if err != nil {
		return models.TransactionRecord{}, ErrAlreadySettled
	}
	if total := calculator.AccountTotal(*account); p.Total() != total {
		return models.TransactionRecord{}, validationf("payment of %d Kč does not match the bill of %d Kč", p.Total(), total)
	}

	now := l.now()
	settled := *account
	settled.Batches = cloneBatches(account.Batches)
	for i := range settled.Batches {
		settled.Batches[i].Status = models.BatchDispatched
	}
	settled.LastAddedItemID = ""

	record := models.TransactionRecord{
		Timestamp:    now,
		CustomerName: settled.CustomerName,
		Bill:         settled.Items(),
		Payment:      p.Info(),
	}
	if err := l.enqueue(models.ActionLogTransaction, models.LogTransactionPayload{
		Action:          models.ActionLogTransaction,
		TransactionData: record,
	}); err != nil {
		return models.TransactionRecord{}, err
	}

	l.state.RunningTotals.Add(p)
	l.state.PaidAccounts = append(l.state.PaidAccounts, models.PaidAccount{
		Account: settled,
		Payment: p.Info(),
		PaidAt:  now,
	})
	l.removeAccount(tableID, accountID)
	metrics.ObservePayment(kind, p)

	slog.Info("Account paid",
		"table", tableID,
		"customer", settled.CustomerName,
		"method", p.Method,
		"revenue", p.Revenue(),
		"on_the_house", p.OnTheHouse,
	)
	return record, l.save(ctx)
}

// PayPartial pays the selected quantities of an account. The payment must
// cover exactly the value of the selection. The paid quantities are split
// off into a settled record named "<customer> (část)"; when less than 1 Kč
// remains, the account is closed and its zero-value leftovers join that
// record.
func (l *Ledger) PayPartial(ctx context.Context, tableID, accountID string, selections []models.PartialSelection, p models.Payment) (PartialResult, error) {
	if err := validatePayment(p); err != nil {
		return PartialResult{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.findAccount(tableID, accountID)
	if err != nil {
		return PartialResult{}, ErrAlreadySettled
	}

	d, err := calculator.Deduct(*account, selections)
	if err != nil {
		return PartialResult{}, selectionError(err)
	}
	if p.Total() != d.Total {
		return PartialResult{}, validationf("payment of %d Kč does not match the selection of %d Kč", p.Total(), d.Total)
	}

	now := l.now()
	customer := account.CustomerName
	remaining := calculator.AccountTotal(d.Remaining)
	closed := remaining < 1

	paidItems := d.Paid
	if closed {
		paidItems = append(paidItems, d.Remaining.Items()...)
	}
	settled := models.Account{
		ID:           uuid.Must(uuid.NewV7()).String(),
		CustomerName: customer + PartialSuffix,
		Batches: []models.DispatchBatch{{
			ID:     uuid.NewString(),
			Items:  paidItems,
			Status: models.BatchDispatched,
		}},
		OpenedAt: account.OpenedAt,
	}

	record := models.TransactionRecord{
		Timestamp:    now,
		CustomerName: settled.CustomerName,
		Bill:         paidItems,
		Payment:      p.Info(),
	}
	if err := l.enqueue(models.ActionLogTransaction, models.LogTransactionPayload{
		Action:          models.ActionLogTransaction,
		TransactionData: record,
	}); err != nil {
		return PartialResult{}, err
	}

	l.state.RunningTotals.Add(p)
	l.state.PaidAccounts = append(l.state.PaidAccounts, models.PaidAccount{
		Account: settled,
		Payment: p.Info(),
		PaidAt:  now,
		Partial: true,
	})
	if closed {
		l.removeAccount(tableID, accountID)
	} else {
		*account = d.Remaining
	}
	metrics.ObservePayment("partial", p)

	slog.Info("Partial payment",
		"table", tableID,
		"customer", customer,
		"paid", d.Total,
		"remaining", remaining,
		"closed", closed,
	)
	return PartialResult{Record: record, Remaining: remaining, Closed: closed}, l.save(ctx)
}

// SplitCandidates lists the lines of an account for the split-payment picker.
func (l *Ledger) SplitCandidates(tableID, accountID string) ([]calculator.SplitLine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, err := l.findAccount(tableID, accountID)
	if err != nil {
		return nil, err
	}
	return calculator.SplitLines(*account), nil
}

// SelectLines turns split line IDs picked by the operator into partial
// selections and returns their value.
func (l *Ledger) SelectLines(tableID, accountID string, ids []string) ([]models.PartialSelection, int64, error) {
	lines, err := l.SplitCandidates(tableID, accountID)
	if err != nil {
		return nil, 0, err
	}
	selections, total, err := calculator.AggregateSelections(lines, ids)
	if err != nil {
		return nil, 0, selectionError(err)
	}
	return selections, total, nil
}

func selectionError(err error) error {
	switch {
	case errors.Is(err, calculator.ErrUnknownLine):
		return notFoundf("%v", err)
	default:
		return validationf("%v", err)
	}
}
