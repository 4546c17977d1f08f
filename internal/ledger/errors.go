package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for bad or missing input. Nothing was changed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced table, account, batch or menu
	// item does not exist. Nothing was changed.
	ErrNotFound = errors.New("not found")

	// ErrPersistence is returned when the snapshot could not be written. The
	// in-memory change stands and the next successful write persists it.
	ErrPersistence = errors.New("failed to persist ledger state")

	// ErrOpenTables is returned by the daily close while accounts are open.
	ErrOpenTables = errors.New("tables are still open")

	// ErrStockNotSet is returned by OpenAccount, when the stock gate is on,
	// until every food item has an initial stock.
	ErrStockNotSet = errors.New("initial stock is not set")

	// ErrAlreadySettled is returned when paying an account that is gone,
	// typically a repeated click. Callers may treat it as a no-op.
	ErrAlreadySettled = fmt.Errorf("account already settled: %w", ErrNotFound)

	// ErrNothingToUndo is informational: the pending batch is missing or empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToDispatch is returned when the pending batch is missing or has
	// no kitchen items.
	ErrNothingToDispatch = fmt.Errorf("%w: nothing to send to the kitchen", ErrValidation)
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
