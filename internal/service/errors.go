package service

import (
	"errors"

	"connectrpc.com/connect"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/ledger"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/outbox"
)

var errNoBackend = errors.New("no backend configured")

// toConnectError maps ledger and outbox errors to Connect codes.
func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, ledger.ErrNothingToDispatch),
		errors.Is(err, ledger.ErrNothingToUndo),
		errors.Is(err, ledger.ErrOpenTables),
		errors.Is(err, ledger.ErrStockNotSet):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, ledger.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, ledger.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, outbox.ErrBusy):
		code = connect.CodeAborted
	case errors.Is(err, outbox.ErrSync), errors.Is(err, outbox.ErrOffline):
		code = connect.CodeUnavailable
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
