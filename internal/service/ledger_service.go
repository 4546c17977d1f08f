package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/calculator"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/ledger"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// Syncer drains the outbox on demand.
type Syncer interface {
	Drain(ctx context.Context) (int, error)
	Running() bool
}

// LedgerService implements the operator RPCs of the grill terminal.
type LedgerService struct {
	ledger *ledger.Ledger
	syncer Syncer
}

// NewLedgerService creates a LedgerService. syncer may be nil when no
// backend is configured.
func NewLedgerService(l *ledger.Ledger, syncer Syncer) *LedgerService {
	return &LedgerService{ledger: l, syncer: syncer}
}

// RegisterRoutes mounts every LedgerService method on r.
func (s *LedgerService) RegisterRoutes(r chi.Router, opts []connect.HandlerOption) {
	p := func(method string) string { return Procedure(LedgerServiceName, method) }

	unary(r, p("GetState"), s.GetState, opts)
	unary(r, p("OpenAccount"), s.OpenAccount, opts)
	unary(r, p("AddLineItem"), s.AddLineItem, opts)
	unary(r, p("AddWeighedPortion"), s.AddWeighedPortion, opts)
	unary(r, p("UndoLastItem"), s.UndoLastItem, opts)
	unary(r, p("SendToDispatch"), s.SendToDispatch, opts)
	unary(r, p("ConfirmDispatch"), s.ConfirmDispatch, opts)
	unary(r, p("DispatchBoard"), s.DispatchBoard, opts)
	unary(r, p("SplitCandidates"), s.SplitCandidates, opts)
	unary(r, p("PayFull"), s.PayFull, opts)
	unary(r, p("PayPartial"), s.PayPartial, opts)
	unary(r, p("PayOnTheHouse"), s.PayOnTheHouse, opts)
	unary(r, p("SetInitialStock"), s.SetInitialStock, opts)
	unary(r, p("GetStock"), s.GetStock, opts)
	unary(r, p("SyncStatus"), s.SyncStatus, opts)
	unary(r, p("RetrySync"), s.RetrySync, opts)
}

// GetState returns the open tables, the day's totals and the menu.
func (s *LedgerService) GetState(ctx context.Context, req *connect.Request[GetStateRequest]) (*connect.Response[GetStateResponse], error) {
	state, err := s.ledger.State()
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetStateResponse{
		Tables:          state.Tables,
		Totals:          state.RunningTotals,
		Revenue:         state.RunningTotals.Revenue(),
		OpenTablesTotal: s.ledger.OpenTablesTotal(),
		Menu:            state.Menu,
		StockReady:      calculator.StockReady(state.Menu, state.InitialStock),
		Sync:            s.syncStatus(),
	}), nil
}

// OpenAccount seats a customer at a table.
func (s *LedgerService) OpenAccount(ctx context.Context, req *connect.Request[OpenAccountRequest]) (*connect.Response[OpenAccountResponse], error) {
	account, err := s.ledger.OpenAccount(ctx, req.Msg.TableID, req.Msg.CustomerName)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&OpenAccountResponse{TableID: req.Msg.TableID, Account: account}), nil
}

// AddLineItem rings up one line.
func (s *LedgerService) AddLineItem(ctx context.Context, req *connect.Request[AddLineItemRequest]) (*connect.Response[AddLineItemResponse], error) {
	item, err := s.ledger.AddLineItem(ctx, ledger.AddItemRequest{
		TableID:       req.Msg.TableID,
		AccountID:     req.Msg.AccountID,
		MenuItemID:    req.Msg.MenuItemID,
		Quantity:      req.Msg.Quantity,
		WeightGrams:   req.Msg.WeightGrams,
		Complimentary: req.Msg.Complimentary,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddLineItemResponse{Item: item}), nil
}

// AddWeighedPortion rings up a weighed portion with its free sides.
func (s *LedgerService) AddWeighedPortion(ctx context.Context, req *connect.Request[AddWeighedPortionRequest]) (*connect.Response[AddWeighedPortionResponse], error) {
	items, err := s.ledger.AddWeighedPortion(ctx, ledger.PortionRequest{
		TableID:     req.Msg.TableID,
		AccountID:   req.Msg.AccountID,
		MenuItemID:  req.Msg.MenuItemID,
		WeightGrams: req.Msg.WeightGrams,
		Pieces:      req.Msg.Pieces,
		SidePieces:  req.Msg.SidePieces,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddWeighedPortionResponse{Items: items}), nil
}

// UndoLastItem removes the most recent line of the pending batch. An empty
// batch is not an error; Removed is simply unset.
func (s *LedgerService) UndoLastItem(ctx context.Context, req *connect.Request[UndoLastItemRequest]) (*connect.Response[UndoLastItemResponse], error) {
	removed, err := s.ledger.UndoLastItem(ctx, req.Msg.TableID, req.Msg.AccountID)
	if errors.Is(err, ledger.ErrNothingToUndo) {
		return connect.NewResponse(&UndoLastItemResponse{}), nil
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UndoLastItemResponse{Removed: removed}), nil
}

// SendToDispatch sends the pending batch to the grill.
func (s *LedgerService) SendToDispatch(ctx context.Context, req *connect.Request[SendToDispatchRequest]) (*connect.Response[SendToDispatchResponse], error) {
	batch, err := s.ledger.SendToDispatch(ctx, req.Msg.TableID, req.Msg.AccountID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SendToDispatchResponse{Batch: batch}), nil
}

// ConfirmDispatch marks a ready batch as handed out.
func (s *LedgerService) ConfirmDispatch(ctx context.Context, req *connect.Request[ConfirmDispatchRequest]) (*connect.Response[ConfirmDispatchResponse], error) {
	if err := s.ledger.ConfirmDispatch(ctx, req.Msg.TableID, req.Msg.AccountID, req.Msg.BatchID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ConfirmDispatchResponse{}), nil
}

// DispatchBoard lists the ready batches, oldest first.
func (s *LedgerService) DispatchBoard(ctx context.Context, req *connect.Request[DispatchBoardRequest]) (*connect.Response[DispatchBoardResponse], error) {
	entries := s.ledger.DispatchBoard(s.ledger.Clock())
	return connect.NewResponse(&DispatchBoardResponse{Entries: boardEntries(entries)}), nil
}

// SplitCandidates lists the lines an operator can pick for a partial payment.
func (s *LedgerService) SplitCandidates(ctx context.Context, req *connect.Request[SplitCandidatesRequest]) (*connect.Response[SplitCandidatesResponse], error) {
	lines, err := s.ledger.SplitCandidates(req.Msg.TableID, req.Msg.AccountID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SplitCandidatesResponse{Lines: splitLines(lines)}), nil
}

// PayFull settles a whole account.
func (s *LedgerService) PayFull(ctx context.Context, req *connect.Request[PayFullRequest]) (*connect.Response[PaymentResponse], error) {
	p, err := req.Msg.Payment.toModel()
	if err != nil {
		return nil, toConnectError(err)
	}
	record, err := s.ledger.PayFull(ctx, req.Msg.TableID, req.Msg.AccountID, p)
	return paymentResponse(req.Msg.AccountRef, record, err)
}

// PayOnTheHouse comps part or all of an account.
func (s *LedgerService) PayOnTheHouse(ctx context.Context, req *connect.Request[PayOnTheHouseRequest]) (*connect.Response[PaymentResponse], error) {
	record, err := s.ledger.PayOnTheHouse(ctx, req.Msg.TableID, req.Msg.AccountID, req.Msg.Comped, req.Msg.Method)
	return paymentResponse(req.Msg.AccountRef, record, err)
}

func paymentResponse(ref AccountRef, record models.TransactionRecord, err error) (*connect.Response[PaymentResponse], error) {
	if errors.Is(err, ledger.ErrAlreadySettled) {
		slog.Info("Payment for settled account ignored", "table", ref.TableID, "account", ref.AccountID)
		return connect.NewResponse(&PaymentResponse{AlreadySettled: true}), nil
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PaymentResponse{Transaction: &record}), nil
}

// PayPartial pays the picked lines of an account.
func (s *LedgerService) PayPartial(ctx context.Context, req *connect.Request[PayPartialRequest]) (*connect.Response[PayPartialResponse], error) {
	p, err := req.Msg.Payment.toModel()
	if err != nil {
		return nil, toConnectError(err)
	}

	selections := req.Msg.Selections
	if len(req.Msg.Selected) > 0 {
		selections, _, err = s.ledger.SelectLines(req.Msg.TableID, req.Msg.AccountID, req.Msg.Selected)
		if err != nil {
			return nil, toConnectError(err)
		}
	}

	res, err := s.ledger.PayPartial(ctx, req.Msg.TableID, req.Msg.AccountID, selections, p)
	if errors.Is(err, ledger.ErrAlreadySettled) {
		return connect.NewResponse(&PayPartialResponse{Closed: true}), nil
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&PayPartialResponse{
		Transaction: &res.Record,
		Remaining:   res.Remaining,
		Closed:      res.Closed,
	}), nil
}

// SetInitialStock replaces the opening stock.
func (s *LedgerService) SetInitialStock(ctx context.Context, req *connect.Request[SetInitialStockRequest]) (*connect.Response[SetInitialStockResponse], error) {
	if err := s.ledger.SetInitialStock(ctx, req.Msg.Stock); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SetInitialStockResponse{Ready: s.ledger.StockReady()}), nil
}

// GetStock reports opening, sold and remaining stock per food item.
func (s *LedgerService) GetStock(ctx context.Context, req *connect.Request[GetStockRequest]) (*connect.Response[GetStockResponse], error) {
	menu := s.ledger.Menu()
	initial := s.ledger.InitialStock()
	sold := s.ledger.SoldStock()
	remaining := calculator.RemainingStock(menu, initial, sold)

	var items []StockLine
	for _, item := range calculator.StockItems(menu) {
		entry := sold[item.ID]
		items = append(items, StockLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			Unit:       item.Unit,
			Initial:    initial[item.ID],
			Sold:       entry.Sold(),
			Count:      entry.Count,
			Remaining:  remaining[item.ID],
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	return connect.NewResponse(&GetStockResponse{
		Items: items,
		Ready: calculator.StockReady(menu, initial),
	}), nil
}

// SyncStatus reports the outbox state.
func (s *LedgerService) SyncStatus(ctx context.Context, req *connect.Request[SyncStatusRequest]) (*connect.Response[SyncStatusResponse], error) {
	return connect.NewResponse(&SyncStatusResponse{Sync: s.syncStatus()}), nil
}

// RetrySync drains the outbox now.
func (s *LedgerService) RetrySync(ctx context.Context, req *connect.Request[RetrySyncRequest]) (*connect.Response[RetrySyncResponse], error) {
	if s.syncer == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errNoBackend)
	}

	sent, err := s.syncer.Drain(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RetrySyncResponse{Sent: sent, Sync: s.syncStatus()}), nil
}

func (s *LedgerService) syncStatus() SyncStatus {
	st := s.ledger.SyncStatus()
	status := SyncStatus{Pending: st.Pending, Error: st.Error}
	if s.syncer != nil {
		status.Running = s.syncer.Running()
	}
	return status
}
