package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/ledger"
	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// MenuSource fetches the authoritative catalog.
type MenuSource interface {
	FetchMenu(ctx context.Context) ([]models.MenuItem, error)
}

// AdminService implements the RPCs that need an admin token.
type AdminService struct {
	ledger *ledger.Ledger
	menu   MenuSource
}

// NewAdminService creates an AdminService. menu may be nil when no backend
// is configured.
func NewAdminService(l *ledger.Ledger, menu MenuSource) *AdminService {
	return &AdminService{ledger: l, menu: menu}
}

// RegisterRoutes mounts every AdminService method on r. opts must carry the
// admin interceptor.
func (s *AdminService) RegisterRoutes(r chi.Router, opts []connect.HandlerOption) {
	p := func(method string) string { return Procedure(AdminServiceName, method) }

	unary(r, p("UpsertMenuItem"), s.UpsertMenuItem, opts)
	unary(r, p("DeleteMenuItem"), s.DeleteMenuItem, opts)
	unary(r, p("RefreshMenu"), s.RefreshMenu, opts)
	unary(r, p("DailyClose"), s.DailyClose, opts)
	unary(r, p("ResetDay"), s.ResetDay, opts)
}

// UpsertMenuItem adds or replaces one catalog item.
func (s *AdminService) UpsertMenuItem(ctx context.Context, req *connect.Request[UpsertMenuItemRequest]) (*connect.Response[UpsertMenuItemResponse], error) {
	item, err := s.ledger.UpsertMenuItem(ctx, req.Msg.Item)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UpsertMenuItemResponse{Item: item}), nil
}

// DeleteMenuItem removes a catalog item.
func (s *AdminService) DeleteMenuItem(ctx context.Context, req *connect.Request[DeleteMenuItemRequest]) (*connect.Response[DeleteMenuItemResponse], error) {
	if err := s.ledger.DeleteMenuItem(ctx, req.Msg.ID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteMenuItemResponse{}), nil
}

// RefreshMenu replaces the catalog with the backend's. On any failure the
// current catalog stays.
func (s *AdminService) RefreshMenu(ctx context.Context, req *connect.Request[RefreshMenuRequest]) (*connect.Response[RefreshMenuResponse], error) {
	if s.menu == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errNoBackend)
	}

	items, err := s.menu.FetchMenu(ctx)
	if err != nil {
		slog.Warn("Menu refresh failed", "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
	if err := s.ledger.ReplaceMenu(ctx, items); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RefreshMenuResponse{Menu: s.ledger.Menu()}), nil
}

// DailyClose reports the day to the backend and starts a new one.
func (s *AdminService) DailyClose(ctx context.Context, req *connect.Request[DailyCloseRequest]) (*connect.Response[DailyCloseResponse], error) {
	payload, err := s.ledger.PerformDailyClose(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DailyCloseResponse{Close: payload}), nil
}

// ResetDay discards the day without reporting it.
func (s *AdminService) ResetDay(ctx context.Context, req *connect.Request[ResetDayRequest]) (*connect.Response[ResetDayResponse], error) {
	if err := s.ledger.ResetDay(ctx, req.Msg.Full); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ResetDayResponse{}), nil
}
