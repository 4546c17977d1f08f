package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/ledger"
)

// HealthChecker is implemented by every state store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SyncReporter exposes the outbox state.
type SyncReporter interface {
	SyncStatus() ledger.SyncStatus
}

// HealthHandler exposes a readiness probe.
type HealthHandler struct {
	Store HealthChecker
	Sync  SyncReporter
}

func (h HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

type healthData struct {
	Store       string `json:"store"`
	SyncPending int    `json:"syncPending"`
	SyncError   bool   `json:"syncError"`
}

func (h HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	data := healthData{Store: "ok"}
	if h.Sync != nil {
		st := h.Sync.SyncStatus()
		data.SyncPending, data.SyncError = st.Pending, st.Error
	}
	if err := h.Store.Health(ctx); err != nil {
		data.Store = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, data)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	resp := apiResponse{Status: "ok", Data: payload}
	if status >= 400 {
		resp.Status = "error"
		resp.Error = &apiError{Code: status, Status: http.StatusText(status)}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
