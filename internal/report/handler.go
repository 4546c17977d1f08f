package report

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/models"
)

// ClosePreviewer builds the close of the running day without changing it.
type ClosePreviewer interface {
	PreviewClose(now time.Time) models.ClosePayload
	Clock() time.Time
}

// Handler serves the daily-close export.
type Handler struct {
	Ledger ClosePreviewer
}

func (h Handler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/daily-close", h.dailyClose)
}

func (h Handler) dailyClose(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "xlsx"
	}

	now := h.Ledger.Clock()
	payload := h.Ledger.PreviewClose(now)
	filename := "uzaverka_" + now.Format("20060102")

	switch format {
	case "csv":
		data, err := CSV(payload)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := XLSX(payload)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": message,
	})
}
