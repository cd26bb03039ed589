package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/FjeldMats/FinanceLog/internal/core"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, errName, message string) {
	writeJSON(w, status, errorResponse{Error: errName, Message: message})
}

// writeServiceError translates use-case errors into the API's taxonomy:
// sufficiency failures are actionable 400s, ownership misses are uniform
// 404s, fit failures are logged and answered generically.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficientData *core.InsufficientDataError
	if errors.As(err, &insufficientData) {
		writeError(w, http.StatusBadRequest, "Insufficient data", insufficientData.Error())
		return
	}

	var insufficientMonths *core.InsufficientMonthsError
	if errors.As(err, &insufficientMonths) {
		writeError(w, http.StatusBadRequest, "Insufficient monthly data", insufficientMonths.Error())
		return
	}

	if errors.Is(err, core.ErrFitFailed) {
		slog.ErrorContext(r.Context(), "Forecast fit failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Projection failed"})
		return
	}

	if errors.Is(err, core.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Transaction not found"})
		return
	}

	slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}
