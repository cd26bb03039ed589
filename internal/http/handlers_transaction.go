package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FjeldMats/FinanceLog/internal/core"
)

// apiTransaction is the wire form of a transaction, matching what the
// frontend table expects.
type apiTransaction struct {
	ID              int64       `json:"id"`
	TransactionDate string      `json:"transaction_date"`
	Category        string      `json:"category"`
	Subcategory     string      `json:"subcategory"`
	Description     string      `json:"description"`
	Amount          json.Number `json:"amount"`
}

func toAPITransaction(t core.Transaction) apiTransaction {
	return apiTransaction{
		ID:              t.ID,
		TransactionDate: t.Date.Format("2006-01-02"),
		Category:        t.Category,
		Subcategory:     t.Subcategory,
		Description:     t.Description,
		Amount:          json.Number(t.Amount.String()),
	}
}

type createTransactionRequest struct {
	TransactionDate string           `json:"transaction_date"`
	Category        string           `json:"category"`
	Subcategory     string           `json:"subcategory"`
	Description     string           `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
}

type updateTransactionRequest struct {
	TransactionDate *string          `json:"transaction_date"`
	Category        *string          `json:"category"`
	Subcategory     *string          `json:"subcategory"`
	Description     *string          `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	txs, err := s.transactions.List(r.Context(), userID, year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]apiTransaction, len(txs))
	for i, t := range txs {
		out[i] = toAPITransaction(t)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Body must be valid JSON")
		return
	}

	date, err := parseDate(req.TransactionDate)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Validation failed", "transaction_date must be YYYY-MM-DD")
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusUnprocessableEntity, "Validation failed", "amount is required")
		return
	}

	t := core.Transaction{
		Date:        date,
		Category:    sanitizeInput(req.Category),
		Subcategory: sanitizeInput(req.Subcategory),
		Description: sanitizeInput(req.Description),
		Amount:      *req.Amount,
	}

	created, err := s.transactions.Create(r.Context(), userID, t)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
			return
		}
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAPITransaction(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "transaction id must be an integer")
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "Body must be valid JSON")
		return
	}

	patch := core.TransactionPatch{
		Amount: req.Amount,
	}
	if req.TransactionDate != nil {
		date, err := parseDate(*req.TransactionDate)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Validation failed", "transaction_date must be YYYY-MM-DD")
			return
		}
		patch.Date = &date
	}
	if req.Category != nil {
		c := sanitizeInput(*req.Category)
		patch.Category = &c
	}
	if req.Subcategory != nil {
		sc := sanitizeInput(*req.Subcategory)
		patch.Subcategory = &sc
	}
	if req.Description != nil {
		d := sanitizeInput(*req.Description)
		patch.Description = &d
	}

	updated, err := s.transactions.Update(r.Context(), userID, id, patch)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
			return
		}
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAPITransaction(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "transaction id must be an integer")
		return
	}

	if err := s.transactions.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEmptyPatch) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrCategoryTooLong) ||
		errors.Is(err, core.ErrDescriptionTooLong)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
