package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FjeldMats/FinanceLog/internal/core"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// TransactionService orchestrates owner-scoped transaction CRUD. Mutations
// are persisted first, then announced on the event queue best-effort: a
// publish failure is logged but never fails the request.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
}

// NewTransactionService wires the service. publisher may be nil when the
// queue is not configured.
func NewTransactionService(store TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

// Create validates and inserts a transaction owned by userID.
func (s *TransactionService) Create(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	t.ID = 0
	t.UserID = userID
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, EventCreated, created)
	return created, nil
}

// Update applies a partial patch to an owned transaction. Rows owned by
// someone else surface core.ErrNotFound, never a permission error.
func (s *TransactionService) Update(ctx context.Context, userID, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	if err := patch.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.Update(ctx, userID, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, EventUpdated, updated)
	return updated, nil
}

// Delete removes an owned transaction, with the same not-found semantics as
// Update.
func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	t, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.publish(ctx, EventDeleted, t)
	return nil
}

// List returns the user's transactions, optionally filtered to a calendar
// year/month (0 = no filter).
func (s *TransactionService) List(ctx context.Context, userID int64, year, month int) ([]core.Transaction, error) {
	txs, err := s.store.List(ctx, userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) publish(ctx context.Context, kind string, t core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, kind, t); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"kind", kind,
			"transaction_id", t.ID,
			"user_id", t.UserID,
			"error", err)
	}
}
