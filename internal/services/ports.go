// Package services holds the use-case layer: transaction CRUD orchestration
// and the spending-projection pipeline. Collaborators are consumed through
// the narrow interfaces below so tests can substitute fakes and clocks.
package services

import (
	"context"

	"github.com/FjeldMats/FinanceLog/internal/core"
	"github.com/FjeldMats/FinanceLog/internal/forecast"
)

// TransactionStore is the owner-scoped persistence contract. Mutations on
// rows the user does not own must fail with core.ErrNotFound.
type TransactionStore interface {
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
	Get(ctx context.Context, userID, id int64) (core.Transaction, error)
	Update(ctx context.Context, userID, id int64, patch core.TransactionPatch) (core.Transaction, error)
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64, year, month int) ([]core.Transaction, error)
	ListByUserAndCategory(ctx context.Context, userID int64, category string) ([]core.Transaction, error)
}

// EventPublisher fans transaction mutations out to the audit queue. Publish
// failures are logged, never surfaced to the API caller.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, kind string, t core.Transaction) error
}

// Forecaster produces point forecasts with uncertainty bands from a monthly
// training series.
type Forecaster interface {
	Forecast(series []float64, horizon int) (*forecast.Result, error)
}
