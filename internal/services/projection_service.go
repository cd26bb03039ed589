package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FjeldMats/FinanceLog/internal/core"
)

// ProjectionService assembles spending projections for one (user, category)
// pair: load history, aggregate by month, split off an in-progress current
// month, fit the seasonal model and merge the pieces. The pipeline is
// read-only and recomputed on every call; freshness over caching.
type ProjectionService struct {
	store      TransactionStore
	forecaster Forecaster
	now        func() time.Time
}

// NewProjectionService wires the assembler. now is injectable so the
// current-month policy can be tested without wall-clock time; nil means
// time.Now.
func NewProjectionService(store TransactionStore, forecaster Forecaster, now func() time.Time) *ProjectionService {
	if now == nil {
		now = time.Now
	}
	return &ProjectionService{store: store, forecaster: forecaster, now: now}
}

// Projections computes the projection result for the user's category.
// Data-sufficiency failures (fewer than 24 transactions, fewer than 12
// distinct months) are returned before the forecaster is ever invoked.
func (s *ProjectionService) Projections(ctx context.Context, userID int64, category string) (*core.ProjectionResult, error) {
	txs, err := s.store.ListByUserAndCategory(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(txs) < core.MinTransactions {
		return nil, &core.InsufficientDataError{Found: len(txs), Required: core.MinTransactions}
	}

	series := core.AggregateMonthly(txs)
	if len(series) < core.MinMonths {
		return nil, &core.InsufficientMonthsError{Found: len(series), Required: core.MinMonths}
	}

	split := core.SplitCurrentMonth(series, s.now())

	training := make([]float64, len(split.Training))
	for i, p := range split.Training {
		training[i] = p.Total.InexactFloat64()
	}

	res, err := s.forecaster.Forecast(training, split.Horizon)
	if err != nil {
		return nil, fmt.Errorf("forecast %q for user %d: %w", category, userID, err)
	}

	slog.DebugContext(ctx, "Forecast fitted",
		"user_id", userID,
		"category", category,
		"training_months", len(training),
		"horizon", split.Horizon,
		"alpha", res.Alpha,
		"beta", res.Beta,
		"gamma", res.Gamma,
		"residual_std", res.ResidualStd)

	projected := make([]core.ForecastPoint, len(res.Points))
	for i, p := range res.Points {
		projected[i] = core.ForecastPoint{
			Period: split.Start.AddMonths(i),
			Value:  p.Value,
			Lower:  p.Lower,
			Upper:  p.Upper,
		}
	}

	return &core.ProjectionResult{
		Historical:         split.Training,
		Projected:          projected,
		CurrentMonthActual: split.Partial,
	}, nil
}
