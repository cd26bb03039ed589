package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyPoint is the absolute spending total for one calendar month. Derived,
// never persisted.
type MonthlyPoint struct {
	Period Period
	Total  decimal.Decimal
}

// ForecastPoint is a point forecast for a future month with an 80% band.
// Invariant: 0 <= Lower <= Value <= Upper.
type ForecastPoint struct {
	Period Period
	Value  float64
	Lower  float64
	Upper  float64
}

// ProjectionResult bundles the training history, the forecast horizon and the
// current month's partial actual (nil when the latest data month is complete).
type ProjectionResult struct {
	Historical         []MonthlyPoint
	Projected          []ForecastPoint
	CurrentMonthActual *decimal.Decimal
}

// AggregateMonthly groups transactions by the calendar month of their date and
// sums absolute amounts per group. The result is sorted ascending by period,
// one point per month that actually has data; months without transactions are
// never synthesized as zeros. Input order is irrelevant.
func AggregateMonthly(txs []Transaction) []MonthlyPoint {
	totals := make(map[Period]decimal.Decimal, len(txs))
	for _, t := range txs {
		p := PeriodOf(t.Date)
		totals[p] = totals[p].Add(t.Amount.Abs())
	}

	points := make([]MonthlyPoint, 0, len(totals))
	for p, total := range totals {
		points = append(points, MonthlyPoint{Period: p, Total: total})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Period.Before(points[j].Period)
	})
	return points
}

// MonthlySplit is the outcome of the current-month policy: the fitting window,
// the in-progress month's partial total (nil when the series is complete), the
// forecast horizon and the first projected period.
type MonthlySplit struct {
	Training []MonthlyPoint
	Partial  *decimal.Decimal
	Horizon  int
	Start    Period
}

// SplitCurrentMonth decides whether the last point of the series is an
// in-progress month. If its period equals now's period the point is dropped
// from training, its total becomes the partial actual, and the horizon grows
// to 13 so the current month is re-forecast in full alongside the next 12.
// Otherwise the whole series trains a plain 12-month horizon starting the
// month after the last data point.
func SplitCurrentMonth(series []MonthlyPoint, now time.Time) MonthlySplit {
	if len(series) == 0 {
		return MonthlySplit{Horizon: 12, Start: PeriodOf(now)}
	}

	last := series[len(series)-1]
	if last.Period == PeriodOf(now) {
		partial := last.Total
		return MonthlySplit{
			Training: series[:len(series)-1],
			Partial:  &partial,
			Horizon:  13,
			Start:    last.Period,
		}
	}
	return MonthlySplit{
		Training: series,
		Horizon:  12,
		Start:    last.Period.Next(),
	}
}
