package core

import (
	"errors"
	"fmt"
)

// Canonical data-sufficiency thresholds for projections. The raw minimum is
// checked before aggregation, the month minimum after.
const (
	MinTransactions = 24
	MinMonths       = 12
)

var (
	// ErrNotFound covers both a genuinely absent row and a row owned by a
	// different user, so existence is never revealed across owners.
	ErrNotFound = errors.New("transaction not found")

	// ErrFitFailed marks a numerical failure of the forecast model. It is not
	// user-correctable and must never leak model internals to the caller.
	ErrFitFailed = errors.New("forecast fit failed")
)

// InsufficientDataError is returned when a category has fewer raw
// transactions than projections require.
type InsufficientDataError struct {
	Found    int
	Required int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("projections require at least %d transactions, found %d", e.Required, e.Found)
}

// InsufficientMonthsError is returned when the aggregated series covers too
// few distinct months for seasonal fitting, even with enough raw rows.
type InsufficientMonthsError struct {
	Found    int
	Required int
}

func (e *InsufficientMonthsError) Error() string {
	return fmt.Sprintf("projections require data in at least %d distinct months, found %d", e.Required, e.Found)
}
