package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxCategoryLength    = 255
	MaxDescriptionLength = 500
)

type (
	// Transaction is a single dated monetary record owned by exactly one user.
	// The owner never changes after creation; the amount keeps the sign it was
	// entered with, projections use its magnitude.
	Transaction struct {
		ID          int64
		UserID      int64
		Date        time.Time // calendar day, UTC midnight
		Category    string
		Subcategory string
		Description string
		Amount      decimal.Decimal
	}

	// TransactionPatch carries a partial update. Nil fields are left untouched.
	TransactionPatch struct {
		Date        *time.Time
		Category    *string
		Subcategory *string
		Description *string
		Amount      *decimal.Decimal
	}
)

var (
	ErrEmptyPatch         = errors.New("patch has no fields")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = errors.New("category too long")
	ErrDescriptionTooLong = errors.New("description too long")
)

// NewDate builds the UTC-midnight day used for transaction dates.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	if len(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

func (p TransactionPatch) Validate() error {
	if p.Date == nil && p.Category == nil && p.Subcategory == nil &&
		p.Description == nil && p.Amount == nil {
		return ErrEmptyPatch
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrInvalidDate
	}
	if p.Category != nil {
		if strings.TrimSpace(*p.Category) == "" {
			return ErrEmptyCategory
		}
		if len(*p.Category) > MaxCategoryLength {
			return ErrCategoryTooLong
		}
	}
	if p.Description != nil && len(*p.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// Apply returns a copy of t with the patch fields overlaid. ID and UserID are
// never patched.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Subcategory != nil {
		t.Subcategory = *p.Subcategory
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	return t
}
