package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a lookup by id or code matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrParse is returned when imported or restored data cannot be decoded.
	ErrParse = errors.New("unparseable data")
)

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError is returned when a commit would drive stock negative.
// No stock is written when it is returned.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// DuplicateKeyError reports a uniqueness violation (customer phone, product code,
// username) detected before any write.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Field, e.Value)
}

// CreditLimitError is advisory: callers may choose to warn instead of block.
type CreditLimitError struct {
	CustomerID string
	Due        decimal.Decimal
	Limit      decimal.Decimal
}

func (e *CreditLimitError) Error() string {
	return fmt.Sprintf("customer %s due %s exceeds credit limit %s",
		e.CustomerID, e.Due.StringFixed(2), e.Limit.StringFixed(2))
}
