package ledger

import (
	"context"

	"billingpro/internal/domain"
)

// StockWriter is the slice of the product repository the stock ledger needs.
type StockWriter interface {
	AdjustStock(ctx context.Context, deltas map[string]int) error
}

// StockLedger turns invoice item lists into atomic stock adjustments.
// The repository verifies every delta before writing, so a rejected batch
// leaves all counters untouched.
type StockLedger struct {
	products StockWriter
}

func NewStockLedger(products StockWriter) *StockLedger {
	return &StockLedger{products: products}
}

// Commit decrements stock for every line of a new invoice.
func (l *StockLedger) Commit(ctx context.Context, items []domain.InvoiceItem) error {
	return l.products.AdjustStock(ctx, aggregate(items, -1))
}

// Reverse adds the quantities back, used on delete and cancel.
func (l *StockLedger) Reverse(ctx context.Context, items []domain.InvoiceItem) error {
	return l.products.AdjustStock(ctx, aggregate(items, +1))
}

// Rebase moves stock from an invoice's old item list to its new one in a
// single adjustment: the old quantities are returned and the new ones taken
// in the same batch. If the net result would drive any product negative the
// whole edit is rejected and stock stays where it was.
func (l *StockLedger) Rebase(ctx context.Context, old, updated []domain.InvoiceItem) error {
	deltas := aggregate(old, +1)
	for id, d := range aggregate(updated, -1) {
		deltas[id] += d
	}
	for id, d := range deltas {
		if d == 0 {
			delete(deltas, id)
		}
	}
	return l.products.AdjustStock(ctx, deltas)
}

// aggregate folds duplicate product lines into one signed delta per product.
func aggregate(items []domain.InvoiceItem, sign int) map[string]int {
	deltas := make(map[string]int, len(items))
	for _, item := range items {
		deltas[item.ProductID] += sign * item.Quantity
	}
	return deltas
}
