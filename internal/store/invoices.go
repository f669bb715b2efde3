package store

import (
	"context"
	"fmt"

	"billingpro/internal/domain"
)

// InvoiceRepository persists invoices and owns the INV-%06d number sequence.
// Numbers are never reused, even after an invoice is deleted.
type InvoiceRepository struct {
	kv KV
}

func (r *InvoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	return loadList[domain.Invoice](ctx, r.kv, keyInvoices)
}

func (r *InvoiceRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Invoice
	for _, inv := range items {
		if inv.CustomerID == customerID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (domain.Invoice, error) {
	items, err := r.List(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	for _, inv := range items {
		if inv.ID == id || inv.Number == id {
			return inv, nil
		}
	}
	return domain.Invoice{}, fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice domain.Invoice) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	items = append(items, invoice)
	return saveList(ctx, r.kv, keyInvoices, items)
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice domain.Invoice) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i, inv := range items {
		if inv.ID == invoice.ID {
			items[i] = invoice
			return saveList(ctx, r.kv, keyInvoices, items)
		}
	}
	return fmt.Errorf("invoice %s: %w", invoice.ID, domain.ErrNotFound)
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i, inv := range items {
		if inv.ID == id {
			items = append(items[:i], items[i+1:]...)
			return saveList(ctx, r.kv, keyInvoices, items)
		}
	}
	return fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
}

func (r *InvoiceRepository) ReplaceAll(ctx context.Context, items []domain.Invoice) error {
	return saveList(ctx, r.kv, keyInvoices, items)
}

// NextNumber issues the next invoice number. On first use the sequence is
// seeded from the highest number already in the collection, so restored data
// continues counting where it left off.
func (r *InvoiceRepository) NextNumber(ctx context.Context) (string, error) {
	n, err := nextSeq(ctx, r.kv, keySeqInvoice, func() (int64, error) {
		items, err := r.List(ctx)
		if err != nil {
			return 0, err
		}
		numbers := make([]string, 0, len(items))
		for _, inv := range items {
			numbers = append(numbers, inv.Number)
		}
		return maxCodeSuffix(numbers, "INV-"), nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%06d", n), nil
}
