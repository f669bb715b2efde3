package store

import (
	"context"
	"fmt"

	"billingpro/internal/domain"
)

type PaymentRepository struct {
	kv KV
}

func (r *PaymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	return loadList[domain.Payment](ctx, r.kv, keyPayments)
}

func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Payment
	for _, p := range items {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (domain.Payment, error) {
	items, err := r.List(ctx)
	if err != nil {
		return domain.Payment{}, err
	}
	for _, p := range items {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Payment{}, fmt.Errorf("payment %s: %w", id, domain.ErrNotFound)
}

func (r *PaymentRepository) Create(ctx context.Context, payment domain.Payment) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	items = append(items, payment)
	return saveList(ctx, r.kv, keyPayments, items)
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i, p := range items {
		if p.ID == id {
			items = append(items[:i], items[i+1:]...)
			return saveList(ctx, r.kv, keyPayments, items)
		}
	}
	return fmt.Errorf("payment %s: %w", id, domain.ErrNotFound)
}

// DeleteByInvoice removes every payment linked to the invoice. Deleting
// nothing is not an error; most invoices have no linked payment.
func (r *PaymentRepository) DeleteByInvoice(ctx context.Context, invoiceID string) error {
	if invoiceID == "" {
		return nil
	}
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, p := range items {
		if p.InvoiceID != invoiceID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return saveList(ctx, r.kv, keyPayments, kept)
}

func (r *PaymentRepository) ReplaceAll(ctx context.Context, items []domain.Payment) error {
	return saveList(ctx, r.kv, keyPayments, items)
}
