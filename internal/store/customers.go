package store

import (
	"context"
	"fmt"

	"billingpro/internal/domain"
)

// CustomerRepository persists customer records. Phone numbers are unique
// across the collection; they double as the reconciliation key for imports.
type CustomerRepository struct {
	kv KV
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	return loadList[domain.Customer](ctx, r.kv, keyCustomers)
}

func (r *CustomerRepository) Get(ctx context.Context, id string) (domain.Customer, error) {
	items, err := r.List(ctx)
	if err != nil {
		return domain.Customer{}, err
	}
	for _, c := range items {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Customer{}, fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (domain.Customer, error) {
	items, err := r.List(ctx)
	if err != nil {
		return domain.Customer{}, err
	}
	for _, c := range items {
		if c.Phone == phone {
			return c, nil
		}
	}
	return domain.Customer{}, fmt.Errorf("customer phone %s: %w", phone, domain.ErrNotFound)
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range items {
		if c.Phone == customer.Phone {
			return &domain.DuplicateKeyError{Field: "phone", Value: customer.Phone}
		}
	}
	items = append(items, customer)
	return saveList(ctx, r.kv, keyCustomers, items)
}

func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i, c := range items {
		if c.ID == customer.ID {
			if c.Phone != customer.Phone {
				for _, other := range items {
					if other.ID != customer.ID && other.Phone == customer.Phone {
						return &domain.DuplicateKeyError{Field: "phone", Value: customer.Phone}
					}
				}
			}
			items[i] = customer
			return saveList(ctx, r.kv, keyCustomers, items)
		}
	}
	return fmt.Errorf("customer %s: %w", customer.ID, domain.ErrNotFound)
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i, c := range items {
		if c.ID == id {
			items = append(items[:i], items[i+1:]...)
			return saveList(ctx, r.kv, keyCustomers, items)
		}
	}
	return fmt.Errorf("customer %s: %w", id, domain.ErrNotFound)
}

func (r *CustomerRepository) ReplaceAll(ctx context.Context, items []domain.Customer) error {
	return saveList(ctx, r.kv, keyCustomers, items)
}

// NextID issues the next CUST-%04d id, seeded from the highest existing one.
func (r *CustomerRepository) NextID(ctx context.Context) (string, error) {
	n, err := nextSeq(ctx, r.kv, keySeqCustomer, func() (int64, error) {
		items, err := r.List(ctx)
		if err != nil {
			return 0, err
		}
		ids := make([]string, 0, len(items))
		for _, c := range items {
			ids = append(ids, c.ID)
		}
		return maxCodeSuffix(ids, "CUST-"), nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CUST-%04d", n), nil
}
