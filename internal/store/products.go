package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"billingpro/internal/domain"
)

// ProductRepository persists the product catalogue and owns the stock
// counters. All stock mutation goes through AdjustStock so an invoice's
// decrements land in one write.
type ProductRepository struct {
	kv KV
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	return loadList[domain.Product](ctx, r.kv, keyProducts)
}

func (r *ProductRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	items, err := r.List(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range items {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

// GetByCode also matches barcodes, mirroring how the register looks items up.
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (domain.Product, error) {
	items, err := r.List(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range items {
		if p.Code == code || (p.Barcode != "" && p.Barcode == code) {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product code %s: %w", code, domain.ErrNotFound)
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range items {
		if strings.EqualFold(p.Code, product.Code) {
			return &domain.DuplicateKeyError{Field: "code", Value: product.Code}
		}
	}
	items = append(items, product)
	return saveList(ctx, r.kv, keyProducts, items)
}

func (r *ProductRepository) Update(ctx context.Context, product domain.Product) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i, p := range items {
		if p.ID == product.ID {
			if !strings.EqualFold(p.Code, product.Code) {
				for _, other := range items {
					if other.ID != product.ID && strings.EqualFold(other.Code, product.Code) {
						return &domain.DuplicateKeyError{Field: "code", Value: product.Code}
					}
				}
			}
			items[i] = product
			return saveList(ctx, r.kv, keyProducts, items)
		}
	}
	return fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i, p := range items {
		if p.ID == id {
			items = append(items[:i], items[i+1:]...)
			return saveList(ctx, r.kv, keyProducts, items)
		}
	}
	return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

// AdjustStock applies signed deltas to the named products in one write.
// Every delta is verified first; if any product is missing or would end up
// below zero, nothing is written.
func (r *ProductRepository) AdjustStock(ctx context.Context, deltas map[string]int) error {
	if len(deltas) == 0 {
		return nil
	}
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	index := make(map[string]int, len(items))
	for i, p := range items {
		index[p.ID] = i
	}
	for id, delta := range deltas {
		i, ok := index[id]
		if !ok {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		if next := items[i].Stock + delta; next < 0 {
			return &domain.InsufficientStockError{
				ProductID: id,
				Requested: -delta,
				Available: items[i].Stock,
			}
		}
	}
	for id, delta := range deltas {
		items[index[id]].Stock += delta
	}
	return saveList(ctx, r.kv, keyProducts, items)
}

func (r *ProductRepository) ReplaceAll(ctx context.Context, items []domain.Product) error {
	return saveList(ctx, r.kv, keyProducts, items)
}

// NextCode issues the next PRD-%04d code. The sequence is seeded from the
// highest code already in the catalogue so imported data keeps its numbering.
func (r *ProductRepository) NextCode(ctx context.Context) (string, error) {
	n, err := nextSeq(ctx, r.kv, keySeqProduct, func() (int64, error) {
		items, err := r.List(ctx)
		if err != nil {
			return 0, err
		}
		return maxCodeSuffix(codesOf(items), "PRD-"), nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PRD-%04d", n), nil
}

func codesOf(items []domain.Product) []string {
	codes := make([]string, 0, len(items))
	for _, p := range items {
		codes = append(codes, p.Code)
	}
	return codes
}

func maxCodeSuffix(codes []string, prefix string) int64 {
	var max int64
	for _, code := range codes {
		rest, ok := strings.CutPrefix(code, prefix)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(rest, 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return max
}
