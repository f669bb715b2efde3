package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billingpro/internal/domain"
	"billingpro/internal/store/memkv"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(memkv.New())
}

func product(id, code string, stock int) domain.Product {
	now := time.Now().UTC()
	return domain.Product{
		ID:        id,
		Code:      code,
		Name:      "Product " + code,
		Price:     decimal.NewFromInt(10),
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestProductDuplicateCode(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Products.Create(ctx, product("p1", "PRD-0001", 5)))
	err := s.Products.Create(ctx, product("p2", "prd-0001", 5))

	var dup *domain.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "code", dup.Field)
}

func TestAdjustStockAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Products.Create(ctx, product("p1", "PRD-0001", 5)))
	require.NoError(t, s.Products.Create(ctx, product("p2", "PRD-0002", 3)))

	err := s.Products.AdjustStock(ctx, map[string]int{"p1": -2, "p2": -4})
	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf)
	assert.Equal(t, "p2", insuf.ProductID)
	assert.Equal(t, 4, insuf.Requested)
	assert.Equal(t, 3, insuf.Available)

	// The failed batch must not have touched p1 either.
	p1, err := s.Products.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p1.Stock)
}

func TestAdjustStockAppliesDeltas(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Products.Create(ctx, product("p1", "PRD-0001", 5)))
	require.NoError(t, s.Products.AdjustStock(ctx, map[string]int{"p1": -5}))

	p1, err := s.Products.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p1.Stock)
}

func TestCustomerDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	c := domain.Customer{ID: "CUST-0001", Name: "Asha", Phone: "555-0101"}
	require.NoError(t, s.Customers.Create(ctx, c))

	err := s.Customers.Create(ctx, domain.Customer{ID: "CUST-0002", Name: "Ben", Phone: "555-0101"})
	var dup *domain.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "phone", dup.Field)

	// Updating an unrelated customer onto a taken phone is also rejected.
	require.NoError(t, s.Customers.Create(ctx, domain.Customer{ID: "CUST-0002", Name: "Ben", Phone: "555-0102"}))
	ben, err := s.Customers.Get(ctx, "CUST-0002")
	require.NoError(t, err)
	ben.Phone = "555-0101"
	require.ErrorAs(t, s.Customers.Update(ctx, ben), &dup)
}

func TestInvoiceNumberSequence(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	n1, err := s.Invoices.NextNumber(ctx)
	require.NoError(t, err)
	n2, err := s.Invoices.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", n1)
	assert.Equal(t, "INV-000002", n2)
}

func TestInvoiceNumberSeededFromExisting(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Invoices.Create(ctx, domain.Invoice{ID: "inv_a", Number: "INV-000041"}))

	n, err := s.Invoices.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-000042", n)
}

func TestInvoiceNumberSurvivesDeletion(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	n1, err := s.Invoices.NextNumber(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Invoices.Create(ctx, domain.Invoice{ID: "inv_a", Number: n1}))
	require.NoError(t, s.Invoices.Delete(ctx, "inv_a"))

	n2, err := s.Invoices.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-000002", n2, "deleted numbers must not be reissued")
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Products.Get(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = s.Customers.GetByPhone(ctx, "555-9999")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = s.Invoices.Get(ctx, "INV-999999")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProductNextCode(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Products.Create(ctx, product("p1", "PRD-0007", 1)))

	code, err := s.Products.NextCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PRD-0008", code)
}

func TestGetByCodeMatchesBarcode(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	p := product("p1", "PRD-0001", 1)
	p.Barcode = "4006381333931"
	require.NoError(t, s.Products.Create(ctx, p))

	got, err := s.Products.GetByCode(ctx, "4006381333931")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
}
