package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"billingpro/internal/domain"
	"billingpro/internal/store"
	"billingpro/internal/store/memkv"
)

func seedProducts(t *testing.T, stocks map[string]int) *store.Store {
	t.Helper()
	s := store.New(memkv.New())
	for id, stock := range stocks {
		err := s.Products.Create(context.Background(), domain.Product{
			ID:    id,
			Code:  "C-" + id,
			Name:  id,
			Price: decimal.NewFromInt(10),
			Stock: stock,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	return s
}

func stockOf(t *testing.T, s *store.Store, id string) int {
	t.Helper()
	p, err := s.Products.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return p.Stock
}

func TestCommitRejectsInsufficientStock(t *testing.T) {
	s := seedProducts(t, map[string]int{"p1": 5})
	l := NewStockLedger(s.Products)

	err := l.Commit(context.Background(), []domain.InvoiceItem{
		{ProductID: "p1", Quantity: 6},
	})
	var insuf *domain.InsufficientStockError
	if !errors.As(err, &insuf) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insuf.Available != 5 || insuf.Requested != 6 {
		t.Fatalf("unexpected error detail: %+v", insuf)
	}
	if got := stockOf(t, s, "p1"); got != 5 {
		t.Fatalf("stock = %d, want 5 (unchanged)", got)
	}
}

func TestCommitAggregatesDuplicateLines(t *testing.T) {
	s := seedProducts(t, map[string]int{"p1": 5})
	l := NewStockLedger(s.Products)

	err := l.Commit(context.Background(), []domain.InvoiceItem{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p1", Quantity: 3},
	})
	if !errors.As(err, new(*domain.InsufficientStockError)) {
		t.Fatalf("expected InsufficientStockError for aggregated quantity, got %v", err)
	}
}

func TestCommitThenReverseRoundTrips(t *testing.T) {
	s := seedProducts(t, map[string]int{"p1": 5, "p2": 8})
	l := NewStockLedger(s.Products)
	items := []domain.InvoiceItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	}

	if err := l.Commit(context.Background(), items); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := stockOf(t, s, "p1"); got != 3 {
		t.Fatalf("p1 stock = %d, want 3", got)
	}
	if err := l.Reverse(context.Background(), items); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if got := stockOf(t, s, "p1"); got != 5 {
		t.Fatalf("p1 stock = %d, want 5", got)
	}
	if got := stockOf(t, s, "p2"); got != 8 {
		t.Fatalf("p2 stock = %d, want 8", got)
	}
}

func TestRebaseAppliesNetChange(t *testing.T) {
	s := seedProducts(t, map[string]int{"p1": 3, "p2": 4})
	l := NewStockLedger(s.Products)
	old := []domain.InvoiceItem{{ProductID: "p1", Quantity: 3}}
	if err := l.Commit(context.Background(), old); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Edit swaps the line to p2; p1 quantity comes back even though stock is 0.
	updated := []domain.InvoiceItem{{ProductID: "p2", Quantity: 4}}
	if err := l.Rebase(context.Background(), old, updated); err != nil {
		t.Fatalf("rebase: %v", err)
	}
	if got := stockOf(t, s, "p1"); got != 3 {
		t.Fatalf("p1 stock = %d, want 3", got)
	}
	if got := stockOf(t, s, "p2"); got != 0 {
		t.Fatalf("p2 stock = %d, want 0", got)
	}
}

func TestRebaseFailureLeavesStockUnchanged(t *testing.T) {
	s := seedProducts(t, map[string]int{"p1": 0, "p2": 2})
	l := NewStockLedger(s.Products)
	old := []domain.InvoiceItem{{ProductID: "p1", Quantity: 2}}

	// New list wants more of p2 than exists; nothing may move.
	err := l.Rebase(context.Background(), old, []domain.InvoiceItem{{ProductID: "p2", Quantity: 3}})
	if !errors.As(err, new(*domain.InsufficientStockError)) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if got := stockOf(t, s, "p1"); got != 0 {
		t.Fatalf("p1 stock = %d, want 0", got)
	}
	if got := stockOf(t, s, "p2"); got != 2 {
		t.Fatalf("p2 stock = %d, want 2", got)
	}
}
