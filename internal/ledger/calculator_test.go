package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"billingpro/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTotalsDiscountThenTax(t *testing.T) {
	// 200 subtotal, 10% discount, 5% tax on the remainder: 180 + 9 = 189.
	got, err := ComputeTotals(TotalsInput{
		Lines: []LineInput{
			{ProductID: "p1", Quantity: 2, UnitPrice: dec("100")},
		},
		DiscountType:  domain.DiscountTypePercent,
		DiscountValue: dec("10"),
		TaxRate:       dec("5"),
	})
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !got.Subtotal.Equal(dec("200")) {
		t.Fatalf("subtotal = %s, want 200", got.Subtotal)
	}
	if !got.Discount.Equal(dec("20")) {
		t.Fatalf("discount = %s, want 20", got.Discount)
	}
	if !got.Tax.Equal(dec("9")) {
		t.Fatalf("tax = %s, want 9", got.Tax)
	}
	if !got.Total.Equal(dec("189")) {
		t.Fatalf("total = %s, want 189", got.Total)
	}
	if got.Status != domain.InvoiceStatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
}

func TestComputeTotalsLineDiscount(t *testing.T) {
	got, err := ComputeTotals(TotalsInput{
		Lines: []LineInput{
			{ProductID: "p1", Quantity: 4, UnitPrice: dec("50"), DiscountPercent: dec("25")},
		},
	})
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !got.Subtotal.Equal(dec("150")) {
		t.Fatalf("subtotal = %s, want 150", got.Subtotal)
	}
	if !got.Total.Equal(dec("150")) {
		t.Fatalf("total = %s, want 150", got.Total)
	}
}

func TestComputeTotalsAbsoluteDiscountClamped(t *testing.T) {
	got, err := ComputeTotals(TotalsInput{
		Lines: []LineInput{
			{ProductID: "p1", Quantity: 1, UnitPrice: dec("50")},
		},
		DiscountType:  domain.DiscountTypeAbsolute,
		DiscountValue: dec("80"),
		TaxRate:       dec("10"),
	})
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if !got.DiscountClamped {
		t.Fatal("expected DiscountClamped")
	}
	if !got.Taxable.IsZero() || !got.Total.IsZero() {
		t.Fatalf("taxable = %s total = %s, want both 0", got.Taxable, got.Total)
	}
}

func TestComputeTotalsRejectsNegatives(t *testing.T) {
	cases := []TotalsInput{
		{Lines: []LineInput{{ProductID: "p1", Quantity: -1, UnitPrice: dec("10")}}},
		{Lines: []LineInput{{ProductID: "p1", Quantity: 1, UnitPrice: dec("-10")}}},
		{Lines: []LineInput{{ProductID: "p1", Quantity: 1, UnitPrice: dec("10"), DiscountPercent: dec("120")}}},
		{Lines: []LineInput{{ProductID: "p1", Quantity: 1, UnitPrice: dec("10")}}, DiscountValue: dec("-5")},
		{Lines: []LineInput{{ProductID: "p1", Quantity: 1, UnitPrice: dec("10")}}, TaxRate: dec("-1")},
		{},
	}
	for i, in := range cases {
		_, err := ComputeTotals(in)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestComputeTotalsStatusAndChange(t *testing.T) {
	in := TotalsInput{
		Lines:   []LineInput{{ProductID: "p1", Quantity: 1, UnitPrice: dec("100")}},
		TaxRate: dec("0"),
	}

	in.Tendered = dec("0")
	got, err := ComputeTotals(in)
	if err != nil {
		t.Fatalf("ComputeTotals: %v", err)
	}
	if got.Status != domain.InvoiceStatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}

	in.Tendered = dec("40")
	got, _ = ComputeTotals(in)
	if got.Status != domain.InvoiceStatusPartial {
		t.Fatalf("status = %s, want partial", got.Status)
	}
	if !got.Change.IsZero() {
		t.Fatalf("change = %s, want 0", got.Change)
	}

	in.Tendered = dec("120")
	got, _ = ComputeTotals(in)
	if got.Status != domain.InvoiceStatusPaid {
		t.Fatalf("status = %s, want paid", got.Status)
	}
	if !got.Change.Equal(dec("20")) {
		t.Fatalf("change = %s, want 20", got.Change)
	}
}
