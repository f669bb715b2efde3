// Package ledger holds the pure billing services: invoice totals, stock
// movements, customer balances and statements. Everything here is
// deterministic; time and storage come in from the caller.
package ledger

import (
	"github.com/shopspring/decimal"

	"billingpro/internal/domain"
	"billingpro/internal/money"
)

var oneHundred = decimal.NewFromInt(100)

// LineInput is one invoice line before totals are computed.
type LineInput struct {
	ProductID       string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// TotalsInput feeds ComputeTotals. DiscountValue is an amount when
// DiscountType is "absolute" and a percentage of the subtotal when "percent".
type TotalsInput struct {
	Lines         []LineInput
	DiscountType  string
	DiscountValue decimal.Decimal
	TaxRate       decimal.Decimal
	Tendered      decimal.Decimal
}

// Totals is the full result of the invoice math. Amounts are unrounded;
// callers round once at the persistence boundary.
type Totals struct {
	LineTotals      []decimal.Decimal
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Taxable         decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Change          decimal.Decimal
	Status          string
	DiscountClamped bool
}

// ComputeTotals derives subtotal, discount, tax and grand total from the
// lines. Tax applies to the post-discount amount. A discount larger than the
// subtotal is clamped to it and flagged rather than producing a negative
// taxable amount.
func ComputeTotals(in TotalsInput) (Totals, error) {
	var out Totals
	if len(in.Lines) == 0 {
		return out, &domain.ValidationError{Field: "items", Reason: "at least one line required"}
	}

	subtotal := decimal.Zero
	out.LineTotals = make([]decimal.Decimal, len(in.Lines))
	for i, line := range in.Lines {
		if line.Quantity <= 0 {
			return Totals{}, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		if line.UnitPrice.IsNegative() {
			return Totals{}, &domain.ValidationError{Field: "unit_price", Reason: "must not be negative"}
		}
		if line.DiscountPercent.IsNegative() || line.DiscountPercent.GreaterThan(oneHundred) {
			return Totals{}, &domain.ValidationError{Field: "discount_percent", Reason: "must be between 0 and 100"}
		}
		lt := money.ApplyLineDiscount(line.UnitPrice, line.Quantity, line.DiscountPercent)
		out.LineTotals[i] = lt
		subtotal = subtotal.Add(lt)
	}
	out.Subtotal = subtotal

	if in.DiscountValue.IsNegative() {
		return Totals{}, &domain.ValidationError{Field: "discount_value", Reason: "must not be negative"}
	}
	if in.TaxRate.IsNegative() {
		return Totals{}, &domain.ValidationError{Field: "tax_rate", Reason: "must not be negative"}
	}
	if in.Tendered.IsNegative() {
		return Totals{}, &domain.ValidationError{Field: "amount_received", Reason: "must not be negative"}
	}

	discount := in.DiscountValue
	switch in.DiscountType {
	case domain.DiscountTypePercent:
		if in.DiscountValue.GreaterThan(oneHundred) {
			return Totals{}, &domain.ValidationError{Field: "discount_value", Reason: "percentage must be between 0 and 100"}
		}
		discount = money.Percent(subtotal, in.DiscountValue)
	case domain.DiscountTypeAbsolute, "":
		// amount as given
	default:
		return Totals{}, &domain.ValidationError{Field: "discount_type", Reason: "must be absolute or percent"}
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
		out.DiscountClamped = true
	}
	out.Discount = discount

	out.Taxable = subtotal.Sub(discount)
	out.Tax = money.Percent(out.Taxable, in.TaxRate)
	out.Total = out.Taxable.Add(out.Tax)
	out.Change = money.Change(in.Tendered, out.Total)
	out.Status = paymentStatus(in.Tendered, out.Total)
	return out, nil
}

func paymentStatus(tendered, total decimal.Decimal) string {
	switch {
	case tendered.GreaterThanOrEqual(total):
		return domain.InvoiceStatusPaid
	case tendered.IsZero():
		return domain.InvoiceStatusPending
	default:
		return domain.InvoiceStatusPartial
	}
}
