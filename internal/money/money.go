// Package money holds the decimal helpers shared by the calculator,
// ledgers and statements. Amounts stay unrounded through intermediate
// arithmetic; Round2 is applied once at persistence or display boundaries.
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds half-up to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns pct percent of amount, unrounded.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// ApplyLineDiscount returns qty * unitPrice reduced by pct percent.
func ApplyLineDiscount(unitPrice decimal.Decimal, qty int, pct decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	if pct.IsZero() {
		return gross
	}
	return gross.Sub(Percent(gross, pct))
}

// Change returns max(0, tendered - total).
func Change(tendered, total decimal.Decimal) decimal.Decimal {
	c := tendered.Sub(total)
	if c.IsNegative() {
		return decimal.Zero
	}
	return c
}

// NonNegative floors an amount at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
