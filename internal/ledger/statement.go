package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"billingpro/internal/domain"
)

// StatementBuilder renders a customer's activity over a date range as a
// running-balance statement. Invoices debit the account and only payment
// records credit it; cash taken at the register appears as the payment row
// recorded at commit time. Rebuilding the same range over the same data
// yields an identical statement.
type StatementBuilder struct {
	invoices InvoiceSource
	payments PaymentSource
}

func NewStatementBuilder(invoices InvoiceSource, payments PaymentSource) *StatementBuilder {
	return &StatementBuilder{invoices: invoices, payments: payments}
}

type statementEvent struct {
	date        time.Time
	kind        int // 0 invoice, 1 payment; invoices sort first on equal dates
	seq         int
	description string
	debit       decimal.Decimal
	credit      decimal.Decimal
}

// Build produces the statement for [from, to] inclusive at day granularity.
func (b *StatementBuilder) Build(ctx context.Context, customerID string, from, to time.Time) (domain.Statement, error) {
	start := startOfDay(from)
	end := startOfDay(to).AddDate(0, 0, 1)
	if end.Before(start) || end.Equal(start) {
		return domain.Statement{}, &domain.ValidationError{Field: "to", Reason: "range end before start"}
	}

	invoices, err := b.invoices.ListByCustomer(ctx, customerID)
	if err != nil {
		return domain.Statement{}, err
	}
	payments, err := b.payments.ListByCustomer(ctx, customerID)
	if err != nil {
		return domain.Statement{}, err
	}

	opening := decimal.Zero
	var events []statementEvent
	for i, inv := range invoices {
		if inv.Status == domain.InvoiceStatusCancelled {
			continue
		}
		switch {
		case inv.Date.Before(start):
			opening = opening.Add(inv.Total)
		case inv.Date.Before(end):
			events = append(events, statementEvent{
				date:        inv.Date,
				kind:        0,
				seq:         i,
				description: fmt.Sprintf("Invoice %s", inv.Number),
				debit:       inv.Total,
				credit:      decimal.Zero,
			})
		}
	}
	for i, p := range payments {
		switch {
		case p.Date.Before(start):
			opening = opening.Sub(p.Amount)
		case p.Date.Before(end):
			desc := fmt.Sprintf("Payment (%s)", p.Method)
			if p.Reference != "" {
				desc += " " + p.Reference
			}
			events = append(events, statementEvent{
				date:        p.Date,
				kind:        1,
				seq:         i,
				description: desc,
				debit:       decimal.Zero,
				credit:      p.Amount,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		di, dj := startOfDay(events[i].date), startOfDay(events[j].date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if events[i].kind != events[j].kind {
			return events[i].kind < events[j].kind
		}
		return events[i].seq < events[j].seq
	})

	stmt := domain.Statement{
		CustomerID:     customerID,
		From:           start,
		To:             end.AddDate(0, 0, -1),
		OpeningBalance: opening,
		TotalDebits:    decimal.Zero,
		TotalCredits:   decimal.Zero,
	}
	balance := opening
	for _, ev := range events {
		balance = balance.Add(ev.debit).Sub(ev.credit)
		stmt.TotalDebits = stmt.TotalDebits.Add(ev.debit)
		stmt.TotalCredits = stmt.TotalCredits.Add(ev.credit)
		stmt.Rows = append(stmt.Rows, domain.StatementRow{
			Date:        ev.date,
			Description: ev.description,
			Debit:       ev.debit,
			Credit:      ev.credit,
			Balance:     balance,
		})
	}
	stmt.ClosingBalance = balance
	return stmt, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
