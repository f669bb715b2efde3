package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"billingpro/internal/domain"
	"billingpro/internal/money"
)

const (
	defaultPaymentTermsDays = 30
	activityWindowDays      = 30
)

// InvoiceSource and PaymentSource are the read slices of the repositories
// the customer ledger projects over.
type InvoiceSource interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Invoice, error)
}

type PaymentSource interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error)
}

type CustomerSource interface {
	Get(ctx context.Context, id string) (domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

// SummaryCache is an optional read-through cache for computed summaries.
type SummaryCache interface {
	GetSummary(ctx context.Context, customerID string) (domain.CustomerSummary, bool)
	SetSummary(ctx context.Context, customerID string, summary domain.CustomerSummary)
	InvalidateSummary(ctx context.Context, customerID string)
}

// CustomerLedger projects invoices and payments into per-customer balances.
// It never stores anything; derived fields on the customer record are
// refreshed by the service from these summaries.
type CustomerLedger struct {
	customers CustomerSource
	invoices  InvoiceSource
	payments  PaymentSource
	cache     SummaryCache
}

func NewCustomerLedger(customers CustomerSource, invoices InvoiceSource, payments PaymentSource, cache SummaryCache) *CustomerLedger {
	return &CustomerLedger{customers: customers, invoices: invoices, payments: payments, cache: cache}
}

// Summary computes the customer's balance position as of now. Cancelled
// invoices are ignored. Paid amounts come from payment records alone; cash
// taken at the register is recorded as a payment when the sale commits, so
// nothing on the invoice itself counts as money in.
func (l *CustomerLedger) Summary(ctx context.Context, customerID string, now time.Time) (domain.CustomerSummary, error) {
	if l.cache != nil {
		if s, ok := l.cache.GetSummary(ctx, customerID); ok {
			return s, nil
		}
	}

	customer, err := l.customers.Get(ctx, customerID)
	if err != nil {
		return domain.CustomerSummary{}, err
	}
	invoices, err := l.invoices.ListByCustomer(ctx, customerID)
	if err != nil {
		return domain.CustomerSummary{}, err
	}
	payments, err := l.payments.ListByCustomer(ctx, customerID)
	if err != nil {
		return domain.CustomerSummary{}, err
	}

	summary := project(customer, invoices, payments, now)
	if l.cache != nil {
		l.cache.SetSummary(ctx, customerID, summary)
	}
	return summary, nil
}

// Summaries computes every customer's position in one pass.
func (l *CustomerLedger) Summaries(ctx context.Context, now time.Time) ([]domain.CustomerSummary, error) {
	customers, err := l.customers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CustomerSummary, 0, len(customers))
	for _, c := range customers {
		invoices, err := l.invoices.ListByCustomer(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		payments, err := l.payments.ListByCustomer(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, project(c, invoices, payments, now))
	}
	return out, nil
}

// Invalidate drops the cached summary after an invoice or payment mutation.
func (l *CustomerLedger) Invalidate(ctx context.Context, customerID string) {
	if l.cache != nil && customerID != "" {
		l.cache.InvalidateSummary(ctx, customerID)
	}
}

func project(customer domain.Customer, invoices []domain.Invoice, payments []domain.Payment, now time.Time) domain.CustomerSummary {
	s := domain.CustomerSummary{
		CustomerID:     customer.ID,
		TotalPurchases: decimal.Zero,
		TotalPaid:      decimal.Zero,
		DueAmount:      decimal.Zero,
	}
	var last time.Time
	for _, inv := range invoices {
		if inv.Status == domain.InvoiceStatusCancelled {
			continue
		}
		s.InvoiceCount++
		s.TotalPurchases = s.TotalPurchases.Add(inv.Total)
		if inv.Date.After(last) {
			last = inv.Date
		}
	}
	for _, p := range payments {
		s.TotalPaid = s.TotalPaid.Add(p.Amount)
	}
	s.DueAmount = money.NonNegative(s.TotalPurchases.Sub(s.TotalPaid))

	if !last.IsZero() {
		t := last
		s.LastPurchaseDate = &t
		s.Active = now.Sub(last) <= activityWindowDays*24*time.Hour

		terms := customer.PaymentTermsDays
		if terms <= 0 {
			terms = defaultPaymentTermsDays
		}
		due := last.AddDate(0, 0, terms)
		s.Overdue = s.DueAmount.IsPositive() && now.After(due)
	}
	return s
}
