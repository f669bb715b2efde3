package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"billingpro/internal/domain"
)

// SalesReport is the dashboard aggregate over a date range.
type SalesReport struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	InvoiceCount int             `json:"invoice_count"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	TotalTax     decimal.Decimal `json:"total_tax"`
	TotalDue     decimal.Decimal `json:"total_due"`
}

// SalesTotals sums non-cancelled invoices dated within [from, to] inclusive
// at day granularity.
func (s *Service) SalesTotals(ctx context.Context, from, to time.Time) (SalesReport, error) {
	invoices, err := s.store.Invoices.List(ctx)
	if err != nil {
		return SalesReport{}, err
	}
	start := truncateDay(from)
	end := truncateDay(to).AddDate(0, 0, 1)

	report := SalesReport{
		From:       start,
		To:         end.AddDate(0, 0, -1),
		TotalSales: decimal.Zero,
		TotalTax:   decimal.Zero,
		TotalDue:   decimal.Zero,
	}
	for _, inv := range invoices {
		if inv.Status == domain.InvoiceStatusCancelled {
			continue
		}
		if inv.Date.Before(start) || !inv.Date.Before(end) {
			continue
		}
		report.InvoiceCount++
		report.TotalSales = report.TotalSales.Add(inv.Total)
		report.TotalTax = report.TotalTax.Add(inv.Tax)
		applied := inv.AmountReceived
		if applied.GreaterThan(inv.Total) {
			applied = inv.Total
		}
		report.TotalDue = report.TotalDue.Add(inv.Total.Sub(applied))
	}
	return report, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) GetSettings(ctx context.Context) (domain.Settings, error) {
	settings, err := s.store.Settings.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if settings.Currency == "" {
		settings.Currency = s.opts.Currency
	}
	if settings.LowStockThreshold <= 0 {
		settings.LowStockThreshold = s.opts.LowStockThreshold
	}
	if settings.DefaultTaxRate.IsZero() {
		settings.DefaultTaxRate = s.opts.DefaultTaxRate
	}
	return settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	if settings.DefaultTaxRate.IsNegative() {
		return &domain.ValidationError{Field: "default_tax_rate", Reason: "must not be negative"}
	}
	switch settings.BackupFrequency {
	case "", domain.FrequencyDaily, domain.FrequencyWeekly, domain.FrequencyMonthly:
	default:
		return &domain.ValidationError{Field: "backup_frequency", Reason: "must be daily, weekly or monthly"}
	}
	if err := s.store.Settings.Put(ctx, settings); err != nil {
		return err
	}
	s.audit("settings.update", "settings", "", "")
	return nil
}
