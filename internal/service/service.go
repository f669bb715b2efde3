// Package service exposes the command functions the CLI (or any embedding
// UI) calls. It validates input, runs the ledgers, persists results and
// emits audit log events. All mutation funnels through here.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"billingpro/internal/backup"
	"billingpro/internal/domain"
	"billingpro/internal/ledger"
	"billingpro/internal/store"
	"billingpro/internal/users"
)

// Options carries the business defaults applied when a request or a stored
// record leaves a field blank.
type Options struct {
	Currency          string
	DefaultTaxRate    decimal.Decimal
	LowStockThreshold int
	PaymentTermsDays  int
}

type Service struct {
	store      *store.Store
	stock      *ledger.StockLedger
	customers  *ledger.CustomerLedger
	statements *ledger.StatementBuilder
	backups    *backup.Coordinator
	Users      *users.Manager

	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
	opts     Options
}

func New(st *store.Store, cache ledger.SummaryCache, log zerolog.Logger, opts Options) *Service {
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 5
	}
	if opts.PaymentTermsDays <= 0 {
		opts.PaymentTermsDays = 30
	}
	return &Service{
		store:      st,
		stock:      ledger.NewStockLedger(st.Products),
		customers:  ledger.NewCustomerLedger(st.Customers, st.Invoices, st.Payments, cache),
		statements: ledger.NewStatementBuilder(st.Invoices, st.Payments),
		backups:    backup.NewCoordinator(st, log),
		Users:      users.NewManager(st.Users),
		validate:   validator.New(),
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		opts:       opts,
	}
}

// WithClock replaces the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.backups.WithClock(now)
	return s
}

func (s *Service) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return &domain.ValidationError{
			Field:  strings.ToLower(f.Field()),
			Reason: "fails " + f.Tag() + " rule",
		}
	}
	return err
}

// parseDate accepts 2006-01-02 or RFC 3339; blank means fallback.
func parseDate(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &domain.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD or RFC 3339"}
}

func (s *Service) audit(action, entity, id, actor string) {
	s.log.Info().
		Str("action", action).
		Str("entity", entity).
		Str("entity_id", id).
		Str("actor", actor).
		Msg("audit")
}

// refreshCustomerDerived recomputes the customer's stored balance fields
// from the ledger after any invoice or payment mutation.
func (s *Service) refreshCustomerDerived(ctx context.Context, customerID string) error {
	if customerID == "" {
		return nil
	}
	s.customers.Invalidate(ctx, customerID)
	summary, err := s.customers.Summary(ctx, customerID, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	customer, err := s.store.Customers.Get(ctx, customerID)
	if err != nil {
		return err
	}
	customer.TotalPurchases = summary.TotalPurchases
	customer.DueAmount = summary.DueAmount
	customer.LastPurchaseDate = summary.LastPurchaseDate
	customer.UpdatedAt = s.now()
	return s.store.Customers.Update(ctx, customer)
}
