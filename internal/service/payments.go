package service

import (
	"context"
	"strings"
	"time"

	"billingpro/internal/domain"
	"billingpro/internal/xid"
)

func (s *Service) RecordPayment(ctx context.Context, req domain.PaymentCreateRequest) (domain.Payment, error) {
	if err := s.validateStruct(req); err != nil {
		return domain.Payment{}, err
	}
	if !req.Amount.IsPositive() {
		return domain.Payment{}, &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if _, err := s.store.Customers.Get(ctx, req.CustomerID); err != nil {
		return domain.Payment{}, err
	}
	date, err := parseDate(req.Date, s.now())
	if err != nil {
		return domain.Payment{}, err
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = "cash"
	}

	payment := domain.Payment{
		ID:         xid.New("pay"),
		CustomerID: req.CustomerID,
		Date:       date,
		Amount:     req.Amount,
		Method:     method,
		Reference:  strings.TrimSpace(req.Reference),
		Notes:      req.Notes,
		CreatedAt:  s.now(),
	}
	if err := s.store.Payments.Create(ctx, payment); err != nil {
		return domain.Payment{}, err
	}
	if err := s.refreshCustomerDerived(ctx, payment.CustomerID); err != nil {
		return domain.Payment{}, err
	}
	s.audit("payment.record", "payment", payment.ID, "")
	return payment, nil
}

func (s *Service) DeletePayment(ctx context.Context, id string) error {
	payment, err := s.store.Payments.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Payments.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.refreshCustomerDerived(ctx, payment.CustomerID); err != nil {
		return err
	}
	s.audit("payment.delete", "payment", id, "")
	return nil
}

func (s *Service) ListPayments(ctx context.Context, customerID string) ([]domain.Payment, error) {
	if customerID == "" {
		return s.store.Payments.List(ctx)
	}
	return s.store.Payments.ListByCustomer(ctx, customerID)
}

// BuildStatement renders the customer's running-balance statement for the
// inclusive [from, to] date range.
func (s *Service) BuildStatement(ctx context.Context, customerID string, from, to time.Time) (domain.Statement, error) {
	if _, err := s.store.Customers.Get(ctx, customerID); err != nil {
		return domain.Statement{}, err
	}
	return s.statements.Build(ctx, customerID, from, to)
}
