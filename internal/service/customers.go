package service

import (
	"context"
	"sort"
	"strings"

	"billingpro/internal/domain"
)

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	if err := s.validateStruct(req); err != nil {
		return domain.Customer{}, err
	}
	if req.CreditLimit.IsNegative() {
		return domain.Customer{}, &domain.ValidationError{Field: "credit_limit", Reason: "must not be negative"}
	}
	terms := req.PaymentTermsDays
	if terms <= 0 {
		terms = s.opts.PaymentTermsDays
	}

	id, err := s.store.Customers.NextID(ctx)
	if err != nil {
		return domain.Customer{}, err
	}
	now := s.now()
	customer := domain.Customer{
		ID:               id,
		Name:             strings.TrimSpace(req.Name),
		Phone:            strings.TrimSpace(req.Phone),
		Email:            strings.TrimSpace(req.Email),
		Type:             strings.TrimSpace(req.Type),
		Address:          strings.TrimSpace(req.Address),
		City:             strings.TrimSpace(req.City),
		Zip:              strings.TrimSpace(req.Zip),
		Notes:            req.Notes,
		CreditLimit:      req.CreditLimit,
		PaymentTermsDays: terms,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Customers.Create(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	s.audit("customer.create", "customer", customer.ID, "")
	return customer, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	customer, err := s.store.Customers.Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, &domain.ValidationError{Field: "name", Reason: "required"}
		}
		customer.Name = name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return domain.Customer{}, &domain.ValidationError{Field: "phone", Reason: "required"}
		}
		customer.Phone = phone
	}
	if req.Email != nil {
		customer.Email = strings.TrimSpace(*req.Email)
	}
	if req.Type != nil {
		customer.Type = strings.TrimSpace(*req.Type)
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		customer.City = strings.TrimSpace(*req.City)
	}
	if req.Zip != nil {
		customer.Zip = strings.TrimSpace(*req.Zip)
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return domain.Customer{}, &domain.ValidationError{Field: "credit_limit", Reason: "must not be negative"}
		}
		customer.CreditLimit = *req.CreditLimit
	}
	if req.PaymentTermsDays != nil {
		customer.PaymentTermsDays = *req.PaymentTermsDays
	}
	customer.UpdatedAt = s.now()
	if err := s.store.Customers.Update(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	s.audit("customer.update", "customer", customer.ID, "")
	return customer, nil
}

// DeleteCustomer refuses while invoices still reference the customer, so the
// ledger never dangles.
func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	invoices, err := s.store.Invoices.ListByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if len(invoices) > 0 {
		return &domain.ValidationError{Field: "customer", Reason: "has invoices; cancel or delete them first"}
	}
	if err := s.store.Customers.Delete(ctx, id); err != nil {
		return err
	}
	s.customers.Invalidate(ctx, id)
	s.audit("customer.delete", "customer", id, "")
	return nil
}

func (s *Service) GetCustomer(ctx context.Context, idOrPhone string) (domain.Customer, error) {
	customer, err := s.store.Customers.Get(ctx, idOrPhone)
	if err == nil {
		return customer, nil
	}
	return s.store.Customers.GetByPhone(ctx, idOrPhone)
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.store.Customers.List(ctx)
}

func (s *Service) CustomerSummary(ctx context.Context, id string) (domain.CustomerSummary, error) {
	return s.customers.Summary(ctx, id, s.now())
}

// TopCustomers ranks by total purchases, descending.
func (s *Service) TopCustomers(ctx context.Context, n int) ([]domain.CustomerSummary, error) {
	summaries, err := s.customers.Summaries(ctx, s.now())
	if err != nil {
		return nil, err
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalPurchases.GreaterThan(summaries[j].TotalPurchases)
	})
	if n > 0 && len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries, nil
}
