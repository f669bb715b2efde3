package service

import (
	"context"
	"strings"
	"time"

	"billingpro/internal/domain"
	"billingpro/internal/xid"
)

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if err := s.validateStruct(req); err != nil {
		return domain.Product{}, err
	}
	if req.Price.IsNegative() || req.Cost.IsNegative() {
		return domain.Product{}, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if req.InitialStock < 0 {
		return domain.Product{}, &domain.ValidationError{Field: "initial_stock", Reason: "must not be negative"}
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		var err error
		code, err = s.store.Products.NextCode(ctx)
		if err != nil {
			return domain.Product{}, err
		}
	}
	var expiry *time.Time
	if strings.TrimSpace(req.Expiry) != "" {
		t, err := parseDate(req.Expiry, time.Time{})
		if err != nil {
			return domain.Product{}, &domain.ValidationError{Field: "expiry", Reason: "must be YYYY-MM-DD"}
		}
		expiry = &t
	}
	threshold := req.LowStockThreshold
	if threshold <= 0 {
		threshold = s.opts.LowStockThreshold
	}

	now := s.now()
	product := domain.Product{
		ID:                xid.New("prd"),
		Code:              code,
		Name:              strings.TrimSpace(req.Name),
		Category:          strings.TrimSpace(req.Category),
		Barcode:           strings.TrimSpace(req.Barcode),
		Price:             req.Price,
		Cost:              req.Cost,
		Stock:             req.InitialStock,
		LowStockThreshold: threshold,
		Expiry:            expiry,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Products.Create(ctx, product); err != nil {
		return domain.Product{}, err
	}
	s.audit("product.create", "product", product.ID, "")
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	product, err := s.store.Products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, &domain.ValidationError{Field: "name", Reason: "required"}
		}
		product.Name = name
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Barcode != nil {
		product.Barcode = strings.TrimSpace(*req.Barcode)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return domain.Product{}, &domain.ValidationError{Field: "price", Reason: "must not be negative"}
		}
		product.Price = *req.Price
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return domain.Product{}, &domain.ValidationError{Field: "cost", Reason: "must not be negative"}
		}
		product.Cost = *req.Cost
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.Expiry != nil {
		if strings.TrimSpace(*req.Expiry) == "" {
			product.Expiry = nil
		} else {
			t, err := parseDate(*req.Expiry, time.Time{})
			if err != nil {
				return domain.Product{}, &domain.ValidationError{Field: "expiry", Reason: "must be YYYY-MM-DD"}
			}
			product.Expiry = &t
		}
	}
	product.UpdatedAt = s.now()
	if err := s.store.Products.Update(ctx, product); err != nil {
		return domain.Product{}, err
	}
	s.audit("product.update", "product", product.ID, "")
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.Products.Delete(ctx, id); err != nil {
		return err
	}
	s.audit("product.delete", "product", id, "")
	return nil
}

func (s *Service) GetProduct(ctx context.Context, idOrCode string) (domain.Product, error) {
	product, err := s.store.Products.Get(ctx, idOrCode)
	if err == nil {
		return product, nil
	}
	return s.store.Products.GetByCode(ctx, idOrCode)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.Products.List(ctx)
}

// LowStockProducts returns products at or below their reorder threshold.
func (s *Service) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range products {
		threshold := p.LowStockThreshold
		if threshold <= 0 {
			threshold = s.opts.LowStockThreshold
		}
		if p.Stock <= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}
