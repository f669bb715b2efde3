package service

import (
	"context"
	"sort"

	"billingpro/internal/domain"
	"billingpro/internal/ledger"
	"billingpro/internal/money"
	"billingpro/internal/xid"
)

// resolveLines turns line requests into priced invoice items. A missing
// unit price falls back to the product's list price; product name and code
// are denormalized onto the item so old invoices survive catalogue edits.
func (s *Service) resolveLines(ctx context.Context, reqs []domain.InvoiceLineRequest) ([]domain.InvoiceItem, []ledger.LineInput, error) {
	items := make([]domain.InvoiceItem, 0, len(reqs))
	lines := make([]ledger.LineInput, 0, len(reqs))
	for _, r := range reqs {
		product, err := s.store.Products.Get(ctx, r.ProductID)
		if err != nil {
			return nil, nil, err
		}
		price := product.Price
		if r.UnitPrice != nil {
			price = *r.UnitPrice
		}
		items = append(items, domain.InvoiceItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductCode:     product.Code,
			UnitPrice:       price,
			Quantity:        r.Quantity,
			DiscountPercent: r.DiscountPercent,
		})
		lines = append(lines, ledger.LineInput{
			ProductID:       product.ID,
			Quantity:        r.Quantity,
			UnitPrice:       price,
			DiscountPercent: r.DiscountPercent,
		})
	}
	return items, lines, nil
}

// ComputeInvoiceTotals prices a draft without touching stock or storage.
// The register calls this on every keystroke.
func (s *Service) ComputeInvoiceTotals(ctx context.Context, req domain.InvoiceCreateRequest) (ledger.Totals, error) {
	if err := s.validateStruct(req); err != nil {
		return ledger.Totals{}, err
	}
	_, lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return ledger.Totals{}, err
	}
	return ledger.ComputeTotals(ledger.TotalsInput{
		Lines:         lines,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		TaxRate:       req.TaxRate,
		Tendered:      req.AmountReceived,
	})
}

// CommitInvoice is the atomic sale: totals are computed, stock is taken in
// one verified batch, a number is issued and the invoice is persisted. Any
// failure after the stock write puts the quantities back.
func (s *Service) CommitInvoice(ctx context.Context, req domain.InvoiceCreateRequest) (domain.Invoice, error) {
	if err := s.validateStruct(req); err != nil {
		return domain.Invoice{}, err
	}
	date, err := parseDate(req.Date, s.now())
	if err != nil {
		return domain.Invoice{}, err
	}

	var customer domain.Customer
	if req.CustomerID != "" {
		customer, err = s.store.Customers.Get(ctx, req.CustomerID)
		if err != nil {
			return domain.Invoice{}, err
		}
	}

	items, lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return domain.Invoice{}, err
	}
	totals, err := ledger.ComputeTotals(ledger.TotalsInput{
		Lines:         lines,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		TaxRate:       req.TaxRate,
		Tendered:      req.AmountReceived,
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	for i := range items {
		items[i].LineTotal = money.Round2(totals.LineTotals[i])
	}

	if err := s.stock.Commit(ctx, items); err != nil {
		return domain.Invoice{}, err
	}

	invoice := domain.Invoice{
		ID:             xid.New("inv"),
		Date:           date,
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		CustomerPhone:  customer.Phone,
		Items:          items,
		Subtotal:       money.Round2(totals.Subtotal),
		Discount:       money.Round2(totals.Discount),
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		TaxRate:        req.TaxRate,
		Tax:            money.Round2(totals.Tax),
		Total:          money.Round2(totals.Total),
		AmountReceived: money.Round2(req.AmountReceived),
		Change:         money.Round2(totals.Change),
		Status:         totals.Status,
		Notes:          req.Notes,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      s.now(),
	}
	invoice.Number, err = s.store.Invoices.NextNumber(ctx)
	if err != nil {
		s.compensateStock(ctx, invoice.Items, true)
		return domain.Invoice{}, err
	}
	if err := s.store.Invoices.Create(ctx, invoice); err != nil {
		s.compensateStock(ctx, invoice.Items, true)
		return domain.Invoice{}, err
	}
	if err := s.syncTenderPayment(ctx, invoice); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.refreshCustomerDerived(ctx, invoice.CustomerID); err != nil {
		return domain.Invoice{}, err
	}
	s.warnCreditLimit(ctx, invoice.CustomerID)
	s.audit("invoice.commit", "invoice", invoice.Number, req.CreatedBy)
	return invoice, nil
}

// syncTenderPayment keeps the payment ledger in step with cash taken on the
// invoice itself. The amount applied to the balance (received, capped at the
// total so change never counts as money in) is stored as a payment linked to
// the invoice; any prior linked payment is dropped first so an edit replaces
// it rather than stacking a second credit.
func (s *Service) syncTenderPayment(ctx context.Context, invoice domain.Invoice) error {
	if err := s.store.Payments.DeleteByInvoice(ctx, invoice.ID); err != nil {
		return err
	}
	if invoice.CustomerID == "" || invoice.Status == domain.InvoiceStatusCancelled {
		return nil
	}
	applied := invoice.AmountReceived
	if applied.GreaterThan(invoice.Total) {
		applied = invoice.Total
	}
	if !applied.IsPositive() {
		return nil
	}
	return s.store.Payments.Create(ctx, domain.Payment{
		ID:         xid.New("pay"),
		CustomerID: invoice.CustomerID,
		InvoiceID:  invoice.ID,
		Date:       invoice.Date,
		Amount:     applied,
		Method:     "cash",
		Reference:  invoice.Number,
		CreatedAt:  s.now(),
	})
}

// warnCreditLimit logs when a committed sale pushes the customer past their
// credit limit. The sale still stands; the limit is advisory.
func (s *Service) warnCreditLimit(ctx context.Context, customerID string) {
	if customerID == "" {
		return
	}
	customer, err := s.store.Customers.Get(ctx, customerID)
	if err != nil {
		return
	}
	if customer.CreditLimit.IsPositive() && customer.DueAmount.GreaterThan(customer.CreditLimit) {
		s.log.Warn().Err(&domain.CreditLimitError{
			CustomerID: customer.ID,
			Due:        customer.DueAmount,
			Limit:      customer.CreditLimit,
		}).Str("customer", customer.ID).Msg("credit limit exceeded")
	}
}

// EditInvoice replaces an invoice's lines and amounts. Stock moves by the
// net difference between the old and new item lists in one adjustment, so a
// rejected edit changes nothing.
func (s *Service) EditInvoice(ctx context.Context, id string, req domain.InvoiceCreateRequest) (domain.Invoice, error) {
	if err := s.validateStruct(req); err != nil {
		return domain.Invoice{}, err
	}
	old, err := s.store.Invoices.Get(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if old.Status == domain.InvoiceStatusCancelled {
		return domain.Invoice{}, &domain.ValidationError{Field: "invoice", Reason: "cancelled invoices cannot be edited"}
	}
	date, err := parseDate(req.Date, old.Date)
	if err != nil {
		return domain.Invoice{}, err
	}

	customer := domain.Customer{}
	if req.CustomerID != "" {
		customer, err = s.store.Customers.Get(ctx, req.CustomerID)
		if err != nil {
			return domain.Invoice{}, err
		}
	}

	items, lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return domain.Invoice{}, err
	}
	totals, err := ledger.ComputeTotals(ledger.TotalsInput{
		Lines:         lines,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		TaxRate:       req.TaxRate,
		Tendered:      req.AmountReceived,
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	for i := range items {
		items[i].LineTotal = money.Round2(totals.LineTotals[i])
	}

	if err := s.stock.Rebase(ctx, old.Items, items); err != nil {
		return domain.Invoice{}, err
	}

	updated := old
	updated.Date = date
	updated.CustomerID = customer.ID
	updated.CustomerName = customer.Name
	updated.CustomerPhone = customer.Phone
	updated.Items = items
	updated.Subtotal = money.Round2(totals.Subtotal)
	updated.Discount = money.Round2(totals.Discount)
	updated.DiscountType = req.DiscountType
	updated.DiscountValue = req.DiscountValue
	updated.TaxRate = req.TaxRate
	updated.Tax = money.Round2(totals.Tax)
	updated.Total = money.Round2(totals.Total)
	updated.AmountReceived = money.Round2(req.AmountReceived)
	updated.Change = money.Round2(totals.Change)
	updated.Status = totals.Status
	updated.Notes = req.Notes

	if err := s.store.Invoices.Update(ctx, updated); err != nil {
		// Persisting failed; move stock back to the old item list.
		if rbErr := s.stock.Rebase(ctx, items, old.Items); rbErr != nil {
			s.log.Error().Err(rbErr).Str("invoice", old.Number).Msg("stock rollback failed")
		}
		return domain.Invoice{}, err
	}
	if err := s.syncTenderPayment(ctx, updated); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.refreshCustomerDerived(ctx, old.CustomerID); err != nil {
		return domain.Invoice{}, err
	}
	if updated.CustomerID != old.CustomerID {
		if err := s.refreshCustomerDerived(ctx, updated.CustomerID); err != nil {
			return domain.Invoice{}, err
		}
	}
	s.audit("invoice.edit", "invoice", updated.Number, req.CreatedBy)
	return updated, nil
}

// CancelInvoice returns the stock and marks the invoice cancelled. The
// record stays for the audit trail but drops out of balances and statements.
func (s *Service) CancelInvoice(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.store.Invoices.Get(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status == domain.InvoiceStatusCancelled {
		return domain.Invoice{}, &domain.ValidationError{Field: "invoice", Reason: "already cancelled"}
	}
	if err := s.stock.Reverse(ctx, invoice.Items); err != nil {
		return domain.Invoice{}, err
	}
	invoice.Status = domain.InvoiceStatusCancelled
	if err := s.store.Invoices.Update(ctx, invoice); err != nil {
		s.compensateStock(ctx, invoice.Items, false)
		return domain.Invoice{}, err
	}
	// A cancelled sale leaves no credit behind either.
	if err := s.store.Payments.DeleteByInvoice(ctx, invoice.ID); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.refreshCustomerDerived(ctx, invoice.CustomerID); err != nil {
		return domain.Invoice{}, err
	}
	s.audit("invoice.cancel", "invoice", invoice.Number, "")
	return invoice, nil
}

// DeleteInvoice removes the record entirely, returning stock unless the
// invoice was already cancelled (its stock came back at cancel time).
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	invoice, err := s.store.Invoices.Get(ctx, id)
	if err != nil {
		return err
	}
	if invoice.Status != domain.InvoiceStatusCancelled {
		if err := s.stock.Reverse(ctx, invoice.Items); err != nil {
			return err
		}
	}
	if err := s.store.Invoices.Delete(ctx, invoice.ID); err != nil {
		if invoice.Status != domain.InvoiceStatusCancelled {
			s.compensateStock(ctx, invoice.Items, false)
		}
		return err
	}
	if err := s.store.Payments.DeleteByInvoice(ctx, invoice.ID); err != nil {
		return err
	}
	if err := s.refreshCustomerDerived(ctx, invoice.CustomerID); err != nil {
		return err
	}
	s.audit("invoice.delete", "invoice", invoice.Number, "")
	return nil
}

func (s *Service) GetInvoice(ctx context.Context, idOrNumber string) (domain.Invoice, error) {
	return s.store.Invoices.Get(ctx, idOrNumber)
}

func (s *Service) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	return s.store.Invoices.List(ctx)
}

// RecentInvoices returns the n newest invoices by creation time.
func (s *Service) RecentInvoices(ctx context.Context, n int) ([]domain.Invoice, error) {
	invoices, err := s.store.Invoices.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
	if n > 0 && len(invoices) > n {
		invoices = invoices[:n]
	}
	return invoices, nil
}

// compensateStock undoes a stock movement after a later step failed.
// commit=true means the movement being undone was a decrement.
func (s *Service) compensateStock(ctx context.Context, items []domain.InvoiceItem, committed bool) {
	var err error
	if committed {
		err = s.stock.Reverse(ctx, items)
	} else {
		err = s.stock.Commit(ctx, items)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("stock compensation failed")
	}
}
