package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"billingpro/internal/domain"
)

// parseItemSpec decodes --item values of the form
// product[:qty[:unit-price[:discount-pct]]].
func parseItemSpec(spec string) (domain.InvoiceLineRequest, error) {
	parts := strings.Split(spec, ":")
	line := domain.InvoiceLineRequest{ProductID: parts[0], Quantity: 1}
	if line.ProductID == "" {
		return line, fmt.Errorf("item %q: product required", spec)
	}
	if len(parts) > 1 && parts[1] != "" {
		qty, err := strconv.Atoi(parts[1])
		if err != nil {
			return line, fmt.Errorf("item %q: bad quantity", spec)
		}
		line.Quantity = qty
	}
	if len(parts) > 2 && parts[2] != "" {
		price, err := decimal.NewFromString(parts[2])
		if err != nil {
			return line, fmt.Errorf("item %q: bad unit price", spec)
		}
		line.UnitPrice = &price
	}
	if len(parts) > 3 && parts[3] != "" {
		pct, err := decimal.NewFromString(parts[3])
		if err != nil {
			return line, fmt.Errorf("item %q: bad discount percent", spec)
		}
		line.DiscountPercent = pct
	}
	return line, nil
}

func invoiceRequestFromFlags(cmd *cobra.Command) (domain.InvoiceCreateRequest, error) {
	var req domain.InvoiceCreateRequest
	specs, _ := cmd.Flags().GetStringArray("item")
	for _, spec := range specs {
		line, err := parseItemSpec(spec)
		if err != nil {
			return req, err
		}
		req.Items = append(req.Items, line)
	}
	var err error
	if req.DiscountValue, err = decimalFlag(cmd, "discount"); err != nil {
		return req, err
	}
	if req.TaxRate, err = decimalFlag(cmd, "tax"); err != nil {
		return req, err
	}
	if req.AmountReceived, err = decimalFlag(cmd, "received"); err != nil {
		return req, err
	}
	req.CustomerID, _ = cmd.Flags().GetString("customer")
	req.Date, _ = cmd.Flags().GetString("date")
	req.DiscountType, _ = cmd.Flags().GetString("discount-type")
	req.Notes, _ = cmd.Flags().GetString("notes")
	req.CreatedBy, _ = cmd.Flags().GetString("by")
	return req, nil
}

func addInvoiceFlags(cmd *cobra.Command) {
	cmd.Flags().String("customer", "", "customer id (blank for walk-in)")
	cmd.Flags().String("date", "", "invoice date YYYY-MM-DD (default today)")
	cmd.Flags().StringArray("item", nil, "line item product[:qty[:unit-price[:discount-pct]]]")
	cmd.Flags().String("discount-type", domain.DiscountTypeAbsolute, "absolute or percent")
	cmd.Flags().String("discount", "0", "invoice discount value")
	cmd.Flags().String("tax", "0", "tax rate percent")
	cmd.Flags().String("received", "0", "amount tendered")
	cmd.Flags().String("notes", "", "notes")
	cmd.Flags().String("by", "", "username creating the invoice")
}

func newInvoiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create and manage invoices",
	}

	create := &cobra.Command{
		Use:   "new",
		Short: "Commit a sale: take stock, issue a number, persist",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			req, err := invoiceRequestFromFlags(cmd)
			if err != nil {
				return err
			}
			invoice, err := a.svc.CommitInvoice(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(invoice)
		}),
	}
	addInvoiceFlags(create)

	quote := &cobra.Command{
		Use:   "quote",
		Short: "Price a draft without committing anything",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			req, err := invoiceRequestFromFlags(cmd)
			if err != nil {
				return err
			}
			totals, err := a.svc.ComputeInvoiceTotals(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(totals)
		}),
	}
	addInvoiceFlags(quote)

	edit := &cobra.Command{
		Use:   "edit <id-or-number>",
		Short: "Replace an invoice's lines and amounts",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			req, err := invoiceRequestFromFlags(cmd)
			if err != nil {
				return err
			}
			invoice, err := a.svc.EditInvoice(ctx, args[0], req)
			if err != nil {
				return err
			}
			return printJSON(invoice)
		}),
	}
	addInvoiceFlags(edit)

	list := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			recent, _ := cmd.Flags().GetInt("recent")
			if recent > 0 {
				invoices, err := a.svc.RecentInvoices(ctx, recent)
				if err != nil {
					return err
				}
				return printJSON(invoices)
			}
			invoices, err := a.svc.ListInvoices(ctx)
			if err != nil {
				return err
			}
			return printJSON(invoices)
		}),
	}
	list.Flags().Int("recent", 0, "show only the n newest")

	show := &cobra.Command{
		Use:   "show <id-or-number>",
		Short: "Show one invoice",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			invoice, err := a.svc.GetInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(invoice)
		}),
	}

	cancel := &cobra.Command{
		Use:   "cancel <id-or-number>",
		Short: "Cancel an invoice and return its stock",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			invoice, err := a.svc.CancelInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(invoice)
		}),
	}

	rm := &cobra.Command{
		Use:   "rm <id-or-number>",
		Short: "Delete an invoice and return its stock",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			invoice, err := a.svc.GetInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			return a.svc.DeleteInvoice(ctx, invoice.ID)
		}),
	}

	cmd.AddCommand(create, quote, edit, list, show, cancel, rm)
	return cmd
}
