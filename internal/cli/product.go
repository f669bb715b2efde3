package cli

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"billingpro/internal/domain"
)

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return decimal.Zero, err
	}
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("flag --%s: %w", name, err)
	}
	return d, nil
}

func newProductCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalogue",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			price, err := decimalFlag(cmd, "price")
			if err != nil {
				return err
			}
			cost, err := decimalFlag(cmd, "cost")
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			code, _ := cmd.Flags().GetString("code")
			category, _ := cmd.Flags().GetString("category")
			barcode, _ := cmd.Flags().GetString("barcode")
			stock, _ := cmd.Flags().GetInt("stock")
			threshold, _ := cmd.Flags().GetInt("threshold")
			expiry, _ := cmd.Flags().GetString("expiry")

			product, err := a.svc.CreateProduct(ctx, domain.ProductCreateRequest{
				Code:              code,
				Name:              name,
				Category:          category,
				Barcode:           barcode,
				Price:             price,
				Cost:              cost,
				InitialStock:      stock,
				LowStockThreshold: threshold,
				Expiry:            expiry,
			})
			if err != nil {
				return err
			}
			return printJSON(product)
		}),
	}
	add.Flags().String("name", "", "product name")
	add.Flags().String("code", "", "product code (assigned when blank)")
	add.Flags().String("category", "", "category")
	add.Flags().String("barcode", "", "barcode")
	add.Flags().String("price", "0", "unit price")
	add.Flags().String("cost", "0", "unit cost")
	add.Flags().Int("stock", 0, "initial stock")
	add.Flags().Int("threshold", 0, "low stock threshold")
	add.Flags().String("expiry", "", "expiry date YYYY-MM-DD")

	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			products, err := a.svc.ListProducts(ctx)
			if err != nil {
				return err
			}
			return printJSON(products)
		}),
	}

	show := &cobra.Command{
		Use:   "show <id-or-code>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			product, err := a.svc.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(product)
		}),
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			return a.svc.DeleteProduct(ctx, args[0])
		}),
	}

	low := &cobra.Command{
		Use:   "low",
		Short: "List products at or below their reorder threshold",
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			products, err := a.svc.LowStockProducts(ctx)
			if err != nil {
				return err
			}
			return printJSON(products)
		}),
	}

	cmd.AddCommand(add, list, show, rm, low)
	return cmd
}
