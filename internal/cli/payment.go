package cli

import (
	"context"

	"github.com/spf13/cobra"

	"billingpro/internal/domain"
)

func newPaymentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Record and manage customer payments",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record a payment against a customer's balance",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			amount, err := decimalFlag(cmd, "amount")
			if err != nil {
				return err
			}
			customer, _ := cmd.Flags().GetString("customer")
			date, _ := cmd.Flags().GetString("date")
			method, _ := cmd.Flags().GetString("method")
			ref, _ := cmd.Flags().GetString("ref")
			notes, _ := cmd.Flags().GetString("notes")

			payment, err := a.svc.RecordPayment(ctx, domain.PaymentCreateRequest{
				CustomerID: customer,
				Date:       date,
				Amount:     amount,
				Method:     method,
				Reference:  ref,
				Notes:      notes,
			})
			if err != nil {
				return err
			}
			return printJSON(payment)
		}),
	}
	add.Flags().String("customer", "", "customer id")
	add.Flags().String("date", "", "payment date YYYY-MM-DD (default today)")
	add.Flags().String("amount", "0", "amount")
	add.Flags().String("method", "cash", "payment method")
	add.Flags().String("ref", "", "reference")
	add.Flags().String("notes", "", "notes")

	list := &cobra.Command{
		Use:   "list",
		Short: "List payments",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			customer, _ := cmd.Flags().GetString("customer")
			payments, err := a.svc.ListPayments(ctx, customer)
			if err != nil {
				return err
			}
			return printJSON(payments)
		}),
	}
	list.Flags().String("customer", "", "filter by customer id")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a payment",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			return a.svc.DeletePayment(ctx, args[0])
		}),
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}
