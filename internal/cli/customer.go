package cli

import (
	"context"

	"github.com/spf13/cobra"

	"billingpro/internal/domain"
)

func newCustomerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage customers",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			creditLimit, err := decimalFlag(cmd, "credit-limit")
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			phone, _ := cmd.Flags().GetString("phone")
			email, _ := cmd.Flags().GetString("email")
			ctype, _ := cmd.Flags().GetString("type")
			address, _ := cmd.Flags().GetString("address")
			city, _ := cmd.Flags().GetString("city")
			zip, _ := cmd.Flags().GetString("zip")
			notes, _ := cmd.Flags().GetString("notes")
			terms, _ := cmd.Flags().GetInt("terms")

			customer, err := a.svc.CreateCustomer(ctx, domain.CustomerCreateRequest{
				Name:             name,
				Phone:            phone,
				Email:            email,
				Type:             ctype,
				Address:          address,
				City:             city,
				Zip:              zip,
				Notes:            notes,
				CreditLimit:      creditLimit,
				PaymentTermsDays: terms,
			})
			if err != nil {
				return err
			}
			return printJSON(customer)
		}),
	}
	add.Flags().String("name", "", "customer name")
	add.Flags().String("phone", "", "phone (unique)")
	add.Flags().String("email", "", "email")
	add.Flags().String("type", "", "regular, wholesale or retail")
	add.Flags().String("address", "", "street address")
	add.Flags().String("city", "", "city")
	add.Flags().String("zip", "", "zip code")
	add.Flags().String("notes", "", "notes")
	add.Flags().String("credit-limit", "0", "credit limit")
	add.Flags().Int("terms", 0, "payment terms in days")

	list := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			customers, err := a.svc.ListCustomers(ctx)
			if err != nil {
				return err
			}
			return printJSON(customers)
		}),
	}

	show := &cobra.Command{
		Use:   "show <id-or-phone>",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			customer, err := a.svc.GetCustomer(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(customer)
		}),
	}

	summary := &cobra.Command{
		Use:   "summary <id>",
		Short: "Show the customer's balance position",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			s, err := a.svc.CustomerSummary(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(s)
		}),
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a customer without invoices",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			return a.svc.DeleteCustomer(ctx, args[0])
		}),
	}

	cmd.AddCommand(add, list, show, summary, rm)
	return cmd
}
