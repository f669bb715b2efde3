package cli

import (
	"context"

	"github.com/spf13/cobra"

	"billingpro/internal/domain"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage local user accounts",
	}

	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			user, err := a.svc.Users.Create(ctx, args[0], password, role)
			if err != nil {
				return err
			}
			user.PasswordHash = ""
			return printJSON(user)
		}),
	}
	add.Flags().String("password", "", "initial password")
	add.Flags().String("role", domain.RoleSalesman, "admin or salesman")

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			accounts, err := a.svc.Users.List(ctx)
			if err != nil {
				return err
			}
			return printJSON(accounts)
		}),
	}

	passwd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Change a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			oldPassword, _ := cmd.Flags().GetString("old")
			newPassword, _ := cmd.Flags().GetString("new")
			return a.svc.Users.ChangePassword(ctx, args[0], oldPassword, newPassword)
		}),
	}
	passwd.Flags().String("old", "", "current password")
	passwd.Flags().String("new", "", "new password")

	deactivate := &cobra.Command{
		Use:   "deactivate <username>",
		Short: "Deactivate a user",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, args []string) error {
			return a.svc.Users.Deactivate(ctx, args[0])
		}),
	}

	cmd.AddCommand(add, list, passwd, deactivate)
	return cmd
}
