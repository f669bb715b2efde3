package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func dateFlag(cmd *cobra.Command, name string, fallback time.Time) (time.Time, error) {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("flag --%s: must be YYYY-MM-DD", name)
	}
	return t.UTC(), nil
}

func newStatementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statement <customer-id>",
		Short: "Build a customer's running-balance statement",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			from, err := dateFlag(cmd, "from", now.AddDate(0, -1, 0))
			if err != nil {
				return err
			}
			to, err := dateFlag(cmd, "to", now)
			if err != nil {
				return err
			}
			stmt, err := a.svc.BuildStatement(ctx, args[0], from, to)
			if err != nil {
				return err
			}
			return printJSON(stmt)
		}),
	}
	cmd.Flags().String("from", "", "range start YYYY-MM-DD (default one month ago)")
	cmd.Flags().String("to", "", "range end YYYY-MM-DD (default today)")
	return cmd
}

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sales and customer reports",
	}

	sales := &cobra.Command{
		Use:   "sales",
		Short: "Sales totals over a date range",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			now := time.Now().UTC()
			from, err := dateFlag(cmd, "from", now.AddDate(0, -1, 0))
			if err != nil {
				return err
			}
			to, err := dateFlag(cmd, "to", now)
			if err != nil {
				return err
			}
			report, err := a.svc.SalesTotals(ctx, from, to)
			if err != nil {
				return err
			}
			return printJSON(report)
		}),
	}
	sales.Flags().String("from", "", "range start YYYY-MM-DD (default one month ago)")
	sales.Flags().String("to", "", "range end YYYY-MM-DD (default today)")

	top := &cobra.Command{
		Use:   "top",
		Short: "Top customers by total purchases",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("n")
			summaries, err := a.svc.TopCustomers(ctx, n)
			if err != nil {
				return err
			}
			return printJSON(summaries)
		}),
	}
	top.Flags().Int("n", 5, "how many customers")

	cmd.AddCommand(sales, top)
	return cmd
}
