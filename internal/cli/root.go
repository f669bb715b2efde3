// Package cli wires the cobra commands that drive the billing core from a
// terminal. Commands translate flags into service calls and print JSON.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"billingpro/internal/cache"
	"billingpro/internal/config"
	"billingpro/internal/ledger"
	"billingpro/internal/service"
	"billingpro/internal/store"
	"billingpro/internal/store/pgkv"
	"billingpro/internal/store/sqlitekv"
)

type app struct {
	cfg config.Config
	log zerolog.Logger
	st  *store.Store
	svc *service.Service

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
}

// openApp loads config, picks the storage backend and builds the service.
// Postgres is used when DATABASE_URL is set, otherwise the local SQLite file.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	a := &app{cfg: cfg, log: log}

	var kv store.KV
	if cfg.DatabaseURL != "" {
		pg, err := pgkv.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		kv = pg
		log.Debug().Msg("using postgres backend")
	} else {
		sq, err := sqlitekv.Open(cfg.DataPath)
		if err != nil {
			return nil, err
		}
		kv = sq
		log.Debug().Str("path", cfg.DataPath).Msg("using sqlite backend")
	}
	a.st = store.New(kv)
	a.closers = append(a.closers, a.st.Close)

	var summaryCache ledger.SummaryCache = cache.NewNoop()
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			time.Duration(cfg.SummaryCacheTTLSeconds)*time.Second)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		} else {
			summaryCache = rc
			a.closers = append(a.closers, rc.Close)
		}
	}

	a.svc = service.New(a.st, summaryCache, log, service.Options{
		Currency:          cfg.Currency,
		DefaultTaxRate:    decimal.NewFromFloat(cfg.DefaultTaxRate),
		LowStockThreshold: cfg.LowStockThreshold,
		PaymentTermsDays:  cfg.PaymentTermsDays,
	})
	return a, nil
}

// runWithApp wraps a command body with app setup and teardown.
func runWithApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, cmd, args)
	}
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}

// NewRootCommand assembles the full command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "billingpro",
		Short:         "Offline billing and inventory ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newProductCommand(),
		newCustomerCommand(),
		newInvoiceCommand(),
		newPaymentCommand(),
		newStatementCommand(),
		newReportCommand(),
		newBackupCommand(),
		newImportCommand(),
		newUserCommand(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
