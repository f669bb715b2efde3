package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"billingpro/internal/backup"
	"billingpro/internal/domain"
)

func newBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshots, restores and the backup schedule",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Write a snapshot file of the selected collections",
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("out")
			if dir == "" {
				dir = a.cfg.BackupDir
			}
			quick, _ := cmd.Flags().GetBool("quick")

			snapshotType := domain.SnapshotTypeManual
			opts := backup.FullOptions
			if quick {
				// Quick backups skip settings and users; the business data is
				// what changes between runs.
				snapshotType = domain.SnapshotTypeQuick
				opts.Settings = false
				opts.Users = false
			}
			path, err := a.svc.WriteBackupFile(ctx, snapshotType, opts, dir)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		}),
	}
	create.Flags().String("out", "", "output directory (default from config)")
	create.Flags().Bool("quick", false, "business data only")

	restore := &cobra.Command{
		Use:   "restore <file>",
		Short: "Load a snapshot file back into the store",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("mode")
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.svc.RestoreBackup(ctx, raw, backup.RestoreMode(mode))
		}),
	}
	restore.Flags().String("mode", string(backup.RestoreMerge), "merge or replace")

	history := &cobra.Command{
		Use:   "history",
		Short: "Show recent backups, newest first",
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			entries, err := a.svc.BackupHistory(ctx)
			if err != nil {
				return err
			}
			return printJSON(entries)
		}),
	}

	next := &cobra.Command{
		Use:   "next",
		Short: "Print the next scheduled backup time",
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			fmt.Println(a.svc.NextBackupTime(a.cfg.BackupFrequency, a.cfg.BackupTimeOfDay))
			return nil
		}),
	}

	auto := &cobra.Command{
		Use:   "auto",
		Short: "Run scheduled backups until interrupted",
		RunE: runWithApp(func(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
			var scheduler *backup.Scheduler
			run := func() {
				if _, err := a.svc.WriteBackupFile(ctx, domain.SnapshotTypeScheduled, backup.FullOptions, a.cfg.BackupDir); err != nil {
					a.log.Error().Err(err).Msg("scheduled backup failed")
				}
				scheduler.ScheduleAt(a.svc.NextBackupTime(a.cfg.BackupFrequency, a.cfg.BackupTimeOfDay))
			}

			scheduler = backup.NewScheduler(run)
			first := a.svc.NextBackupTime(a.cfg.BackupFrequency, a.cfg.BackupTimeOfDay)
			a.log.Info().Time("next", first).Msg("backup scheduler started")
			scheduler.ScheduleAt(first)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			scheduler.Stop()
			return nil
		}),
	}

	cmd.AddCommand(create, restore, history, next, auto)
	return cmd
}

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a JSON array or snapshot file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: runWithApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			collection, _ := cmd.Flags().GetString("collection")
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return a.svc.ImportData(ctx, raw, collection)
		}),
	}
	cmd.Flags().String("collection", "", "target for bare arrays: products, customers, invoices or payments")
	return cmd
}
