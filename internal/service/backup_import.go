package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"billingpro/internal/backup"
	"billingpro/internal/domain"
)

// CreateBackup takes a snapshot of the selected collections and returns the
// export bytes together with the conventional file name. The history entry
// is recorded here; callers that write the bytes somewhere fallible should
// use WriteBackupFile instead so the entry reflects the write.
func (s *Service) CreateBackup(ctx context.Context, snapshotType string, opts domain.SnapshotOptions) ([]byte, string, error) {
	snap, raw, err := s.backups.CreateSnapshot(ctx, snapshotType, opts)
	if err != nil {
		return nil, "", err
	}
	if err := s.backups.RecordResult(ctx, snap, len(raw), "ok"); err != nil {
		return nil, "", err
	}
	return raw, backup.FileName(snap.Metadata.Timestamp), nil
}

// WriteBackupFile takes a snapshot and writes it under dir. The history
// entry is recorded after the write, so a snapshot that never reached disk
// shows up as failed.
func (s *Service) WriteBackupFile(ctx context.Context, snapshotType string, opts domain.SnapshotOptions, dir string) (string, error) {
	snap, raw, err := s.backups.CreateSnapshot(ctx, snapshotType, opts)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, backup.FileName(snap.Metadata.Timestamp))
	writeErr := os.WriteFile(path, raw, 0o600)
	status := "ok"
	if writeErr != nil {
		status = "failed"
	}
	if err := s.backups.RecordResult(ctx, snap, len(raw), status); err != nil {
		return "", err
	}
	if writeErr != nil {
		return "", writeErr
	}
	return path, nil
}

// RestoreBackup loads snapshot bytes back into the store. Replace wipes each
// collection the snapshot carries; merge reconciles record by record.
func (s *Service) RestoreBackup(ctx context.Context, raw []byte, mode backup.RestoreMode) error {
	snap, err := backup.ParseSnapshot(raw)
	if err != nil {
		return err
	}
	if err := s.backups.Restore(ctx, snap, mode); err != nil {
		return err
	}
	return s.afterBulkLoad(ctx)
}

func (s *Service) BackupHistory(ctx context.Context) ([]domain.BackupHistoryEntry, error) {
	return s.backups.History(ctx)
}

// NextBackupTime is the schedule math exposed for the CLI and the scheduler.
func (s *Service) NextBackupTime(frequency, timeOfDay string) time.Time {
	return backup.NextScheduledTime(s.now(), frequency, timeOfDay)
}

// ImportData accepts either a bare JSON array for one named collection or a
// full snapshot object; both are reconciled into the store, never wiping it.
// Malformed input returns ErrParse with nothing written.
func (s *Service) ImportData(ctx context.Context, raw []byte, collection string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty input", domain.ErrParse)
	}

	if trimmed[0] == '{' {
		return s.RestoreBackup(ctx, trimmed, backup.RestoreMerge)
	}
	if trimmed[0] != '[' {
		return fmt.Errorf("%w: expected a JSON array or snapshot object", domain.ErrParse)
	}

	switch collection {
	case "products":
		return importCollection(ctx, s, trimmed, s.store.Products.List, s.store.Products.ReplaceAll, backup.KindProducts)
	case "customers":
		return importCollection(ctx, s, trimmed, s.store.Customers.List, s.store.Customers.ReplaceAll, backup.KindCustomers)
	case "invoices":
		return importCollection(ctx, s, trimmed, s.store.Invoices.List, s.store.Invoices.ReplaceAll, backup.KindInvoices)
	case "payments":
		return importCollection(ctx, s, trimmed, s.store.Payments.List, s.store.Payments.ReplaceAll, backup.KindPayments)
	default:
		return &domain.ValidationError{Field: "collection", Reason: "must be products, customers, invoices or payments"}
	}
}

func importCollection[T any](ctx context.Context, s *Service, raw []byte, list func(context.Context) ([]T, error), replace func(context.Context, []T) error, kind backup.Kind) error {
	var incoming []T
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	existing, err := list(ctx)
	if err != nil {
		return err
	}
	merged, err := backup.MergeTyped(existing, incoming, kind)
	if err != nil {
		return err
	}
	if err := replace(ctx, merged); err != nil {
		return err
	}
	s.audit("import.merge", "collection", string(kind), "")
	return s.afterBulkLoad(ctx)
}

// afterBulkLoad refreshes every customer's derived balances after a restore
// or import rewrote collections wholesale.
func (s *Service) afterBulkLoad(ctx context.Context) error {
	customers, err := s.store.Customers.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range customers {
		if err := s.refreshCustomerDerived(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}
