package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"billingpro/internal/domain"
	"billingpro/internal/store"
	"billingpro/internal/xid"
)

// RestoreMode chooses between wiping collections and reconciling into them.
type RestoreMode string

const (
	RestoreReplace RestoreMode = "replace"
	RestoreMerge   RestoreMode = "merge"
)

const historyCap = 10

// FullOptions selects every collection.
var FullOptions = domain.SnapshotOptions{
	Products: true, Customers: true, Invoices: true,
	Payments: true, Settings: true, Users: true,
}

// Coordinator produces snapshots, restores them and keeps the bounded
// backup history.
type Coordinator struct {
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewCoordinator(st *store.Store, log zerolog.Logger) *Coordinator {
	return &Coordinator{store: st, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the clock, for tests.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// CreateSnapshot collects the selected collections into a snapshot. The
// returned bytes are the canonical export encoding. History is the caller's
// call: record the entry with RecordResult once the snapshot has actually
// landed somewhere.
func (c *Coordinator) CreateSnapshot(ctx context.Context, snapshotType string, opts domain.SnapshotOptions) (domain.Snapshot, []byte, error) {
	snap := domain.Snapshot{
		Metadata: domain.SnapshotMetadata{
			Version:   domain.SnapshotVersion,
			Type:      snapshotType,
			Timestamp: c.now(),
			Options:   opts,
		},
	}
	var err error
	if opts.Products {
		if snap.Data.Products, err = c.store.Products.List(ctx); err != nil {
			return domain.Snapshot{}, nil, err
		}
	}
	if opts.Customers {
		if snap.Data.Customers, err = c.store.Customers.List(ctx); err != nil {
			return domain.Snapshot{}, nil, err
		}
	}
	if opts.Invoices {
		if snap.Data.Invoices, err = c.store.Invoices.List(ctx); err != nil {
			return domain.Snapshot{}, nil, err
		}
	}
	if opts.Payments {
		if snap.Data.Payments, err = c.store.Payments.List(ctx); err != nil {
			return domain.Snapshot{}, nil, err
		}
	}
	if opts.Settings {
		settings, err := c.store.Settings.Get(ctx)
		if err != nil {
			return domain.Snapshot{}, nil, err
		}
		snap.Data.Settings = &settings
	}
	if opts.Users {
		if snap.Data.Users, err = c.store.Users.List(ctx); err != nil {
			return domain.Snapshot{}, nil, err
		}
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return domain.Snapshot{}, nil, fmt.Errorf("encode snapshot: %w", err)
	}
	c.log.Info().
		Str("action", "backup.create").
		Str("type", snapshotType).
		Int("records", recordCount(snap.Data)).
		Int("bytes", len(raw)).
		Msg("snapshot created")
	return snap, raw, nil
}

// RecordResult appends a history entry for a snapshot once the caller knows
// how the export ended, so a failed file write shows up as failed instead of
// an "ok" row for a file that never landed.
func (c *Coordinator) RecordResult(ctx context.Context, snap domain.Snapshot, sizeBytes int, status string) error {
	return c.appendHistory(ctx, domain.BackupHistoryEntry{
		ID:          xid.New("bkp"),
		Timestamp:   snap.Metadata.Timestamp,
		Type:        snap.Metadata.Type,
		SizeBytes:   sizeBytes,
		RecordCount: recordCount(snap.Data),
		Status:      status,
	})
}

func recordCount(d domain.SnapshotData) int {
	n := len(d.Products) + len(d.Customers) + len(d.Invoices) + len(d.Payments) + len(d.Users)
	if d.Settings != nil {
		n++
	}
	return n
}

// FileName is the export name for a snapshot taken at ts.
func FileName(ts time.Time) string {
	return "billing-backup-" + ts.UTC().Format("2006-01-02") + ".json"
}

// History returns backup entries, most recent first.
func (c *Coordinator) History(ctx context.Context) ([]domain.BackupHistoryEntry, error) {
	return c.store.History.List(ctx)
}

func (c *Coordinator) appendHistory(ctx context.Context, entry domain.BackupHistoryEntry) error {
	entries, err := c.store.History.List(ctx)
	if err != nil {
		return err
	}
	entries = append([]domain.BackupHistoryEntry{entry}, entries...)
	if len(entries) > historyCap {
		entries = entries[:historyCap]
	}
	return c.store.History.Put(ctx, entries)
}

// ParseSnapshot decodes and validates snapshot bytes. Unknown fields are
// tolerated so exports from newer builds still load; the metadata version is
// what gates compatibility. Anything without a recognizable version is
// ErrParse.
func ParseSnapshot(raw []byte) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	if snap.Metadata.Version == "" {
		return domain.Snapshot{}, fmt.Errorf("%w: missing snapshot metadata", domain.ErrParse)
	}
	if !strings.HasPrefix(snap.Metadata.Version, "1.") {
		return domain.Snapshot{}, fmt.Errorf("%w: unsupported snapshot version %q", domain.ErrParse, snap.Metadata.Version)
	}
	return snap, nil
}

// Restore writes a snapshot's collections back into the store. Replace mode
// overwrites each collection present in the snapshot; merge mode reconciles
// records through the merger, matching products by code, customers by phone
// and user accounts by username. Collections the snapshot does not carry are
// left alone.
func (c *Coordinator) Restore(ctx context.Context, snap domain.Snapshot, mode RestoreMode) error {
	if mode != RestoreReplace && mode != RestoreMerge {
		return &domain.ValidationError{Field: "mode", Reason: "must be replace or merge"}
	}

	if snap.Data.Products != nil {
		merged, err := restoreCollection(ctx, snap.Data.Products, c.store.Products.List, mode, KindProducts)
		if err != nil {
			return err
		}
		if err := c.store.Products.ReplaceAll(ctx, merged); err != nil {
			return err
		}
	}
	if snap.Data.Customers != nil {
		merged, err := restoreCollection(ctx, snap.Data.Customers, c.store.Customers.List, mode, KindCustomers)
		if err != nil {
			return err
		}
		if err := c.store.Customers.ReplaceAll(ctx, merged); err != nil {
			return err
		}
	}
	if snap.Data.Invoices != nil {
		merged, err := restoreCollection(ctx, snap.Data.Invoices, c.store.Invoices.List, mode, KindInvoices)
		if err != nil {
			return err
		}
		if err := c.store.Invoices.ReplaceAll(ctx, merged); err != nil {
			return err
		}
	}
	if snap.Data.Payments != nil {
		merged, err := restoreCollection(ctx, snap.Data.Payments, c.store.Payments.List, mode, KindPayments)
		if err != nil {
			return err
		}
		if err := c.store.Payments.ReplaceAll(ctx, merged); err != nil {
			return err
		}
	}
	if snap.Data.Settings != nil {
		if err := c.store.Settings.Put(ctx, *snap.Data.Settings); err != nil {
			return err
		}
	}
	if snap.Data.Users != nil {
		users := snap.Data.Users
		if mode == RestoreMerge {
			existing, err := c.store.Users.List(ctx)
			if err != nil {
				return err
			}
			users = mergeUsers(existing, users)
		}
		if err := c.store.Users.ReplaceAll(ctx, users); err != nil {
			return err
		}
	}

	c.log.Info().
		Str("action", "backup.restore").
		Str("mode", string(mode)).
		Time("snapshot_ts", snap.Metadata.Timestamp).
		Msg("snapshot restored")
	return nil
}

// mergeUsers reconciles snapshot accounts into the local ones. Accounts have
// no id; the username is their identity. Matched usernames take the incoming
// record, local accounts the snapshot does not know survive.
func mergeUsers(existing, incoming []domain.UserAccount) []domain.UserAccount {
	out := make([]domain.UserAccount, len(existing))
	copy(out, existing)
	index := make(map[string]int, len(out))
	for i, u := range out {
		index[strings.ToLower(u.Username)] = i
	}
	for _, u := range incoming {
		if i, ok := index[strings.ToLower(u.Username)]; ok {
			out[i] = u
			continue
		}
		out = append(out, u)
	}
	return out
}

func restoreCollection[T any](ctx context.Context, incoming []T, list func(context.Context) ([]T, error), mode RestoreMode, kind Kind) ([]T, error) {
	if mode == RestoreReplace {
		return incoming, nil
	}
	existing, err := list(ctx)
	if err != nil {
		return nil, err
	}
	return MergeTyped(existing, incoming, kind)
}

// MergeTyped runs Merge over typed slices by round-tripping through JSON
// field maps, so absent incoming fields are preserved rather than zeroed.
func MergeTyped[T any](existing, incoming []T, kind Kind) ([]T, error) {
	em, err := toMaps(existing)
	if err != nil {
		return nil, err
	}
	im, err := toMaps(incoming)
	if err != nil {
		return nil, err
	}
	return fromMaps[T](Merge(em, im, kind))
}

func toMaps[T any](items []T) ([]map[string]any, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	var maps []map[string]any
	if err := json.Unmarshal(raw, &maps); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	return maps, nil
}

func fromMaps[T any](maps []map[string]any) ([]T, error) {
	raw, err := json.Marshal(maps)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	return items, nil
}
