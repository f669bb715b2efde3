package store

import (
	"context"

	"billingpro/internal/domain"
)

// HistoryRepository keeps the backup history list. The coordinator owns
// ordering and the cap; the repository just stores the slice.
type HistoryRepository struct {
	kv KV
}

func (r *HistoryRepository) List(ctx context.Context) ([]domain.BackupHistoryEntry, error) {
	return loadList[domain.BackupHistoryEntry](ctx, r.kv, keyBackupHistory)
}

func (r *HistoryRepository) Put(ctx context.Context, entries []domain.BackupHistoryEntry) error {
	return saveList(ctx, r.kv, keyBackupHistory, entries)
}
