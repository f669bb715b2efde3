package store

import (
	"context"
	"encoding/json"
	"fmt"

	"billingpro/internal/domain"
)

// SettingsRepository persists the single settings document. Get on an empty
// store returns the zero value rather than ErrNotFound so callers can layer
// defaults on top.
type SettingsRepository struct {
	kv KV
}

func (r *SettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	raw, err := r.kv.Get(ctx, keySettings)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if raw == nil {
		return domain.Settings{}, nil
	}
	var s domain.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) Put(ctx context.Context, s domain.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := r.kv.Set(ctx, keySettings, raw); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
