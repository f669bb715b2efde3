// Package store defines the persistence contract and the typed
// repositories built on top of it. The underlying store is a flat
// key-value space; each collection is one JSON-encoded array under a
// well-known key, so a collection write is a single Set and therefore
// atomic with respect to the backend.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// KV is the narrow storage contract every backend implements.
// Get returns (nil, nil) when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

const (
	keyProducts      = "products"
	keyCustomers     = "customers"
	keyInvoices      = "invoices"
	keyPayments      = "payments"
	keySettings      = "settings"
	keyUsers         = "users"
	keyBackupHistory = "backup_history"

	keySeqInvoice  = "seq:invoice"
	keySeqProduct  = "seq:product"
	keySeqCustomer = "seq:customer"
)

// Store bundles the typed repositories over one KV backend.
type Store struct {
	kv KV

	Products  *ProductRepository
	Customers *CustomerRepository
	Invoices  *InvoiceRepository
	Payments  *PaymentRepository
	Settings  *SettingsRepository
	Users     *UserRepository
	History   *HistoryRepository
}

func New(kv KV) *Store {
	s := &Store{kv: kv}
	s.Products = &ProductRepository{kv: kv}
	s.Customers = &CustomerRepository{kv: kv}
	s.Invoices = &InvoiceRepository{kv: kv}
	s.Payments = &PaymentRepository{kv: kv}
	s.Settings = &SettingsRepository{kv: kv}
	s.Users = &UserRepository{kv: kv}
	s.History = &HistoryRepository{kv: kv}
	return s
}

func (s *Store) Close() error {
	return s.kv.Close()
}

func loadList[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if raw == nil {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

func saveList[T any](ctx context.Context, kv KV, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// nextSeq bumps and persists a numeric sequence. seed supplies the starting
// point when the sequence key does not exist yet, so sequences adopted over
// pre-existing data continue past the highest number already in use.
func nextSeq(ctx context.Context, kv KV, key string, seed func() (int64, error)) (int64, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	var current int64
	if raw == nil {
		if seed != nil {
			current, err = seed()
			if err != nil {
				return 0, err
			}
		}
	} else {
		current, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	next := current + 1
	if err := kv.Set(ctx, key, []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, fmt.Errorf("save %s: %w", key, err)
	}
	return next, nil
}
