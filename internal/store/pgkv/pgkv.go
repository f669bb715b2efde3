// Package pgkv is an alternative backend for deployments that already run
// PostgreSQL. Selected when DATABASE_URL is set. The process model is still
// single-writer; Postgres adds durability, not coordination.
package pgkv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `CREATE TABLE IF NOT EXISTS collections (
	key   TEXT PRIMARY KEY,
	value BYTEA NOT NULL
)`

type KV struct {
	pool *pgxpool.Pool
}

func Open(ctx context.Context, databaseURL string) (*KV, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &KV{pool: pool}, nil
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := k.pool.QueryRow(ctx,
		`SELECT value FROM collections WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := k.pool.Exec(ctx,
		`INSERT INTO collections (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (k *KV) Remove(ctx context.Context, key string) error {
	_, err := k.pool.Exec(ctx, `DELETE FROM collections WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (k *KV) Close() error {
	k.pool.Close()
	return nil
}
