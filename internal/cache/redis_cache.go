package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"billingpro/internal/domain"
)

const summaryKeyPrefix = "billingpro:summary:"

// Redis caches customer summaries with a short TTL. Cache failures are
// treated as misses; the ledger recomputes and the store stays the source
// of truth.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func (r *Redis) GetSummary(ctx context.Context, customerID string) (domain.CustomerSummary, bool) {
	raw, err := r.client.Get(ctx, summaryKeyPrefix+customerID).Bytes()
	if err != nil {
		return domain.CustomerSummary{}, false
	}
	var s domain.CustomerSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.CustomerSummary{}, false
	}
	return s, true
}

func (r *Redis) SetSummary(ctx context.Context, customerID string, summary domain.CustomerSummary) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	r.client.Set(ctx, summaryKeyPrefix+customerID, raw, r.ttl)
}

func (r *Redis) InvalidateSummary(ctx context.Context, customerID string) {
	r.client.Del(ctx, summaryKeyPrefix+customerID)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
