// Package cache provides an optional read-through cache for computed
// customer summaries. The redis implementation is used when a redis address
// is configured; everything degrades to Noop otherwise.
package cache

import (
	"context"

	"billingpro/internal/domain"
)

// Noop satisfies the summary cache contract without caching anything.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) GetSummary(context.Context, string) (domain.CustomerSummary, bool) {
	return domain.CustomerSummary{}, false
}

func (Noop) SetSummary(context.Context, string, domain.CustomerSummary) {}

func (Noop) InvalidateSummary(context.Context, string) {}
