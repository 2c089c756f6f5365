package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/cache"
)

const meterName = "github.com/fd1az/solana-price-monitor/business/pricing"

// Clock returns the current time.
type Clock func() time.Time

// PriceCache keeps the latest resolved record per mint. An entry is valid
// while now - record.Timestamp < ttl. Stale entries stay in memory until
// EvictStale removes them.
type PriceCache struct {
	entries *cache.Cache[string, domain.PriceRecord]
	ttl     time.Duration
	now     Clock

	hits      metric.Int64Counter
	misses    metric.Int64Counter
	evictions metric.Int64Counter
}

// NewPriceCache creates an empty cache. A nil clock uses time.Now.
func NewPriceCache(ttl time.Duration, clock Clock) *PriceCache {
	if clock == nil {
		clock = time.Now
	}
	c := &PriceCache{
		entries: cache.New[string, domain.PriceRecord](0, cache.WithClock(clock)),
		ttl:     ttl,
		now:     clock,
	}
	c.initMetrics()
	return c
}

func (c *PriceCache) initMetrics() {
	meter := otel.Meter(meterName)
	c.hits, _ = meter.Int64Counter("price_cache_hits_total",
		metric.WithDescription("Price lookups served from cache"))
	c.misses, _ = meter.Int64Counter("price_cache_misses_total",
		metric.WithDescription("Price lookups not served from cache"))
	c.evictions, _ = meter.Int64Counter("price_cache_evictions_total",
		metric.WithDescription("Stale price entries removed"))
}

// TTL returns the freshness window.
func (c *PriceCache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached record for mint if it is still fresh.
func (c *PriceCache) Get(ctx context.Context, mint string) (domain.PriceRecord, bool) {
	rec, ok := c.entries.Get(ctx, mint)
	if ok {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
	return rec, ok
}

// Put stores record under mint, replacing any previous entry.
func (c *PriceCache) Put(ctx context.Context, mint string, record domain.PriceRecord) {
	c.entries.SetUntil(ctx, mint, record, record.ExpiresAt(c.ttl))
}

// EvictStale removes every entry with now - timestamp >= ttl and returns
// how many were removed.
func (c *PriceCache) EvictStale(ctx context.Context, now time.Time) int {
	n := c.entries.DeleteExpired(now)
	if n > 0 {
		c.evictions.Add(ctx, int64(n))
	}
	return n
}

// Len counts entries, stale ones included.
func (c *PriceCache) Len() int {
	return c.entries.Len()
}

// Close releases the underlying cache.
func (c *PriceCache) Close() {
	c.entries.Close()
}
