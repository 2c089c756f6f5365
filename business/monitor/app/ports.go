// Package app contains the monitoring loop and its ports.
package app

import (
	"context"
	"time"

	arbitrageDomain "github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/solana-price-monitor/business/pricing/domain"
)

// PriceResolver resolves token prices through the cache and sources.
type PriceResolver interface {
	Resolve(ctx context.Context, mint string) (pricingDomain.PriceRecord, error)
	EvictStale(ctx context.Context, now time.Time) int
}

// ArbitrageScanner runs the cross-venue pass for one token.
type ArbitrageScanner interface {
	HasPools(mint string) bool
	Scan(ctx context.Context, mint string) *arbitrageDomain.Opportunity
}

// Reporter receives resolved prices and upstream status changes.
type Reporter interface {
	UpdatePrice(rec pricingDomain.PriceRecord)
	UpdateConnectionStatus(name string, connected bool, latency time.Duration)
}

// Probe reports the state of one upstream.
type Probe interface {
	Name() string
	Status() (connected bool, latency time.Duration)
}
