// Package app contains application services and port definitions for the pricing context.
package app

import (
	"context"
	"time"

	"github.com/fd1az/solana-price-monitor/business/pricing/domain"
)

// PriceSource is one remote price provider.
type PriceSource interface {
	// Name identifies the source in logs, weights and record.Source.
	Name() string

	// Fetch returns a fresh record for mint. Any failure is an error
	// with code SOURCE_UNAVAILABLE (or a more specific upstream code).
	Fetch(ctx context.Context, mint string) (domain.PriceRecord, error)
}

// NumeraireQuoter returns the USD price of the numeraire asset.
type NumeraireQuoter interface {
	NumeraireUSD(ctx context.Context) (float64, error)
}

// PricePublisher mirrors resolved prices to an external store.
type PricePublisher interface {
	Publish(ctx context.Context, record domain.PriceRecord) error
	Close() error
}

// PriceResolver is what other contexts depend on.
type PriceResolver interface {
	Resolve(ctx context.Context, mint string) (domain.PriceRecord, error)
	EvictStale(ctx context.Context, now time.Time) int
	Stats() domain.MarketStats
}
