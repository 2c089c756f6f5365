// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"time"

	"github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	chainDomain "github.com/fd1az/solana-price-monitor/business/chain/domain"
	pricingDomain "github.com/fd1az/solana-price-monitor/business/pricing/domain"
)

// ReserveReader supplies pools and their reserves.
type ReserveReader interface {
	Pools(mint string) []chainDomain.PoolVaults
	ReadReserves(ctx context.Context, vaults chainDomain.PoolVaults) (chainDomain.PoolReserves, error)
}

// Reporter defines the interface for reporting arbitrage opportunities.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report sends an arbitrage opportunity to be displayed/logged.
	Report(opp *domain.Opportunity)

	// UpdatePrice updates the current price display for one token.
	UpdatePrice(rec pricingDomain.PriceRecord)

	// UpdateComparison shows the latest cross-venue view of a token.
	UpdateComparison(cmp *domain.Comparison)

	// UpdateConnectionStatus updates a connection status display.
	UpdateConnectionStatus(name string, connected bool, latency time.Duration)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
