// Package pools serves pool vault pairs from configuration.
package pools

import (
	"github.com/fd1az/solana-price-monitor/business/chain/app"
	"github.com/fd1az/solana-price-monitor/business/chain/domain"
	"github.com/fd1az/solana-price-monitor/internal/config"
)

var _ app.PoolProvider = (*StaticProvider)(nil)

// StaticProvider is an immutable mint -> pools registry.
type StaticProvider struct {
	byMint map[string][]domain.PoolVaults
}

// NewStaticProvider indexes pools by mint, preserving configuration order.
func NewStaticProvider(pools []config.PoolConfig) *StaticProvider {
	byMint := make(map[string][]domain.PoolVaults)
	for _, p := range pools {
		byMint[p.Mint] = append(byMint[p.Mint], domain.PoolVaults{
			Venue:      p.Venue,
			Pool:       p.Pool,
			BaseVault:  p.BaseVault,
			QuoteVault: p.QuoteVault,
		})
	}
	return &StaticProvider{byMint: byMint}
}

// Pools returns a copy of the pools registered for mint.
func (p *StaticProvider) Pools(mint string) []domain.PoolVaults {
	src := p.byMint[mint]
	if len(src) == 0 {
		return nil
	}
	out := make([]domain.PoolVaults, len(src))
	copy(out, src)
	return out
}

// Count returns the number of pools across all mints.
func (p *StaticProvider) Count() int {
	n := 0
	for _, v := range p.byMint {
		n += len(v)
	}
	return n
}
