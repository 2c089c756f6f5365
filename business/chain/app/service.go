package app

import (
	"context"

	"github.com/fd1az/solana-price-monitor/business/chain/domain"
)

// ChainService reads pool reserves through a BalanceReader.
type ChainService struct {
	reader BalanceReader
	pools  PoolProvider
}

// NewChainService creates a new ChainService.
func NewChainService(reader BalanceReader, pools PoolProvider) *ChainService {
	return &ChainService{
		reader: reader,
		pools:  pools,
	}
}

// Pools returns the configured pools for mint.
func (s *ChainService) Pools(mint string) []domain.PoolVaults {
	return s.pools.Pools(mint)
}

// ReadReserves reads both vault balances of a pool.
func (s *ChainService) ReadReserves(ctx context.Context, vaults domain.PoolVaults) (domain.PoolReserves, error) {
	base, err := s.reader.TokenBalance(ctx, vaults.BaseVault)
	if err != nil {
		return domain.PoolReserves{}, err
	}
	quote, err := s.reader.TokenBalance(ctx, vaults.QuoteVault)
	if err != nil {
		return domain.PoolReserves{}, err
	}
	return domain.PoolReserves{
		Venue: vaults.Venue,
		Pool:  vaults.Pool,
		Base:  base,
		Quote: quote,
	}, nil
}

// Status exposes the reader status for health checks.
func (s *ChainService) Status() domain.ReaderStatus {
	return s.reader.Status()
}
