// Package app contains application services and port definitions for the chain context.
package app

import (
	"context"

	"github.com/fd1az/solana-price-monitor/business/chain/domain"
)

// BalanceReader reads token account balances from the chain.
type BalanceReader interface {
	// TokenBalance returns the balance of one token account.
	TokenBalance(ctx context.Context, account string) (domain.TokenBalance, error)

	// Status reports the reader's connection state.
	Status() domain.ReaderStatus
}

// PoolProvider lists the pools known for a token mint.
type PoolProvider interface {
	Pools(mint string) []domain.PoolVaults
}
