// Package di contains dependency injection tokens for the chain context.
package di

import (
	"github.com/fd1az/solana-price-monitor/business/chain/app"
	"github.com/fd1az/solana-price-monitor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ChainService = di.NewToken[*app.ChainService]("chain.ChainService")
)

// Private dependency tokens - internal to chain module
var (
	BalanceReader = di.NewToken[app.BalanceReader]("chain:balanceReader")
	PoolProvider  = di.NewToken[app.PoolProvider]("chain:poolProvider")
)

// Helper functions for type-safe access
func GetChainService(c di.ServiceRegistry) *app.ChainService {
	return di.GetToken(c, ChainService)
}

func GetBalanceReader(c di.ServiceRegistry) app.BalanceReader {
	return di.GetToken(c, BalanceReader)
}

func GetPoolProvider(c di.ServiceRegistry) app.PoolProvider {
	return di.GetToken(c, PoolProvider)
}
