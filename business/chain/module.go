// Package chain implements the chain bounded context: token account
// balances over Solana JSON-RPC and the configured pool registry.
package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/fd1az/solana-price-monitor/business/chain/app"
	chainDI "github.com/fd1az/solana-price-monitor/business/chain/di"
	"github.com/fd1az/solana-price-monitor/business/chain/infra/pools"
	"github.com/fd1az/solana-price-monitor/business/chain/infra/solana"
	"github.com/fd1az/solana-price-monitor/internal/config"
	"github.com/fd1az/solana-price-monitor/internal/di"
	"github.com/fd1az/solana-price-monitor/internal/logger"
	"github.com/fd1az/solana-price-monitor/internal/monolith"
)

// Module implements the chain bounded context.
type Module struct{}

// RegisterServices registers all chain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register BalanceReader (private - internal dependency)
	di.RegisterToken(c, chainDI.BalanceReader, func(sr di.ServiceRegistry) app.BalanceReader {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		client := sr.Get("rpcClient").(*rpc.Client)

		readerCfg := solana.DefaultBalanceReaderConfig(cfg.Solana.RPCURL)
		readerCfg.Commitment = cfg.Solana.Commitment
		readerCfg.Timeout = cfg.Solana.Timeout
		readerCfg.RequestsPerSecond = cfg.Solana.RequestsPerSecond
		readerCfg.Burst = cfg.Solana.Burst

		reader, err := solana.NewBalanceReader(client, readerCfg, log)
		if err != nil {
			panic("failed to create balance reader: " + err.Error())
		}
		return reader
	})

	// Register PoolProvider (private - internal dependency)
	di.RegisterToken(c, chainDI.PoolProvider, func(sr di.ServiceRegistry) app.PoolProvider {
		cfg := sr.Get("config").(*config.Config)
		return pools.NewStaticProvider(cfg.Pools)
	})

	// Register ChainService (public - exposed to other modules)
	di.RegisterToken(c, chainDI.ChainService, func(sr di.ServiceRegistry) *app.ChainService {
		return app.NewChainService(chainDI.GetBalanceReader(sr), chainDI.GetPoolProvider(sr))
	})

	return nil
}

// Startup initializes the chain module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	svc := chainDI.GetChainService(mono.Services())
	if len(cfg.Pools) == 0 {
		log.Info(ctx, "no pools configured, arbitrage detection disabled")
	}

	log.Info(ctx, "chain module started",
		"rpc_url", svc.Status().Endpoint,
		"commitment", cfg.Solana.Commitment,
		"pools", len(cfg.Pools))
	return nil
}
