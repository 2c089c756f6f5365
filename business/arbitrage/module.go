// Package arbitrage implements the arbitrage bounded context: implied pool
// prices and cross-venue opportunity detection.
package arbitrage

import (
	"context"

	"github.com/fd1az/solana-price-monitor/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/solana-price-monitor/business/arbitrage/di"
	"github.com/fd1az/solana-price-monitor/business/arbitrage/infra"
	chainDI "github.com/fd1az/solana-price-monitor/business/chain/di"
	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/config"
	"github.com/fd1az/solana-price-monitor/internal/di"
	"github.com/fd1az/solana-price-monitor/internal/logger"
	"github.com/fd1az/solana-price-monitor/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct {
	reporter app.Reporter
}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Calculator (private - reads reserves through the chain module)
	di.RegisterToken(c, arbitrageDI.Calculator, func(sr di.ServiceRegistry) *app.PoolPriceCalculator {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewPoolPriceCalculator(chainDI.GetChainService(sr), log)
	})

	// Register Detector (private - internal dependency)
	di.RegisterToken(c, arbitrageDI.Detector, func(sr di.ServiceRegistry) *app.Detector {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewDetector(app.DetectorConfig{ThresholdPct: cfg.Arbitrage.ThresholdPct}, log)
	})

	// Register Reporter (public - the monitor pushes prices through it)
	di.RegisterToken(c, arbitrageDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		registry := sr.Get("assetRegistry").(*asset.Registry)
		if cfg.Monitor.TUIMode {
			return infra.NewTUIReporter(registry)
		}
		return infra.NewConsoleReporter(registry)
	})

	// Register Scanner (public - exposed to other modules)
	di.RegisterToken(c, arbitrageDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewScanner(
			arbitrageDI.GetCalculator(sr),
			arbitrageDI.GetDetector(sr),
			arbitrageDI.GetReporter(sr),
			log,
		)
	})

	return nil
}

// Startup initializes the arbitrage module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	m.reporter = arbitrageDI.GetReporter(sr)
	if err := m.reporter.Start(ctx); err != nil {
		return err
	}

	detector := arbitrageDI.GetDetector(sr)
	log.Info(ctx, "arbitrage module started",
		"threshold_pct", detector.Threshold(),
		"tui", mono.Config().Monitor.TUIMode)
	return nil
}

// Close stops the reporter.
func (m *Module) Close() error {
	if m.reporter == nil {
		return nil
	}
	return m.reporter.Stop()
}
