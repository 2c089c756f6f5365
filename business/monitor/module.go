// Package monitor implements the monitoring loop that ties pricing and
// arbitrage together on a fixed interval.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	arbitrageDI "github.com/fd1az/solana-price-monitor/business/arbitrage/di"
	chainDI "github.com/fd1az/solana-price-monitor/business/chain/di"
	"github.com/fd1az/solana-price-monitor/business/monitor/app"
	monitorDI "github.com/fd1az/solana-price-monitor/business/monitor/di"
	"github.com/fd1az/solana-price-monitor/business/monitor/infra"
	pricingDI "github.com/fd1az/solana-price-monitor/business/pricing/di"
	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/config"
	"github.com/fd1az/solana-price-monitor/internal/di"
	"github.com/fd1az/solana-price-monitor/internal/health"
	"github.com/fd1az/solana-price-monitor/internal/logger"
	"github.com/fd1az/solana-price-monitor/internal/monolith"
	"github.com/fd1az/solana-price-monitor/pkg/ui"
)

// pinger is implemented by the Redis price mirror.
type pinger interface {
	Ping(ctx context.Context) error
}

// Module implements the monitor bounded context.
type Module struct {
	monitor   *app.Monitor
	probes    []app.Probe
	redis     pinger
	startedAt time.Time
}

// RegisterServices registers all monitor services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Probes (private - upstream status for the reporter and health)
	di.RegisterToken(c, monitorDI.Probes, func(sr di.ServiceRegistry) []app.Probe {
		cfg := sr.Get("config").(*config.Config)

		var probes []app.Probe
		for _, p := range infra.SourceProbes(pricingDI.GetResolver(sr).Sources()) {
			probes = append(probes, p)
		}
		if len(cfg.Pools) > 0 {
			probes = append(probes, infra.NewChainProbe(chainDI.GetChainService(sr).Status))
		}
		return probes
	})

	// Register Monitor (public - main drives it)
	di.RegisterToken(c, monitorDI.Monitor, func(sr di.ServiceRegistry) *app.Monitor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		opts := []app.Option{
			app.WithScanner(arbitrageDI.GetScanner(sr)),
			app.WithReporter(arbitrageDI.GetReporter(sr)),
			app.WithProbes(monitorDI.GetProbes(sr)...),
		}
		if cfg.Monitor.TUIMode {
			opts = append(opts, app.WithCycleHook(func(s app.Stats) {
				ui.Send(ui.CycleMsg{
					Cycle:    s.Cycles,
					Duration: s.LastDuration,
					Resolved: s.LastResolved,
					Failed:   s.LastFailed,
				})
			}))
		}

		return app.NewMonitor(app.Config{
			Tokens:      cfg.WatchedMints(),
			Interval:    cfg.Monitor.Interval(),
			Concurrency: cfg.Monitor.Concurrency,
		}, pricingDI.GetResolver(sr), registry, log, opts...)
	})

	return nil
}

// Startup resolves the monitor. The loop itself is started by main.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	m.monitor = monitorDI.GetMonitor(mono.Services())
	m.probes = monitorDI.GetProbes(mono.Services())
	if p, ok := pricingDI.GetPublisher(mono.Services()).(pinger); ok {
		m.redis = p
	}
	m.startedAt = time.Now()

	log.Info(ctx, "monitor module started",
		"tokens", len(cfg.WatchedMints()),
		"interval", cfg.Monitor.Interval().String(),
		"concurrency", cfg.Monitor.Concurrency,
		"probes", len(m.probes))
	return nil
}

// Monitor returns the monitor resolved at startup.
func (m *Module) Monitor() *app.Monitor {
	return m.monitor
}

// HealthChecks returns the checks main registers on the health server.
// Price sources are healthy while at least one breaker is closed, or when
// none are configured. The redis check exists only while the mirror is on.
func (m *Module) HealthChecks(maxCycleAge time.Duration) map[string]health.CheckFunc {
	checks := map[string]health.CheckFunc{
		"monitor": func(ctx context.Context) (bool, string) {
			if m.monitor == nil {
				return false, "not started"
			}
			return m.monitor.CheckCycleAge(time.Now(), m.startedAt, maxCycleAge)
		},
	}

	var sources []app.Probe
	for _, p := range m.probes {
		if p.Name() == infra.ChainProbeName {
			checks["solana_rpc"] = probeCheck(p)
			continue
		}
		sources = append(sources, p)
	}

	checks["price_sources"] = func(ctx context.Context) (bool, string) {
		if len(sources) == 0 {
			return true, "no sources configured"
		}
		var open []string
		for _, p := range sources {
			if connected, _ := p.Status(); !connected {
				open = append(open, p.Name())
			}
		}
		if len(open) == len(sources) {
			return false, "all circuits open"
		}
		if len(open) > 0 {
			return true, fmt.Sprintf("circuit open: %s", strings.Join(open, ","))
		}
		return true, ""
	}

	if m.redis != nil {
		checks["redis"] = func(ctx context.Context) (bool, string) {
			if err := m.redis.Ping(ctx); err != nil {
				return false, err.Error()
			}
			return true, ""
		}
	}
	return checks
}

func probeCheck(p app.Probe) health.CheckFunc {
	return func(ctx context.Context) (bool, string) {
		connected, latency := p.Status()
		if !connected {
			return false, "circuit open"
		}
		if latency > 0 {
			return true, fmt.Sprintf("latency %s", latency.Round(time.Millisecond))
		}
		return true, ""
	}
}
