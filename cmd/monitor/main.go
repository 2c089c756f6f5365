// Package main is the entry point for the Solana price monitor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/solana-price-monitor/business/arbitrage"
	"github.com/fd1az/solana-price-monitor/business/chain"
	"github.com/fd1az/solana-price-monitor/business/monitor"
	"github.com/fd1az/solana-price-monitor/business/pricing"
	"github.com/fd1az/solana-price-monitor/internal/apm"
	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/config"
	"github.com/fd1az/solana-price-monitor/internal/health"
	"github.com/fd1az/solana-price-monitor/internal/logger"
	"github.com/fd1az/solana-price-monitor/internal/metrics"
	"github.com/fd1az/solana-price-monitor/internal/monolith"
	"github.com/fd1az/solana-price-monitor/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	configPath string
	tui        bool
	once       bool
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&opts.tui, "tui", false, "Run with the terminal dashboard")
	flag.BoolVar(&opts.once, "once", false, "Run a single cycle and exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("solana-price-monitor %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}
	if opts.once {
		opts.tui = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Monitor.TUIMode = opts.tui

	// The TUI owns the terminal, so logs go to a file instead.
	var out io.Writer = os.Stderr
	if opts.tui {
		f, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			out = io.Discard
		} else {
			defer f.Close()
			out = f
		}
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, apm.TraceID)
	log.Info(ctx, "starting solana price monitor",
		"version", version,
		"environment", cfg.App.Environment,
		"tokens", len(cfg.Tokens))

	shutdownTelemetry := setupTelemetry(ctx, cfg, log)
	defer shutdownTelemetry()

	mono, err := monolith.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	monitorModule := &monitor.Module{}
	modules := []monolith.Module{
		&chain.Module{},     // balance reader and pool registry
		&pricing.Module{},   // sources, cache, resolver
		&arbitrage.Module{}, // depends on chain
		monitorModule,       // depends on pricing and arbitrage
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	start := func() error {
		if err := mono.StartModules(ctx, modules...); err != nil {
			return fmt.Errorf("failed to start modules: %w", err)
		}
		if cfg.Health.Enabled {
			hs := health.NewServer(cfg.Health.Port, version)
			for name, check := range monitorModule.HealthChecks(cfg.Health.MaxCycleAge) {
				hs.RegisterCheck(name, check)
			}
			hs.Start(func(err error) {
				log.Warn(ctx, "health server stopped", "port", cfg.Health.Port, "error", err)
			})
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = hs.Stop(shutdownCtx)
			}()
			log.Info(ctx, "health server started", "port", cfg.Health.Port)
		}
		return nil
	}

	switch {
	case opts.once:
		if err := start(); err != nil {
			return err
		}
		stats := monitorModule.Monitor().RunOnce(ctx)
		log.Info(ctx, "single cycle complete",
			"resolved", stats.LastResolved,
			"failed", stats.LastFailed,
			"opportunities", stats.Opportunities)
		return nil
	case opts.tui:
		return runTUI(ctx, cfg, mono.AssetRegistry(), start, monitorModule)
	default:
		if err := start(); err != nil {
			return err
		}
		err := monitorModule.Monitor().Run(ctx)
		log.Info(ctx, "shutting down")
		return err
	}
}

// setupTelemetry installs tracing and metrics when enabled and returns the
// shutdown function.
func setupTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) func() {
	if !cfg.Telemetry.Enabled {
		return func() {}
	}

	tp, err := apm.NewTraceProvider(ctx, log, apm.Config{
		Provider:    apm.Provider(cfg.Telemetry.TraceProvider),
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     apm.ParseHeaders(cfg.Telemetry.OTLPHeaders),
		Insecure:    cfg.Telemetry.OTLPInsecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Warn(ctx, "tracing disabled", "error", err)
	}

	mp, err := metrics.NewMetricProvider(ctx,
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithVersion(version),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	)
	if err != nil {
		log.Warn(ctx, "metrics disabled", "error", err)
	}

	var prom *metrics.PrometheusServer
	if mp != nil {
		prom = metrics.NewPrometheusServer(cfg.Telemetry.MetricsPort)
		prom.Start(func(err error) {
			log.Warn(ctx, "prometheus server stopped", "error", err)
		})
		log.Info(ctx, "prometheus metrics server started", "port", cfg.Telemetry.MetricsPort)
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if prom != nil {
			_ = prom.Stop(shutdownCtx)
		}
		if mp != nil {
			_ = mp.Shutdown(shutdownCtx)
		}
		if tp != nil {
			_ = tp.Stop()
		}
	}
}

func runTUI(ctx context.Context, cfg *config.Config, registry *asset.Registry, start func() error, mod *monitor.Module) error {
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	numeraire := registry.Label(asset.Mint(cfg.Pricing.Numeraire.Mint))
	p := tea.NewProgram(ui.New(numeraire), tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Program = p

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-loopCtx.Done():
			errCh <- nil
			return
		}

		ui.Send(ui.StartupMsg{Step: ui.StepConfig, Status: "done"})
		ui.Send(ui.StartupMsg{Step: ui.StepSolana, Status: "connecting"})
		ui.Send(ui.StartupMsg{Step: ui.StepSources, Status: "connecting"})
		if err := start(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			ui.Send(ui.StartupMsg{Step: ui.StepSources, Status: "failed"})
			errCh <- err
			return
		}
		ui.Send(ui.StartupMsg{Step: ui.StepSolana, Status: "connected"})
		ui.Send(ui.StartupMsg{Step: ui.StepSources, Status: "connected"})

		errCh <- mod.Monitor().Run(loopCtx)
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Quitting the TUI ends the loop as well.
	cancelLoop()
	select {
	case err := <-errCh:
		return err
	case <-time.After(shutdownTimeout):
		return nil
	}
}
