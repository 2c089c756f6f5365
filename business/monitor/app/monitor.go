package app

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

const (
	tracerName = "github.com/fd1az/solana-price-monitor/business/monitor"
	meterName  = "github.com/fd1az/solana-price-monitor/business/monitor"
)

// Config holds monitor configuration.
type Config struct {
	Tokens   []string
	Interval time.Duration
	// Concurrency bounds the per-cycle token fan-out. Values below 1 mean 1.
	Concurrency int
}

// Stats describes monitor progress.
type Stats struct {
	Cycles        uint64
	LastCycleAt   time.Time
	LastDuration  time.Duration
	LastResolved  int
	LastFailed    int
	Failures      uint64
	Opportunities uint64
}

// CycleHook is called after every completed cycle.
type CycleHook func(Stats)

// Option configures a Monitor.
type Option func(*Monitor)

// WithScanner enables the arbitrage pass.
func WithScanner(s ArbitrageScanner) Option {
	return func(m *Monitor) { m.scanner = s }
}

// WithReporter forwards resolved prices and status changes.
func WithReporter(r Reporter) Option {
	return func(m *Monitor) { m.reporter = r }
}

// WithProbes registers upstreams whose status is reported when it changes.
func WithProbes(probes ...Probe) Option {
	return func(m *Monitor) { m.probes = append(m.probes, probes...) }
}

// WithCycleHook registers fn to run after each cycle.
func WithCycleHook(fn CycleHook) Option {
	return func(m *Monitor) { m.onCycle = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// Monitor periodically resolves every watched token and scans venues.
type Monitor struct {
	config   Config
	resolver PriceResolver
	scanner  ArbitrageScanner
	reporter Reporter
	probes   []Probe
	registry *asset.Registry
	logger   logger.LoggerInterface
	tracer   trace.Tracer
	now      func() time.Time
	onCycle  CycleHook

	mu         sync.RWMutex
	stats      Stats
	lastStatus map[string]bool

	cycles        metric.Int64Counter
	resolveFails  metric.Int64Counter
	cycleDuration metric.Float64Histogram
}

// NewMonitor creates a new Monitor. registry may be nil.
func NewMonitor(cfg Config, resolver PriceResolver, registry *asset.Registry, log logger.LoggerInterface, opts ...Option) *Monitor {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if registry == nil {
		registry = asset.NewRegistry()
	}
	m := &Monitor{
		config:     cfg,
		resolver:   resolver,
		registry:   registry,
		logger:     log,
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
		lastStatus: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initMetrics()
	return m
}

func (m *Monitor) initMetrics() {
	meter := otel.Meter(meterName)
	m.cycles, _ = meter.Int64Counter("monitor_cycles_total",
		metric.WithDescription("Completed monitor cycles"))
	m.resolveFails, _ = meter.Int64Counter("monitor_resolve_failures_total",
		metric.WithDescription("Token resolutions that produced no price"))
	m.cycleDuration, _ = meter.Float64Histogram("monitor_cycle_duration_seconds",
		metric.WithDescription("Monitor cycle duration"),
		metric.WithUnit("s"))
}

// Run executes cycles every interval until ctx is cancelled. Cancellation
// is a normal exit and returns nil.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info(ctx, "price monitor running",
		"tokens", len(m.config.Tokens),
		"interval", m.config.Interval.String(),
		"concurrency", m.config.Concurrency)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return filterCanceled(ctx.Err())
		case <-timer.C:
		}

		m.RunOnce(ctx)
		if ctx.Err() != nil {
			return filterCanceled(ctx.Err())
		}
		timer.Reset(m.config.Interval)
	}
}

func filterCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// RunOnce performs a single cycle: resolve every token, scan venues for
// tokens with pools, then evict stale cache entries.
func (m *Monitor) RunOnce(ctx context.Context) Stats {
	start := m.now()
	ctx, span := m.tracer.Start(ctx, "monitor.cycle",
		trace.WithAttributes(attribute.Int("tokens", len(m.config.Tokens))))
	defer span.End()

	var resolved, failed int
	var mu sync.Mutex
	m.forEachToken(ctx, func(ctx context.Context, mint string) {
		ok := m.resolveToken(ctx, mint)
		mu.Lock()
		if ok {
			resolved++
		} else {
			failed++
		}
		mu.Unlock()
	})

	var found int
	if m.scanner != nil {
		m.forEachToken(ctx, func(ctx context.Context, mint string) {
			if !m.scanner.HasPools(mint) {
				return
			}
			if opp := m.scanner.Scan(ctx, mint); opp != nil {
				m.logger.Info(ctx, "arbitrage opportunity",
					"id", opp.ID,
					"token", m.label(mint),
					"summary", opp.Summary())
				mu.Lock()
				found++
				mu.Unlock()
			}
		})
	}

	end := m.now()
	if evicted := m.resolver.EvictStale(ctx, end); evicted > 0 {
		m.logger.Debug(ctx, "evicted stale prices", "count", evicted)
	}

	m.reportProbes()

	elapsed := end.Sub(start)
	span.SetAttributes(
		attribute.Int("resolved", resolved),
		attribute.Int("failed", failed),
		attribute.Int("opportunities", found),
	)
	m.cycles.Add(ctx, 1)
	m.cycleDuration.Record(ctx, elapsed.Seconds())

	m.mu.Lock()
	m.stats.Cycles++
	m.stats.LastCycleAt = end
	m.stats.LastDuration = elapsed
	m.stats.LastResolved = resolved
	m.stats.LastFailed = failed
	m.stats.Failures += uint64(failed)
	m.stats.Opportunities += uint64(found)
	stats := m.stats
	m.mu.Unlock()

	if m.onCycle != nil {
		m.onCycle(stats)
	}
	return stats
}

// forEachToken runs fn for every token with at most Concurrency in flight.
// fn never fails; per-token errors are logged by fn itself.
func (m *Monitor) forEachToken(ctx context.Context, fn func(context.Context, string)) {
	if m.config.Concurrency == 1 {
		for _, mint := range m.config.Tokens {
			if ctx.Err() != nil {
				return
			}
			fn(ctx, mint)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(m.config.Concurrency)
	for _, mint := range m.config.Tokens {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fn(ctx, mint)
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Monitor) resolveToken(ctx context.Context, mint string) bool {
	rec, err := m.resolver.Resolve(ctx, mint)
	if err != nil {
		m.resolveFails.Add(ctx, 1, metric.WithAttributes(
			attribute.String("code", string(apperror.GetCode(err)))))
		args := []any{"mint", mint, "token", m.label(mint)}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			args = append(args, appErr.ToLog()...)
		} else {
			args = append(args, "error", err)
		}
		m.logger.Warn(ctx, "price resolution failed", args...)
		return false
	}

	m.logger.Info(ctx, "token price",
		"mint", mint,
		"token", m.label(mint),
		"usd", formatPrice(rec.PriceUSD),
		"numeraire", formatPrice(rec.PriceNumeraire),
		"source", rec.Source)
	if m.reporter != nil {
		m.reporter.UpdatePrice(rec)
	}
	return true
}

// reportProbes forwards probe states that changed since the last cycle.
func (m *Monitor) reportProbes() {
	if m.reporter == nil {
		return
	}
	for _, p := range m.probes {
		connected, latency := p.Status()
		m.mu.Lock()
		prev, seen := m.lastStatus[p.Name()]
		m.lastStatus[p.Name()] = connected
		m.mu.Unlock()
		if seen && prev == connected {
			continue
		}
		m.reporter.UpdateConnectionStatus(p.Name(), connected, latency)
	}
}

// formatPrice renders a price with six decimals.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (m *Monitor) label(mint string) string {
	return m.registry.Label(asset.Mint(mint))
}

// Stats returns a snapshot of the monitor statistics.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// CheckCycleAge reports whether a cycle completed within maxAge of now.
// Before the first cycle the monitor is given maxAge from startedAt.
func (m *Monitor) CheckCycleAge(now, startedAt time.Time, maxAge time.Duration) (bool, string) {
	s := m.Stats()
	if s.Cycles == 0 {
		if now.Sub(startedAt) > maxAge {
			return false, "no cycle completed"
		}
		return true, "starting"
	}
	age := now.Sub(s.LastCycleAt)
	if age > maxAge {
		return false, "last cycle " + age.Round(time.Second).String() + " ago"
	}
	return true, "last cycle " + age.Round(time.Millisecond).String() + " ago"
}
