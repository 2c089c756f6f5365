package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	arbitrageDomain "github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

type logEntry struct {
	level string
	msg   string
	args  []any
}

type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (m *mockLogger) add(level, msg string, args []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{level: level, msg: msg, args: args})
}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any) { m.add("debug", msg, args) }
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)  { m.add("info", msg, args) }
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)  { m.add("warn", msg, args) }
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any) { m.add("error", msg, args) }

func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

func (m *mockLogger) find(level, msg string) []logEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []logEntry
	for _, e := range m.entries {
		if e.level == level && e.msg == msg {
			out = append(out, e)
		}
	}
	return out
}

func argValue(args []any, key string) any {
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == key {
			return args[i+1]
		}
	}
	return nil
}

type stubResolver struct {
	mu       sync.Mutex
	prices   map[string]float64
	calls    map[string]int
	evictAt  []time.Time
	resolved time.Time
}

func newStubResolver(prices map[string]float64) *stubResolver {
	return &stubResolver{prices: prices, calls: make(map[string]int)}
}

func (r *stubResolver) Resolve(ctx context.Context, mint string) (pricingDomain.PriceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[mint]++
	p, ok := r.prices[mint]
	if !ok {
		return pricingDomain.PriceRecord{}, apperror.New(apperror.CodeNoPriceData, apperror.WithContext(mint))
	}
	return pricingDomain.NewPriceRecord(mint, p, p/150, "stub", r.resolved), nil
}

func (r *stubResolver) EvictStale(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictAt = append(r.evictAt, now)
	return 0
}

type stubScanner struct {
	mu    sync.Mutex
	pools map[string]bool
	opps  map[string]bool
	scans []string
}

func (s *stubScanner) HasPools(mint string) bool { return s.pools[mint] }

func (s *stubScanner) Scan(ctx context.Context, mint string) *arbitrageDomain.Opportunity {
	s.mu.Lock()
	s.scans = append(s.scans, mint)
	s.mu.Unlock()
	if !s.opps[mint] {
		return nil
	}
	return arbitrageDomain.NewOpportunity(&arbitrageDomain.Comparison{
		Token:     mint,
		BestBuy:   arbitrageDomain.VenuePrice{Venue: "orca", Price: 1},
		BestSell:  arbitrageDomain.VenuePrice{Venue: "raydium", Price: 1.02},
		ProfitPct: 2,
	})
}

type recordingReporter struct {
	mu       sync.Mutex
	prices   []pricingDomain.PriceRecord
	statuses []string
}

func (r *recordingReporter) UpdatePrice(rec pricingDomain.PriceRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prices = append(r.prices, rec)
}

func (r *recordingReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := "down"
	if connected {
		state = "up"
	}
	r.statuses = append(r.statuses, name+":"+state)
}

type stubProbe struct {
	name      string
	connected bool
}

func (p *stubProbe) Name() string { return p.name }

func (p *stubProbe) Status() (bool, time.Duration) { return p.connected, time.Millisecond }

var (
	mintJUP  = string(asset.MintJUP)
	mintBONK = string(asset.MintBONK)
	mintUSDC = string(asset.MintUSDC)
)

func TestMonitor_RunOnce(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
	}{
		{name: "sequential", concurrency: 1},
		{name: "parallel", concurrency: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &mockLogger{}
			resolver := newStubResolver(map[string]float64{
				mintJUP:  0.8512345678,
				mintUSDC: 1.0,
			})
			rep := &recordingReporter{}
			now := time.Unix(1_700_000_000, 0)

			m := NewMonitor(Config{
				Tokens:      []string{mintJUP, mintBONK, mintUSDC},
				Interval:    time.Second,
				Concurrency: tt.concurrency,
			}, resolver, asset.DefaultRegistry(), log,
				WithReporter(rep),
				WithClock(func() time.Time { return now }),
			)

			stats := m.RunOnce(context.Background())

			if stats.Cycles != 1 || stats.LastResolved != 2 || stats.LastFailed != 1 {
				t.Errorf("stats = %+v", stats)
			}
			for _, mint := range []string{mintJUP, mintBONK, mintUSDC} {
				if resolver.calls[mint] != 1 {
					t.Errorf("%s resolved %d times, want 1", mint, resolver.calls[mint])
				}
			}
			if len(resolver.evictAt) != 1 || !resolver.evictAt[0].Equal(now) {
				t.Errorf("evictions = %v, want one at %v", resolver.evictAt, now)
			}
			if len(rep.prices) != 2 {
				t.Errorf("reported %d prices, want 2", len(rep.prices))
			}
			if warns := log.find("warn", "price resolution failed"); len(warns) != 1 {
				t.Errorf("failure warnings = %d, want 1", len(warns))
			} else if argValue(warns[0].args, "token") != "BONK" {
				t.Errorf("warning token = %v, want BONK", argValue(warns[0].args, "token"))
			}
		})
	}
}

func TestMonitor_TokenPriceLog(t *testing.T) {
	log := &mockLogger{}
	resolver := newStubResolver(map[string]float64{mintJUP: 0.8512345678})

	m := NewMonitor(Config{Tokens: []string{mintJUP}}, resolver, asset.DefaultRegistry(), log)
	m.RunOnce(context.Background())

	entries := log.find("info", "token price")
	if len(entries) != 1 {
		t.Fatalf("token price lines = %d, want 1", len(entries))
	}
	args := entries[0].args
	if got := argValue(args, "usd"); got != "0.851235" {
		t.Errorf("usd = %v, want 0.851235", got)
	}
	if got := argValue(args, "numeraire"); got != "0.005675" {
		t.Errorf("numeraire = %v, want 0.005675", got)
	}
	if got := argValue(args, "source"); got != "stub" {
		t.Errorf("source = %v, want stub", got)
	}
	if got := argValue(args, "mint"); got != mintJUP {
		t.Errorf("mint = %v", got)
	}
}

func TestMonitor_ArbitragePass(t *testing.T) {
	log := &mockLogger{}
	resolver := newStubResolver(map[string]float64{mintJUP: 1, mintBONK: 0.00002})
	scanner := &stubScanner{
		pools: map[string]bool{mintJUP: true, mintBONK: true},
		opps:  map[string]bool{mintJUP: true},
	}

	m := NewMonitor(Config{Tokens: []string{mintJUP, mintBONK, mintUSDC}}, resolver, nil, log,
		WithScanner(scanner))
	stats := m.RunOnce(context.Background())

	if len(scanner.scans) != 2 {
		t.Errorf("scans = %v, want JUP and BONK only", scanner.scans)
	}
	if stats.Opportunities != 1 {
		t.Errorf("opportunities = %d, want 1", stats.Opportunities)
	}
	if len(log.find("info", "arbitrage opportunity")) != 1 {
		t.Error("opportunity not logged")
	}
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	resolver := newStubResolver(map[string]float64{mintJUP: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewMonitor(Config{Tokens: []string{mintJUP}, Interval: time.Millisecond}, resolver, nil, &mockLogger{},
		WithCycleHook(func(s Stats) {
			if s.Cycles == 3 {
				cancel()
			}
		}),
	)

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	if got := m.Stats().Cycles; got != 3 {
		t.Errorf("cycles = %d, want 3", got)
	}
}

func TestMonitor_RunCancelledDuringWait(t *testing.T) {
	resolver := newStubResolver(nil)
	ctx, cancel := context.WithCancel(context.Background())

	m := NewMonitor(Config{Tokens: []string{mintJUP}, Interval: time.Hour}, resolver, nil, &mockLogger{})

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for m.Stats().Cycles == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop while waiting for the next cycle")
	}
}

func TestMonitor_ProbesReportedOnChange(t *testing.T) {
	rep := &recordingReporter{}
	probe := &stubProbe{name: "jupiter", connected: true}

	m := NewMonitor(Config{}, newStubResolver(nil), nil, &mockLogger{},
		WithReporter(rep), WithProbes(probe))

	m.RunOnce(context.Background())
	m.RunOnce(context.Background())
	probe.connected = false
	m.RunOnce(context.Background())

	want := []string{"jupiter:up", "jupiter:down"}
	if len(rep.statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", rep.statuses, want)
	}
	for i := range want {
		if rep.statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %s, want %s", i, rep.statuses[i], want[i])
		}
	}
}

func TestMonitor_CheckCycleAge(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	now := start

	m := NewMonitor(Config{Tokens: []string{mintJUP}}, newStubResolver(nil), nil, &mockLogger{},
		WithClock(func() time.Time { return now }))

	if ok, _ := m.CheckCycleAge(start.Add(time.Second), start, time.Minute); !ok {
		t.Error("fresh monitor should be healthy while starting")
	}
	if ok, _ := m.CheckCycleAge(start.Add(2*time.Minute), start, time.Minute); ok {
		t.Error("monitor without cycles past max age should be unhealthy")
	}

	now = start.Add(2 * time.Minute)
	m.RunOnce(context.Background())

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "recent cycle", at: now.Add(30 * time.Second), want: true},
		{name: "stale cycle", at: now.Add(90 * time.Second), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ok, msg := m.CheckCycleAge(tt.at, start, time.Minute); ok != tt.want {
				t.Errorf("healthy = %v (%s), want %v", ok, msg, tt.want)
			}
		})
	}
}

func TestFilterCanceled(t *testing.T) {
	other := errors.New("boom")
	if filterCanceled(context.Canceled) != nil {
		t.Error("context.Canceled should be filtered")
	}
	if !errors.Is(filterCanceled(other), other) {
		t.Error("other errors must pass through")
	}
}
