package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fd1az/solana-price-monitor/business/monitor/app"
	"github.com/fd1az/solana-price-monitor/business/monitor/infra"
)

type stubProbe struct {
	name      string
	connected bool
}

func (p stubProbe) Name() string { return p.name }

func (p stubProbe) Status() (bool, time.Duration) { return p.connected, 0 }

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestModule_HealthChecks(t *testing.T) {
	tests := []struct {
		name       string
		probes     []app.Probe
		redis      pinger
		check      string
		wantOK     bool
		wantMsg    string
		wantAbsent bool
	}{
		{
			name:    "no_sources_configured",
			check:   "price_sources",
			wantOK:  true,
			wantMsg: "no sources configured",
		},
		{
			name:    "chain_probe_only",
			probes:  []app.Probe{stubProbe{name: infra.ChainProbeName, connected: true}},
			check:   "price_sources",
			wantOK:  true,
			wantMsg: "no sources configured",
		},
		{
			name:    "one_circuit_open",
			probes:  []app.Probe{stubProbe{name: "jupiter", connected: true}, stubProbe{name: "birdeye"}},
			check:   "price_sources",
			wantOK:  true,
			wantMsg: "circuit open: birdeye",
		},
		{
			name:    "all_circuits_open",
			probes:  []app.Probe{stubProbe{name: "jupiter"}, stubProbe{name: "birdeye"}},
			check:   "price_sources",
			wantMsg: "all circuits open",
		},
		{
			name:    "rpc_circuit_open",
			probes:  []app.Probe{stubProbe{name: infra.ChainProbeName}},
			check:   "solana_rpc",
			wantMsg: "circuit open",
		},
		{
			name:   "redis_reachable",
			redis:  stubPinger{},
			check:  "redis",
			wantOK: true,
		},
		{
			name:    "redis_down",
			redis:   stubPinger{err: errors.New("connection refused")},
			check:   "redis",
			wantMsg: "connection refused",
		},
		{
			name:       "redis_disabled",
			check:      "redis",
			wantAbsent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Module{probes: tt.probes, redis: tt.redis}
			checks := m.HealthChecks(time.Minute)

			check, ok := checks[tt.check]
			if tt.wantAbsent {
				if ok {
					t.Fatalf("check %q registered, want absent", tt.check)
				}
				return
			}
			if !ok {
				t.Fatalf("check %q not registered", tt.check)
			}

			gotOK, gotMsg := check(context.Background())
			if gotOK != tt.wantOK || gotMsg != tt.wantMsg {
				t.Errorf("%s = (%v, %q), want (%v, %q)", tt.check, gotOK, gotMsg, tt.wantOK, tt.wantMsg)
			}
		})
	}
}

func TestModule_HealthChecksBeforeStartup(t *testing.T) {
	m := &Module{}
	ok, msg := m.HealthChecks(time.Minute)["monitor"](context.Background())
	if ok || msg != "not started" {
		t.Errorf("monitor = (%v, %q), want (false, \"not started\")", ok, msg)
	}
}
