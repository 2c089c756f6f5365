package infra

import (
	"context"
	"testing"
	"time"

	chainDomain "github.com/fd1az/solana-price-monitor/business/chain/domain"
	pricingApp "github.com/fd1az/solana-price-monitor/business/pricing/app"
	pricingDomain "github.com/fd1az/solana-price-monitor/business/pricing/domain"
)

type plainSource struct{ name string }

func (s *plainSource) Name() string { return s.name }

func (s *plainSource) Fetch(ctx context.Context, mint string) (pricingDomain.PriceRecord, error) {
	return pricingDomain.PriceRecord{}, nil
}

type breakerStub struct {
	plainSource
	open bool
}

func (s *breakerStub) CircuitOpen() bool { return s.open }

func TestSourceProbes(t *testing.T) {
	tripped := &breakerStub{plainSource: plainSource{name: "birdeye"}, open: true}
	sources := []pricingApp.PriceSource{
		&breakerStub{plainSource: plainSource{name: "jupiter"}},
		&plainSource{name: "static"},
		tripped,
	}

	probes := SourceProbes(sources)
	if len(probes) != 2 {
		t.Fatalf("got %d probes, want 2", len(probes))
	}

	tests := []struct {
		probe     *SourceProbe
		name      string
		connected bool
	}{
		{probe: probes[0], name: "jupiter", connected: true},
		{probe: probes[1], name: "birdeye", connected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.probe.Name(); got != tt.name {
				t.Errorf("name = %s, want %s", got, tt.name)
			}
			if got, _ := tt.probe.Status(); got != tt.connected {
				t.Errorf("connected = %v, want %v", got, tt.connected)
			}
		})
	}

	tripped.open = false
	if ok, _ := probes[1].Status(); !ok {
		t.Error("probe should follow the breaker state")
	}
}

func TestChainProbe(t *testing.T) {
	status := chainDomain.ReaderStatus{LastLatency: 25 * time.Millisecond}
	p := NewChainProbe(func() chainDomain.ReaderStatus { return status })

	if ok, latency := p.Status(); !ok || latency != 25*time.Millisecond {
		t.Errorf("status = %v %v", ok, latency)
	}

	status.CircuitOpen = true
	if ok, _ := p.Status(); ok {
		t.Error("open circuit should report disconnected")
	}
	if p.Name() != ChainProbeName {
		t.Errorf("name = %s", p.Name())
	}
}
