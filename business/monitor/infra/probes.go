// Package infra adapts upstream clients to monitor probes.
package infra

import (
	"time"

	chainDomain "github.com/fd1az/solana-price-monitor/business/chain/domain"
	"github.com/fd1az/solana-price-monitor/business/monitor/app"
	pricingApp "github.com/fd1az/solana-price-monitor/business/pricing/app"
)

// ChainProbeName is the display name of the Solana RPC probe.
const ChainProbeName = "Solana RPC"

type breakerSource interface {
	Name() string
	CircuitOpen() bool
}

// SourceProbe reports a price source as connected while its breaker is closed.
type SourceProbe struct {
	src breakerSource
}

var _ app.Probe = (*SourceProbe)(nil)

func (p *SourceProbe) Name() string { return p.src.Name() }

func (p *SourceProbe) Status() (bool, time.Duration) {
	return !p.src.CircuitOpen(), 0
}

// SourceProbes wraps every source exposing a circuit breaker.
func SourceProbes(sources []pricingApp.PriceSource) []*SourceProbe {
	out := make([]*SourceProbe, 0, len(sources))
	for _, s := range sources {
		if b, ok := s.(breakerSource); ok {
			out = append(out, &SourceProbe{src: b})
		}
	}
	return out
}

// ChainProbe reports the balance reader status.
type ChainProbe struct {
	status func() chainDomain.ReaderStatus
}

var _ app.Probe = (*ChainProbe)(nil)

// NewChainProbe creates a probe reading status on every call.
func NewChainProbe(status func() chainDomain.ReaderStatus) *ChainProbe {
	return &ChainProbe{status: status}
}

func (p *ChainProbe) Name() string { return ChainProbeName }

func (p *ChainProbe) Status() (bool, time.Duration) {
	s := p.status()
	return !s.CircuitOpen, s.LastLatency
}
