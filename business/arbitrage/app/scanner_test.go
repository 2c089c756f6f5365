package app

import (
	"context"
	"testing"

	chainDomain "github.com/fd1az/solana-price-monitor/business/chain/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
)

func newScannerFixture(threshold float64) (*Scanner, *recordingReporter) {
	log := &mockLogger{}
	reader := &stubReader{
		pools: map[string][]chainDomain.PoolVaults{
			"JUP": {
				{Venue: "orca", Pool: "p1"},
				{Venue: "raydium", Pool: "p2"},
				{Venue: "meteora", Pool: "p3"},
			},
			"BONK": {
				{Venue: "orca", Pool: "p4"},
			},
		},
		reserves: map[string]chainDomain.PoolReserves{
			"p1": reserves("orca", "1000", "50"),
			"p2": reserves("raydium", "1000", "51"),
			"p4": reserves("orca", "10", "1"),
		},
		errs: map[string]error{
			"p3": apperror.New(apperror.CodeRPCError),
		},
	}
	rep := &recordingReporter{}
	calc := NewPoolPriceCalculator(reader, log)
	return NewScanner(calc, newTestDetector(threshold), rep, log), rep
}

func TestScanner_Scan(t *testing.T) {
	s, rep := newScannerFixture(0.5)

	opp := s.Scan(context.Background(), "JUP")
	if opp == nil {
		t.Fatal("expected opportunity")
	}
	if opp.BestBuy.Venue != "orca" || opp.BestSell.Venue != "raydium" {
		t.Errorf("got %s", opp.Summary())
	}
	if len(rep.opportunities) != 1 {
		t.Errorf("reported %d opportunities, want 1", len(rep.opportunities))
	}
	if len(rep.comparisons) != 1 {
		t.Errorf("reported %d comparisons, want 1", len(rep.comparisons))
	}
}

func TestScanner_BelowThreshold(t *testing.T) {
	s, rep := newScannerFixture(5)

	if opp := s.Scan(context.Background(), "JUP"); opp != nil {
		t.Fatalf("unexpected opportunity %s", opp.Summary())
	}
	if len(rep.opportunities) != 0 {
		t.Errorf("reported %d opportunities, want 0", len(rep.opportunities))
	}
	if len(rep.comparisons) != 1 {
		t.Errorf("comparison should still be reported")
	}
}

func TestScanner_NoPools(t *testing.T) {
	s, rep := newScannerFixture(0)

	if s.HasPools("USDC") {
		t.Error("USDC has no pools")
	}
	if opp := s.Scan(context.Background(), "USDC"); opp != nil {
		t.Error("expected no opportunity")
	}
	if opp := s.Scan(context.Background(), "BONK"); opp != nil {
		t.Error("single venue must not produce an opportunity")
	}
	if len(rep.comparisons) != 0 {
		t.Errorf("comparisons = %d, want 0", len(rep.comparisons))
	}
}

func TestScanner_SinglePoolPricedNotCompared(t *testing.T) {
	log := &mockLogger{}
	reader := &stubReader{
		pools: map[string][]chainDomain.PoolVaults{
			"BONK": {{Venue: "orca", Pool: "p1"}},
			"WIF":  {{Venue: "raydium", Pool: "p2"}},
		},
		reserves: map[string]chainDomain.PoolReserves{
			"p1": reserves("orca", "10", "1"),
			"p2": reserves("raydium", "0", "5"),
		},
	}
	rep := &recordingReporter{}
	s := NewScanner(NewPoolPriceCalculator(reader, log), newTestDetector(0), rep, log)

	if opp := s.Scan(context.Background(), "BONK"); opp != nil {
		t.Fatalf("unexpected opportunity %s", opp.Summary())
	}
	if len(log.warns) != 0 {
		t.Errorf("warns = %v, want none for a readable pool", log.warns)
	}

	if opp := s.Scan(context.Background(), "WIF"); opp != nil {
		t.Fatalf("unexpected opportunity %s", opp.Summary())
	}
	if len(log.warns) != 1 || log.warns[0] != "pool price unavailable" {
		t.Errorf("warns = %v, want one zero-reserve warning", log.warns)
	}
	if len(rep.comparisons) != 0 {
		t.Errorf("comparisons = %d, want 0", len(rep.comparisons))
	}
}
