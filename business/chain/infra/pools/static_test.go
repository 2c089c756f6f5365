package pools

import (
	"testing"

	"github.com/fd1az/solana-price-monitor/internal/config"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider([]config.PoolConfig{
		{Mint: "A", Venue: "raydium", Pool: "p1", BaseVault: "b1", QuoteVault: "q1"},
		{Mint: "B", Venue: "whirlpool", Pool: "p2", BaseVault: "b2", QuoteVault: "q2"},
		{Mint: "A", Venue: "meteora_dlmm", Pool: "p3", BaseVault: "b3", QuoteVault: "q3"},
	})

	if p.Count() != 3 {
		t.Errorf("Count() = %d, want 3", p.Count())
	}

	got := p.Pools("A")
	if len(got) != 2 {
		t.Fatalf("Pools(A) len = %d, want 2", len(got))
	}
	if got[0].Venue != "raydium" || got[1].Venue != "meteora_dlmm" {
		t.Errorf("order not preserved: %+v", got)
	}

	got[0].Venue = "mutated"
	if p.Pools("A")[0].Venue != "raydium" {
		t.Error("Pools must return a copy")
	}

	if p.Pools("C") != nil {
		t.Error("unknown mint should have no pools")
	}
}
