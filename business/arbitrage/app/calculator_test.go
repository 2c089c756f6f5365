package app

import (
	"context"
	"math"
	"strings"
	"testing"

	chainDomain "github.com/fd1az/solana-price-monitor/business/chain/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
)

func TestImpliedPrice(t *testing.T) {
	tests := []struct {
		name     string
		base     chainDomain.TokenBalance
		quote    chainDomain.TokenBalance
		want     float64
		wantCode apperror.Code
	}{
		{
			name:  "plain ratio",
			base:  bal("b", "1000", 0),
			quote: bal("q", "50", 0),
			want:  0.05,
		},
		{
			name:  "decimals applied per side",
			base:  bal("b", "2000000000", 9), // 2 SOL
			quote: bal("q", "300000000", 6),  // 300 USDC
			want:  150,
		},
		{
			name:  "zero quote is a zero price",
			base:  bal("b", "10", 0),
			quote: bal("q", "0", 0),
			want:  0,
		},
		{
			name:     "zero base",
			base:     bal("b", "0", 6),
			quote:    bal("q", "50", 6),
			wantCode: apperror.CodeZeroReserve,
		},
		{
			name:     "invalid base",
			base:     bal("b", "abc", 0),
			quote:    bal("q", "50", 0),
			wantCode: apperror.CodeInvalidBalance,
		},
		{
			name:     "negative quote",
			base:     bal("b", "10", 0),
			quote:    bal("q", "-5", 0),
			wantCode: apperror.CodeInvalidBalance,
		},
		{
			name:     "empty amount",
			base:     bal("b", "", 0),
			quote:    bal("q", "5", 0),
			wantCode: apperror.CodeInvalidBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImpliedPrice(tt.base, tt.quote)
			if tt.wantCode != "" {
				if err == nil {
					t.Fatalf("expected %s, got price %v", tt.wantCode, got)
				}
				if code := apperror.GetCode(err); code != tt.wantCode {
					t.Errorf("code = %s, want %s", code, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("price = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImpliedPrice_InvalidBalanceCarriesValue(t *testing.T) {
	_, err := ImpliedPrice(bal("vault1", "12x4", 0), bal("vault2", "1", 0))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `"12x4"`) {
		t.Errorf("error %q does not carry the offending amount", err)
	}
	if !strings.Contains(err.Error(), "vault1") {
		t.Errorf("error %q does not name the account", err)
	}
}

func TestPoolPriceCalculator_PriceForPool(t *testing.T) {
	reader := &stubReader{
		reserves: map[string]chainDomain.PoolReserves{
			"p1": reserves("orca", "1000", "50"),
		},
		errs: map[string]error{
			"p2": apperror.New(apperror.CodeRPCError),
		},
	}
	calc := NewPoolPriceCalculator(reader, &mockLogger{})

	got, err := calc.PriceForPool(context.Background(), chainDomain.PoolVaults{Venue: "orca", Pool: "p1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-0.05) > 1e-12 {
		t.Errorf("price = %v, want 0.05", got)
	}

	_, err = calc.PriceForPool(context.Background(), chainDomain.PoolVaults{Venue: "raydium", Pool: "p2"})
	if !apperror.HasCode(err, apperror.CodeRPCError) {
		t.Errorf("expected RPC_ERROR, got %v", err)
	}
}

func TestPoolPriceCalculator_VenuePricesSkipsFailures(t *testing.T) {
	log := &mockLogger{}
	reader := &stubReader{
		reserves: map[string]chainDomain.PoolReserves{
			"p1": reserves("orca", "100", "100"),
			"p3": reserves("meteora", "100", "101"),
		},
		errs: map[string]error{
			"p2": apperror.New(apperror.CodeServiceTimeout),
		},
	}
	calc := NewPoolPriceCalculator(reader, log)

	pools := []chainDomain.PoolVaults{
		{Venue: "orca", Pool: "p1"},
		{Venue: "raydium", Pool: "p2"},
		{Venue: "meteora", Pool: "p3"},
	}
	got := calc.VenuePrices(context.Background(), "JUP", pools)
	if len(got) != 2 {
		t.Fatalf("got %d reserves, want 2", len(got))
	}
	if got[0].Venue != "orca" || got[1].Venue != "meteora" {
		t.Errorf("venues = %s,%s; want orca,meteora", got[0].Venue, got[1].Venue)
	}
	if len(log.warns) != 1 {
		t.Errorf("warns = %d, want 1", len(log.warns))
	}
}
