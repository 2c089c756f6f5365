package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fd1az/solana-price-monitor/business/pricing/app"
	"github.com/fd1az/solana-price-monitor/business/pricing/infra/birdeye"
	"github.com/fd1az/solana-price-monitor/business/pricing/infra/jupiter"
	"github.com/fd1az/solana-price-monitor/internal/config"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

const solMint = "So11111111111111111111111111111111111111112"

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

func pricingConfig(sources ...string) *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{
			Sources:   sources,
			Numeraire: config.NumeraireConfig{Mint: solMint, FallbackUSD: 150},
		},
	}
}

func TestNewNumeraireQuoter(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		check   func(t *testing.T, q app.NumeraireQuoter)
	}{
		{
			name:    "birdeye_only",
			sources: []string{config.SourceBirdeye},
			check: func(t *testing.T, q app.NumeraireQuoter) {
				if _, ok := q.(*birdeye.Client); !ok {
					t.Errorf("quoter = %T, want *birdeye.Client", q)
				}
			},
		},
		{
			name:    "first_capable_source_wins",
			sources: []string{config.SourceBirdeye, config.SourceJupiter},
			check: func(t *testing.T, q app.NumeraireQuoter) {
				if _, ok := q.(*birdeye.Client); !ok {
					t.Errorf("quoter = %T, want *birdeye.Client", q)
				}
			},
		},
		{
			name:    "jupiter",
			sources: []string{config.SourceJupiter},
			check: func(t *testing.T, q app.NumeraireQuoter) {
				if _, ok := q.(*jupiter.Client); !ok {
					t.Errorf("quoter = %T, want *jupiter.Client", q)
				}
			},
		},
		{
			name:    "no_sources",
			sources: nil,
			check: func(t *testing.T, q app.NumeraireQuoter) {
				if q != nil {
					t.Errorf("quoter = %T, want nil", q)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := newNumeraireQuoter(pricingConfig(tt.sources...), &mockLogger{})
			if err != nil {
				t.Fatalf("newNumeraireQuoter: %v", err)
			}
			tt.check(t, q)
		})
	}
}

func TestNumeraireService_BirdeyeQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != solMint {
			t.Errorf("address = %s, want numeraire mint", got)
		}
		w.Write([]byte(`{"success":true,"data":{"value":172.5}}`))
	}))
	defer server.Close()

	cfg := pricingConfig(config.SourceBirdeye)
	cfg.Pricing.Birdeye.BaseURL = server.URL

	q, err := newNumeraireQuoter(cfg, &mockLogger{})
	if err != nil {
		t.Fatalf("newNumeraireQuoter: %v", err)
	}
	svc := app.NewNumeraireService(q, cfg.Pricing.Numeraire.FallbackUSD, 0, &mockLogger{})
	defer svc.Close()

	if got := svc.NumeraireUSD(context.Background()); got != 172.5 {
		t.Errorf("NumeraireUSD() = %v, want 172.5 from birdeye, not the fallback", got)
	}
}
