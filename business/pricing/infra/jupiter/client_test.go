package jupiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fd1az/solana-price-monitor/business/pricing/app"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

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

func TestClient_Fetch(t *testing.T) {
	mint := asset.MintJUP.String()

	tests := []struct {
		name     string
		status   int
		body     string
		wantUSD  float64
		wantCode apperror.Code
	}{
		{
			name:    "price_present",
			status:  http.StatusOK,
			body:    `{"` + mint + `":{"usdPrice":0.45,"blockId":348004023,"decimals":6,"priceChange24h":1.2}}`,
			wantUSD: 0.45,
		},
		{
			name:     "mint_absent",
			status:   http.StatusOK,
			body:     `{}`,
			wantCode: apperror.CodeSourceUnavailable,
		},
		{
			name:     "server_error",
			status:   http.StatusInternalServerError,
			body:     `{"error":"boom"}`,
			wantCode: apperror.CodeSourceUnavailable,
		},
		{
			name:     "malformed_body",
			status:   http.StatusOK,
			body:     `not json`,
			wantCode: apperror.CodeSourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/price/v3" {
					t.Errorf("path = %s, want /price/v3", r.URL.Path)
				}
				if got := r.URL.Query().Get("ids"); got != mint {
					t.Errorf("ids = %s, want %s", got, mint)
				}
				if got := r.Header.Get("x-api-key"); got != "secret" {
					t.Errorf("x-api-key = %q, want secret", got)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, err := NewClient(Config{BaseURL: server.URL, APIKey: "secret"}, &mockLogger{},
				WithNumeraire(app.StaticNumeraire(150)))
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}

			rec, err := c.Fetch(context.Background(), mint)
			if tt.wantCode != "" {
				if got := apperror.GetCode(err); got != tt.wantCode {
					t.Fatalf("code = %s, want %s (err: %v)", got, tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.PriceUSD != tt.wantUSD {
				t.Errorf("PriceUSD = %v, want %v", rec.PriceUSD, tt.wantUSD)
			}
			if rec.PriceNumeraire != tt.wantUSD/150 {
				t.Errorf("PriceNumeraire = %v, want %v", rec.PriceNumeraire, tt.wantUSD/150)
			}
			if rec.Source != SourceName || rec.Mint != mint {
				t.Errorf("unexpected record %+v", rec)
			}
			if rec.Volume24h != 0 || rec.MarketCap != 0 {
				t.Errorf("volume/mcap should default to zero: %+v", rec)
			}
		})
	}
}

func TestClient_NumeraireUSD(t *testing.T) {
	sol := asset.MintWrappedSOL.String()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ids"); got != sol {
			t.Errorf("ids = %s, want SOL mint", got)
		}
		w.Write([]byte(`{"` + sol + `":{"usdPrice":172.5}}`))
	}))
	defer server.Close()

	c, err := NewClient(Config{BaseURL: server.URL}, &mockLogger{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	got, err := c.NumeraireUSD(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 172.5 {
		t.Errorf("NumeraireUSD() = %v, want 172.5", got)
	}
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, err := NewClient(Config{BaseURL: server.URL}, &mockLogger{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	for i := 0; i < 6; i++ {
		_, err := c.Fetch(context.Background(), "mint")
		if apperror.GetCode(err) != apperror.CodeSourceUnavailable {
			t.Fatalf("attempt %d: code = %s", i, apperror.GetCode(err))
		}
	}
	if calls != 5 {
		t.Errorf("upstream calls = %d, want 5", calls)
	}
	if !c.CircuitOpen() {
		t.Error("breaker should be open")
	}
}
