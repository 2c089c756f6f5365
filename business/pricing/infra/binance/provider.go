// Package binance is a PriceSource backed by Binance spot 24h tickers.
// Only mints mapped to a Binance symbol can be priced.
package binance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solana-price-monitor/business/pricing/app"
	"github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/circuitbreaker"
	"github.com/fd1az/solana-price-monitor/internal/logger"
	"github.com/fd1az/solana-price-monitor/internal/ratelimit"
)

const (
	SourceName = "binance"
	tracerName = "github.com/fd1az/solana-price-monitor/business/pricing/infra/binance"
)

var (
	_ app.PriceSource     = (*Provider)(nil)
	_ app.NumeraireQuoter = (*Provider)(nil)
)

// ProviderConfig holds configuration for the Binance provider.
type ProviderConfig struct {
	HTTPURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	// Symbols maps mint to a USD-quoted Binance symbol (e.g. "BONKUSDT").
	Symbols map[string]string
	// NumeraireSymbol is the numeraire's USD-quoted symbol (e.g. "SOLUSDT").
	NumeraireSymbol string
}

type quote struct {
	price  float64
	volume float64
}

// Provider prices tokens from Binance tickers.
type Provider struct {
	config     ProviderConfig
	httpClient *HTTPClient
	numeraire  app.Numeraire
	limiter    *ratelimit.Limiter
	breaker    *circuitbreaker.CircuitBreaker[quote]
	logger     logger.LoggerInterface
	tracer     trace.Tracer
	now        func() time.Time
}

// NewProvider creates a new Binance provider. numeraire may be nil, in
// which case the provider converts through its own numeraire ticker.
func NewProvider(cfg ProviderConfig, numeraire app.Numeraire, log logger.LoggerInterface) (*Provider, error) {
	if cfg.NumeraireSymbol == "" {
		cfg.NumeraireSymbol = "SOLUSDT"
	}

	httpClient, err := NewHTTPClient(HTTPClientConfig{
		BaseURL: cfg.HTTPURL,
		Timeout: cfg.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	breakerCfg := circuitbreaker.DefaultConfig(SourceName)
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Provider{
		config:     cfg,
		httpClient: httpClient,
		numeraire:  numeraire,
		limiter:    ratelimit.PerMinute(SourceName, cfg.RequestsPerMinute),
		breaker:    circuitbreaker.New[quote](breakerCfg),
		logger:     log,
		tracer:     httpClient.tracer,
		now:        time.Now,
	}, nil
}

func (p *Provider) Name() string { return SourceName }

func (p *Provider) CircuitOpen() bool { return p.breaker.IsOpen() }

// Fetch prices mint from its mapped symbol.
func (p *Provider) Fetch(ctx context.Context, mint string) (domain.PriceRecord, error) {
	ctx, span := p.tracer.Start(ctx, "binance.fetch",
		trace.WithAttributes(attribute.String("mint", mint)),
	)
	defer span.End()

	symbol, ok := p.config.Symbols[mint]
	if !ok || symbol == "" {
		err := apperror.New(apperror.CodeSourceUnavailable,
			apperror.WithContextf("binance: no symbol mapped for %s", mint))
		span.RecordError(err)
		return domain.PriceRecord{}, err
	}
	span.SetAttributes(attribute.String("symbol", symbol))

	q, err := p.ticker(ctx, symbol)
	if err != nil {
		span.RecordError(err)
		return domain.PriceRecord{}, app.SourceError(SourceName, err)
	}

	var numeraire float64
	if p.numeraire != nil {
		numeraire = p.numeraire.ToNumeraire(ctx, q.price)
	} else if n, err := p.NumeraireUSD(ctx); err == nil && n > 0 {
		numeraire = q.price / n
	}

	return domain.NewPriceRecord(mint, q.price, numeraire, SourceName, p.now()).
		WithMarketData(q.volume, 0), nil
}

// NumeraireUSD returns the last price of the numeraire symbol.
func (p *Provider) NumeraireUSD(ctx context.Context) (float64, error) {
	q, err := p.ticker(ctx, p.config.NumeraireSymbol)
	if err != nil {
		return 0, app.SourceError(SourceName, err)
	}
	return q.price, nil
}

func (p *Provider) ticker(ctx context.Context, symbol string) (quote, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return quote{}, err
	}

	return p.breaker.Execute(func() (quote, error) {
		t, err := p.httpClient.GetTicker24h(ctx, symbol)
		if err != nil {
			return quote{}, err
		}

		price, err := decimal.NewFromString(t.LastPrice)
		if err != nil || !price.IsPositive() {
			return quote{}, apperror.New(apperror.CodeMalformedResponse,
				apperror.WithContextf("binance: bad lastPrice %q for %s", t.LastPrice, symbol))
		}
		volume, _ := decimal.NewFromString(t.QuoteVolume)

		return quote{price: price.InexactFloat64(), volume: volume.InexactFloat64()}, nil
	})
}
