// Package birdeye is a PriceSource backed by the Birdeye public API.
package birdeye

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solana-price-monitor/business/pricing/app"
	"github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/circuitbreaker"
	"github.com/fd1az/solana-price-monitor/internal/httpclient"
	"github.com/fd1az/solana-price-monitor/internal/logger"
	"github.com/fd1az/solana-price-monitor/internal/ratelimit"
)

const (
	SourceName = "birdeye"

	BaseURL       = "https://public-api.birdeye.so"
	priceEndpoint = "/public/price"

	tracerName     = "github.com/fd1az/solana-price-monitor/business/pricing/infra/birdeye"
	defaultTimeout = 5 * time.Second
)

var (
	_ app.PriceSource     = (*Client)(nil)
	_ app.NumeraireQuoter = (*Client)(nil)
)

type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	// NumeraireMint is quoted by NumeraireUSD.
	NumeraireMint string
}

// Client fetches price, volume and market cap from Birdeye.
type Client struct {
	config    Config
	client    httpclient.Client
	numeraire app.Numeraire
	limiter   *ratelimit.Limiter
	breaker   *circuitbreaker.CircuitBreaker[priceData]
	logger    logger.LoggerInterface
	tracer    trace.Tracer
	now       func() time.Time
}

// NewClient creates a Birdeye client. numeraire may be nil.
func NewClient(cfg Config, numeraire app.Numeraire, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.NumeraireMint == "" {
		cfg.NumeraireMint = asset.MintWrappedSOL.String()
	}

	tracer := otel.Tracer(tracerName)

	hc, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(SourceName),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest),
		httpclient.WithHeaders(map[string]string{
			"Accept":    "application/json",
			"X-API-KEY": cfg.APIKey,
			"x-chain":   "solana",
		}),
		httpclient.WithSecretHeaders("X-API-KEY"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	breakerCfg := circuitbreaker.DefaultConfig(SourceName)
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Client{
		config:    cfg,
		client:    hc,
		numeraire: numeraire,
		limiter:   ratelimit.PerMinute(SourceName, cfg.RequestsPerMinute),
		breaker:   circuitbreaker.New[priceData](breakerCfg),
		logger:    log,
		tracer:    tracer,
		now:       time.Now,
	}, nil
}

func (c *Client) Name() string { return SourceName }

func (c *Client) CircuitOpen() bool { return c.breaker.IsOpen() }

type priceResponse struct {
	Success bool       `json:"success"`
	Data    *priceData `json:"data"`
}

type priceData struct {
	Value     float64 `json:"value"`
	Volume24h float64 `json:"volume24h"`
	MarketCap float64 `json:"marketCap"`
}

func (c *Client) Fetch(ctx context.Context, mint string) (domain.PriceRecord, error) {
	ctx, span := c.tracer.Start(ctx, "birdeye.fetch",
		trace.WithAttributes(attribute.String("mint", mint)),
	)
	defer span.End()

	data, err := c.price(ctx, mint)
	if err != nil {
		span.RecordError(err)
		return domain.PriceRecord{}, app.SourceError(SourceName, err)
	}

	var numeraire float64
	if c.numeraire != nil {
		numeraire = c.numeraire.ToNumeraire(ctx, data.Value)
	}

	span.SetAttributes(attribute.Float64("price_usd", data.Value))

	return domain.NewPriceRecord(mint, data.Value, numeraire, SourceName, c.now()).
		WithMarketData(data.Volume24h, data.MarketCap), nil
}

// NumeraireUSD returns the Birdeye USD price of the numeraire mint.
func (c *Client) NumeraireUSD(ctx context.Context) (float64, error) {
	data, err := c.price(ctx, c.config.NumeraireMint)
	if err != nil {
		return 0, app.SourceError(SourceName, err)
	}
	return data.Value, nil
}

func (c *Client) price(ctx context.Context, mint string) (priceData, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return priceData{}, err
	}

	return c.breaker.Execute(func() (priceData, error) {
		var result priceResponse
		_, err := c.client.NewRequest(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "price")),
		).
			SetQueryParam("address", mint).
			SetResult(&result).
			Get(ctx, priceEndpoint)
		if err != nil {
			return priceData{}, err
		}
		if result.Data == nil {
			return priceData{}, apperror.New(apperror.CodeSourceUnavailable,
				apperror.WithContextf("birdeye: missing data for %s", mint))
		}
		if result.Data.Value <= 0 {
			return priceData{}, apperror.New(apperror.CodeMalformedResponse,
				apperror.WithContextf("birdeye: non-positive price %v for %s", result.Data.Value, mint))
		}
		return *result.Data, nil
	})
}
