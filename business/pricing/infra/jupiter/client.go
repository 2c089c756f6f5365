// Package jupiter is a PriceSource backed by the Jupiter price API.
package jupiter

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
	SourceName = "jupiter"

	BaseURL       = "https://api.jup.ag"
	priceEndpoint = "/price/v3"

	tracerName     = "github.com/fd1az/solana-price-monitor/business/pricing/infra/jupiter"
	defaultTimeout = 5 * time.Second
)

var (
	_ app.PriceSource     = (*Client)(nil)
	_ app.NumeraireQuoter = (*Client)(nil)
)

// Config holds Jupiter client settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	// NumeraireMint is quoted by NumeraireUSD.
	NumeraireMint string
}

// Client fetches USD prices from Jupiter and derives numeraire prices
// through a Numeraire converter.
type Client struct {
	client    httpclient.Client
	config    Config
	numeraire app.Numeraire
	limiter   *ratelimit.Limiter
	breaker   *circuitbreaker.CircuitBreaker[float64]
	logger    logger.LoggerInterface
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithNumeraire sets the converter used for PriceNumeraire. Without one
// the record carries a zero numeraire price.
func WithNumeraire(n app.Numeraire) Option {
	return func(c *Client) {
		c.numeraire = n
	}
}

// WithHTTPClient replaces the transport client, mainly for tests.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a Jupiter client.
func NewClient(cfg Config, log logger.LoggerInterface, opts ...Option) (*Client, error) {
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

	c := &Client{
		config:  cfg,
		limiter: ratelimit.PerMinute(SourceName, cfg.RequestsPerMinute),
		logger:  log,
		tracer:  tracer,
		now:     time.Now,
	}
	c.breaker = circuitbreaker.New[float64](circuitbreaker.Config{
		Name:                SourceName,
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		headers := map[string]string{"Accept": "application/json"}
		if cfg.APIKey != "" {
			headers["x-api-key"] = cfg.APIKey
		}
		hc, err := httpclient.NewInstrumentedClient(
			httpclient.WithProviderName(SourceName),
			httpclient.WithBaseURL(cfg.BaseURL),
			httpclient.WithRequestTimeout(cfg.Timeout),
			httpclient.WithTraceOptions(tracer, httpclient.TraceRequest),
			httpclient.WithHeaders(headers),
			httpclient.WithSecretHeaders("x-api-key"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		c.client = hc
	}

	return c, nil
}

func (c *Client) Name() string { return SourceName }

// CircuitOpen reports whether the breaker currently rejects calls.
func (c *Client) CircuitOpen() bool { return c.breaker.IsOpen() }

// priceEntry is one value of the price/v3 response, keyed by mint.
type priceEntry struct {
	USDPrice       float64 `json:"usdPrice"`
	BlockID        int64   `json:"blockId"`
	Decimals       int     `json:"decimals"`
	PriceChange24h float64 `json:"priceChange24h"`
}

// Fetch returns the Jupiter USD price for mint.
func (c *Client) Fetch(ctx context.Context, mint string) (domain.PriceRecord, error) {
	ctx, span := c.tracer.Start(ctx, "jupiter.fetch",
		trace.WithAttributes(attribute.String("mint", mint)),
	)
	defer span.End()

	usd, err := c.usdPrice(ctx, mint)
	if err != nil {
		span.RecordError(err)
		return domain.PriceRecord{}, app.SourceError(SourceName, err)
	}

	var numeraire float64
	if c.numeraire != nil {
		numeraire = c.numeraire.ToNumeraire(ctx, usd)
	}

	span.SetAttributes(attribute.Float64("price_usd", usd))
	c.logger.Debug(ctx, "fetched jupiter price", "mint", mint, "usd", usd)

	return domain.NewPriceRecord(mint, usd, numeraire, SourceName, c.now()), nil
}

// NumeraireUSD returns the Jupiter USD price of the numeraire mint.
func (c *Client) NumeraireUSD(ctx context.Context) (float64, error) {
	usd, err := c.usdPrice(ctx, c.config.NumeraireMint)
	if err != nil {
		return 0, app.SourceError(SourceName, err)
	}
	return usd, nil
}

func (c *Client) usdPrice(ctx context.Context, mint string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	return c.breaker.Execute(func() (float64, error) {
		var result map[string]*priceEntry
		_, err := c.client.NewRequest(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "price")),
		).
			SetQueryParam("ids", mint).
			SetResult(&result).
			Get(ctx, priceEndpoint)
		if err != nil {
			return 0, err
		}

		entry, ok := result[mint]
		if !ok || entry == nil {
			return 0, apperror.New(apperror.CodeSourceUnavailable,
				apperror.WithContextf("jupiter: no price data for %s", mint))
		}
		if entry.USDPrice <= 0 {
			return 0, apperror.New(apperror.CodeMalformedResponse,
				apperror.WithContextf("jupiter: non-positive price %v for %s", entry.USDPrice, mint))
		}
		return entry.USDPrice, nil
	})
}
