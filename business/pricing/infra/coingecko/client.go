// Package coingecko is a PriceSource backed by the CoinGecko simple price API.
// CoinGecko quotes SOL directly, so no numeraire conversion is needed.
package coingecko

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
	"github.com/fd1az/solana-price-monitor/internal/circuitbreaker"
	"github.com/fd1az/solana-price-monitor/internal/httpclient"
	"github.com/fd1az/solana-price-monitor/internal/logger"
	"github.com/fd1az/solana-price-monitor/internal/ratelimit"
)

const (
	SourceName = "coingecko"

	BaseURL       = "https://api.coingecko.com"
	priceEndpoint = "/api/v3/simple/price"

	tracerName     = "github.com/fd1az/solana-price-monitor/business/pricing/infra/coingecko"
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
	// CoinIDs maps mint to CoinGecko coin id. Unmapped mints are sent as is.
	CoinIDs map[string]string
	// NumeraireID is the coin id quoted by NumeraireUSD.
	NumeraireID string
}

type Client struct {
	client  httpclient.Client
	config  Config
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[coinPrice]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	now     func() time.Time
}

func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.NumeraireID == "" {
		cfg.NumeraireID = "solana"
	}

	tracer := otel.Tracer(tracerName)

	headers := map[string]string{"Accept": "application/json"}
	if cfg.APIKey != "" {
		headers["x-cg-demo-api-key"] = cfg.APIKey
	}
	hc, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(SourceName),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest),
		httpclient.WithHeaders(headers),
		httpclient.WithSecretHeaders("x-cg-demo-api-key"),
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
		client:  hc,
		config:  cfg,
		limiter: ratelimit.PerMinute(SourceName, cfg.RequestsPerMinute),
		breaker: circuitbreaker.New[coinPrice](breakerCfg),
		logger:  log,
		tracer:  tracer,
		now:     time.Now,
	}, nil
}

func (c *Client) Name() string { return SourceName }

func (c *Client) CircuitOpen() bool { return c.breaker.IsOpen() }

type coinPrice struct {
	USD          float64 `json:"usd"`
	SOL          float64 `json:"sol"`
	USD24hVolume float64 `json:"usd_24h_vol"`
	USDMarketCap float64 `json:"usd_market_cap"`
}

// CoinID returns the CoinGecko id used for mint.
func (c *Client) CoinID(mint string) string {
	if id, ok := c.config.CoinIDs[mint]; ok && id != "" {
		return id
	}
	return mint
}

func (c *Client) Fetch(ctx context.Context, mint string) (domain.PriceRecord, error) {
	id := c.CoinID(mint)
	ctx, span := c.tracer.Start(ctx, "coingecko.fetch",
		trace.WithAttributes(
			attribute.String("mint", mint),
			attribute.String("coin_id", id),
		),
	)
	defer span.End()

	p, err := c.price(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.PriceRecord{}, app.SourceError(SourceName, err)
	}

	span.SetAttributes(attribute.Float64("price_usd", p.USD))

	return domain.NewPriceRecord(mint, p.USD, p.SOL, SourceName, c.now()).
		WithMarketData(p.USD24hVolume, p.USDMarketCap), nil
}

// NumeraireUSD returns the USD price of the numeraire coin.
func (c *Client) NumeraireUSD(ctx context.Context) (float64, error) {
	p, err := c.price(ctx, c.config.NumeraireID)
	if err != nil {
		return 0, app.SourceError(SourceName, err)
	}
	return p.USD, nil
}

func (c *Client) price(ctx context.Context, id string) (coinPrice, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return coinPrice{}, err
	}

	return c.breaker.Execute(func() (coinPrice, error) {
		var result map[string]coinPrice
		_, err := c.client.NewRequest(
			httpclient.WithLabels(httpclient.NewLabel("endpoint", "simple_price")),
		).
			SetQueryParam("ids", id).
			SetQueryParam("vs_currencies", "usd,sol").
			SetQueryParam("include_24hr_vol", "true").
			SetQueryParam("include_market_cap", "true").
			SetResult(&result).
			Get(ctx, priceEndpoint)
		if err != nil {
			return coinPrice{}, err
		}

		p, ok := result[id]
		if !ok {
			return coinPrice{}, apperror.New(apperror.CodeSourceUnavailable,
				apperror.WithContextf("coingecko: coin %s not found", id))
		}
		if p.USD <= 0 {
			return coinPrice{}, apperror.New(apperror.CodeMalformedResponse,
				apperror.WithContextf("coingecko: non-positive usd price %v for %s", p.USD, id))
		}
		return p, nil
	})
}
