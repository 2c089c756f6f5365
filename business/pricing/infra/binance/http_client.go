package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/httpclient"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

const (
	// Binance REST API endpoints
	BaseAPIURL   = "https://api.binance.com"
	BaseAPIURLUS = "https://api.binance.us"

	ticker24hEndpoint = "/api/v3/ticker/24hr"

	httpTimeout = 5 * time.Second
)

// HTTPClientConfig holds configuration for the Binance HTTP client.
type HTTPClientConfig struct {
	BaseURL string        // API base URL (empty = default)
	Timeout time.Duration // Request timeout
}

// HTTPClient provides Binance REST API access.
type HTTPClient struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewHTTPClient creates a new Binance HTTP client.
func NewHTTPClient(cfg HTTPClientConfig, log logger.LoggerInterface) (*HTTPClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(SourceName),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &HTTPClient{
		client: client,
		logger: log,
		tracer: tracer,
	}, nil
}

// Ticker24h is the REST API response for 24h rolling statistics.
// Numeric fields arrive as strings.
type Ticker24h struct {
	Symbol      string `json:"symbol"`
	LastPrice   string `json:"lastPrice"`
	Volume      string `json:"volume"`
	QuoteVolume string `json:"quoteVolume"`
	CloseTime   int64  `json:"closeTime"`
}

// GetTicker24h fetches 24h statistics for a symbol.
func (c *HTTPClient) GetTicker24h(ctx context.Context, symbol string) (*Ticker24h, error) {
	ctx, span := c.tracer.Start(ctx, "binance.http.get_ticker_24h",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	var result Ticker24h
	_, err := c.client.NewRequest(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "ticker_24hr"),
			httpclient.NewLabel("symbol", symbol),
		),
		httpclient.WithResponseErrorHandler(binanceErrorHandler),
	).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get(ctx, ticker24hEndpoint)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Wrap(err, apperror.CodeSourceUnavailable, "binance: ticker "+symbol)
	}

	span.SetAttributes(
		attribute.String("last_price", result.LastPrice),
		attribute.String("quote_volume", result.QuoteVolume),
	)

	c.logger.Debug(ctx, "fetched ticker via HTTP",
		"symbol", symbol,
		"last_price", result.LastPrice)

	return &result, nil
}

// BinanceAPIError represents an error response from Binance API.
type BinanceAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *BinanceAPIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// binanceErrorHandler parses Binance API error responses.
func binanceErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	var apiErr BinanceAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
		return apperror.New(apperror.CodeSourceUnavailable,
			apperror.WithContextf("binance: status %d", statusCode),
			apperror.WithCause(&apiErr))
	}
	return apperror.New(apperror.CodeSourceUnavailable,
		apperror.WithContextf("binance: status %d: %s", statusCode, string(body)))
}
