// Package solana reads SPL token account balances over Solana JSON-RPC.
package solana

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solana-price-monitor/business/chain/app"
	"github.com/fd1az/solana-price-monitor/business/chain/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/circuitbreaker"
	"github.com/fd1az/solana-price-monitor/internal/logger"
	"github.com/fd1az/solana-price-monitor/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/solana-price-monitor/business/chain/infra/solana"
	meterName  = "github.com/fd1az/solana-price-monitor/business/chain/infra/solana"

	methodGetTokenAccountBalance = "getTokenAccountBalance"
)

var _ app.BalanceReader = (*BalanceReader)(nil)

// BalanceReaderConfig holds configuration for the balance reader.
type BalanceReaderConfig struct {
	Endpoint          string        // for status and logs only
	Commitment        string        // processed, confirmed or finalized
	Timeout           time.Duration // per call
	RequestsPerSecond float64
	Burst             int
}

// DefaultBalanceReaderConfig returns sensible defaults.
func DefaultBalanceReaderConfig(endpoint string) BalanceReaderConfig {
	return BalanceReaderConfig{
		Endpoint:          endpoint,
		Commitment:        "confirmed",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// balanceReaderMetrics holds OTEL metric instruments.
type balanceReaderMetrics struct {
	calls    metric.Int64Counter
	failures metric.Int64Counter
	latency  metric.Float64Histogram
}

// tokenAmount is the "value" object of getTokenAccountBalance.
type tokenAmount struct {
	Amount         string  `json:"amount"`
	Decimals       uint8   `json:"decimals"`
	UIAmountString string  `json:"uiAmountString"`
	UIAmount       float64 `json:"uiAmount"`
}

type balanceResult struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value *tokenAmount `json:"value"`
}

// BalanceReader implements app.BalanceReader over a JSON-RPC 2.0 client.
type BalanceReader struct {
	config  BalanceReaderConfig
	logger  logger.LoggerInterface
	client  *rpc.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[domain.TokenBalance]

	statusMu    sync.RWMutex
	lastSuccess time.Time
	lastLatency time.Duration

	// Observability
	tracer  trace.Tracer
	metrics *balanceReaderMetrics
}

// NewBalanceReader creates a reader on top of an already dialed client.
func NewBalanceReader(client *rpc.Client, cfg BalanceReaderConfig, log logger.LoggerInterface) (*BalanceReader, error) {
	if client == nil {
		return nil, apperror.New(apperror.CodeConfigurationError, apperror.WithContext("nil rpc client"))
	}
	if cfg.Commitment == "" {
		cfg.Commitment = "confirmed"
	}

	r := &BalanceReader{
		config:  cfg,
		logger:  log,
		client:  client,
		limiter: ratelimit.PerSecond("solana-rpc", cfg.RequestsPerSecond, cfg.Burst),
		tracer:  otel.Tracer(tracerName),
	}

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	r.initCircuitBreaker()

	return r, nil
}

// initMetrics initializes OTEL metric instruments.
func (r *BalanceReader) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &balanceReaderMetrics{}

	r.metrics.calls, err = meter.Int64Counter(
		"solana_rpc_calls_total",
		metric.WithDescription("Total token balance RPC calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	r.metrics.failures, err = meter.Int64Counter(
		"solana_rpc_failures_total",
		metric.WithDescription("Failed token balance RPC calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	r.metrics.latency, err = meter.Float64Histogram(
		"solana_rpc_latency_seconds",
		metric.WithDescription("Token balance RPC latency"),
		metric.WithUnit("s"),
	)
	return err
}

// initCircuitBreaker initializes the circuit breaker.
func (r *BalanceReader) initCircuitBreaker() {
	cfg := circuitbreaker.DefaultConfig("solana-rpc")
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		r.logger.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	r.cb = circuitbreaker.New[domain.TokenBalance](cfg)
}

// TokenBalance calls getTokenAccountBalance for account.
func (r *BalanceReader) TokenBalance(ctx context.Context, account string) (domain.TokenBalance, error) {
	ctx, span := r.tracer.Start(ctx, "solana.get_token_account_balance",
		trace.WithAttributes(attribute.String("account", account)),
	)
	defer span.End()

	if err := r.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return domain.TokenBalance{}, err
	}

	r.metrics.calls.Add(ctx, 1)
	start := time.Now()

	bal, err := r.cb.Execute(func() (domain.TokenBalance, error) {
		callCtx := ctx
		if r.config.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
			defer cancel()
		}

		var res balanceResult
		err := r.client.CallContext(callCtx, &res, methodGetTokenAccountBalance,
			account, map[string]string{"commitment": r.config.Commitment})
		if err != nil {
			return domain.TokenBalance{}, classifyRPCError(account, err)
		}
		if res.Value == nil {
			return domain.TokenBalance{}, apperror.New(apperror.CodeRPCError,
				apperror.WithContextf("no balance value for account %s", account))
		}
		return domain.TokenBalance{
			Account:  account,
			Amount:   res.Value.Amount,
			Decimals: res.Value.Decimals,
		}, nil
	})

	elapsed := time.Since(start)
	r.metrics.latency.Record(ctx, elapsed.Seconds())

	if err != nil {
		r.metrics.failures.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "balance read failed")
		return domain.TokenBalance{}, err
	}

	r.statusMu.Lock()
	r.lastSuccess = time.Now()
	r.lastLatency = elapsed
	r.statusMu.Unlock()

	span.SetAttributes(
		attribute.String("amount", bal.Amount),
		attribute.Int("decimals", int(bal.Decimals)),
	)
	span.SetStatus(codes.Ok, "fetched")

	return bal, nil
}

// Status reports breaker state and the last successful call.
func (r *BalanceReader) Status() domain.ReaderStatus {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return domain.ReaderStatus{
		Endpoint:    r.config.Endpoint,
		CircuitOpen: r.cb.IsOpen(),
		LastSuccess: r.lastSuccess,
		LastLatency: r.lastLatency,
	}
}

func classifyRPCError(account string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return apperror.New(apperror.CodeRPCError,
			apperror.WithContextf("account %s: rpc code %d", account, rpcErr.ErrorCode()),
			apperror.WithCause(err))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.New(apperror.CodeServiceTimeout,
			apperror.WithContextf("account %s", account),
			apperror.WithCause(err))
	}
	return apperror.New(apperror.CodeRPCError,
		apperror.WithContextf("account %s", account),
		apperror.WithCause(err))
}
