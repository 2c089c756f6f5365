package app

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	chainDomain "github.com/fd1az/solana-price-monitor/business/chain/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

const tracerName = "github.com/fd1az/solana-price-monitor/business/arbitrage"

// ImpliedPrice returns quote/base where each side is raw / 10^decimals.
// The division is done in decimal arithmetic and only the result is
// converted to float64.
func ImpliedPrice(base, quote chainDomain.TokenBalance) (float64, error) {
	b, err := parseBalance(base)
	if err != nil {
		return 0, err
	}
	q, err := parseBalance(quote)
	if err != nil {
		return 0, err
	}
	if b.IsZero() {
		return 0, apperror.New(apperror.CodeZeroReserve,
			apperror.WithContextf("base account %s", base.Account))
	}
	return q.ToDecimal().Div(b.ToDecimal()).InexactFloat64(), nil
}

func parseBalance(bal chainDomain.TokenBalance) (asset.Amount, error) {
	amt, err := asset.ParseRaw(bal.Amount, bal.Decimals)
	if err != nil {
		return asset.Amount{}, apperror.New(apperror.CodeInvalidBalance,
			apperror.WithContextf("account %s: amount %q", bal.Account, bal.Amount),
			apperror.WithCause(err))
	}
	return amt, nil
}

// PoolPriceCalculator turns pool vault balances into implied prices.
type PoolPriceCalculator struct {
	reader ReserveReader
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewPoolPriceCalculator creates a new PoolPriceCalculator.
func NewPoolPriceCalculator(reader ReserveReader, log logger.LoggerInterface) *PoolPriceCalculator {
	return &PoolPriceCalculator{
		reader: reader,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
}

// PriceForPool reads both vaults and returns the implied price.
func (c *PoolPriceCalculator) PriceForPool(ctx context.Context, vaults chainDomain.PoolVaults) (float64, error) {
	ctx, span := c.tracer.Start(ctx, "arbitrage.price_for_pool",
		trace.WithAttributes(
			attribute.String("venue", vaults.Venue),
			attribute.String("pool", vaults.Pool),
		),
	)
	defer span.End()

	res, err := c.reader.ReadReserves(ctx, vaults)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	price, err := ImpliedPrice(res.Base, res.Quote)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	span.SetAttributes(attribute.Float64("price", price))
	return price, nil
}

// Pools returns the configured pools for mint.
func (c *PoolPriceCalculator) Pools(mint string) []chainDomain.PoolVaults {
	return c.reader.Pools(mint)
}

// VenuePrices reads the reserves of every pool. Pools whose balances
// cannot be read are logged and skipped.
func (c *PoolPriceCalculator) VenuePrices(ctx context.Context, token string, pools []chainDomain.PoolVaults) []chainDomain.PoolReserves {
	ctx, span := c.tracer.Start(ctx, "arbitrage.venue_prices",
		trace.WithAttributes(
			attribute.String("token", token),
			attribute.Int("pools", len(pools)),
		),
	)
	defer span.End()

	out := make([]chainDomain.PoolReserves, 0, len(pools))
	for _, p := range pools {
		res, err := c.reader.ReadReserves(ctx, p)
		if err != nil {
			args := []any{"token", token, "venue", p.Venue, "pool", p.Pool}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				args = append(args, appErr.ToLog()...)
			} else {
				args = append(args, "error", err)
			}
			c.logger.Warn(ctx, "pool reserves unavailable", args...)
			continue
		}
		out = append(out, res)
	}
	span.SetAttributes(attribute.Int("read", len(out)))
	return out
}
