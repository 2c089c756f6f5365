package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

// Scanner runs the per-token arbitrage pass:
// pools -> reserves -> comparison -> opportunity -> reporter.
type Scanner struct {
	calculator *PoolPriceCalculator
	detector   *Detector
	reporter   Reporter
	logger     logger.LoggerInterface
}

// NewScanner creates a new Scanner. reporter may be nil.
func NewScanner(calc *PoolPriceCalculator, det *Detector, reporter Reporter, log logger.LoggerInterface) *Scanner {
	return &Scanner{
		calculator: calc,
		detector:   det,
		reporter:   reporter,
		logger:     log,
	}
}

// HasPools reports whether any pool is configured for mint.
func (s *Scanner) HasPools(mint string) bool {
	return len(s.calculator.Pools(mint)) > 0
}

// Scan evaluates mint across its configured pools. The returned
// opportunity is nil when fewer than two venues priced or the spread
// did not clear the threshold. A mint with a single pool is priced but
// never compared.
func (s *Scanner) Scan(ctx context.Context, mint string) *domain.Opportunity {
	pools := s.calculator.Pools(mint)
	if len(pools) == 0 {
		return nil
	}

	ctx, span := s.calculator.tracer.Start(ctx, "arbitrage.scan",
		trace.WithAttributes(attribute.String("token", mint)))
	defer span.End()

	// One pool cannot be compared; its implied price is only traced.
	if len(pools) == 1 {
		price, err := s.calculator.PriceForPool(ctx, pools[0])
		if err != nil {
			s.logger.Warn(ctx, "pool price unavailable",
				"token", mint, "venue", pools[0].Venue, "pool", pools[0].Pool, "error", err)
			return nil
		}
		s.logger.Debug(ctx, "single venue price", "token", mint, "venue", pools[0].Venue, "price", price)
		return nil
	}

	reserves := s.calculator.VenuePrices(ctx, mint, pools)
	cmp, err := s.detector.Compare(mint, reserves)
	if err != nil {
		s.logger.Debug(ctx, "arbitrage comparison skipped", "token", mint, "error", err)
		return nil
	}

	s.logger.Debug(ctx, "venue comparison",
		"token", mint,
		"buy", cmp.BestBuy.Venue,
		"sell", cmp.BestSell.Venue,
		"profit_pct", cmp.ProfitPct,
	)
	if s.reporter != nil {
		s.reporter.UpdateComparison(cmp)
	}

	opp, ok := s.detector.Promote(ctx, cmp)
	if !ok {
		return nil
	}
	span.SetAttributes(attribute.Float64("profit_pct", opp.ProfitPct))
	if s.reporter != nil {
		s.reporter.Report(opp)
	}
	return opp
}
