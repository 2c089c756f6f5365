package app

import (
	"context"
	"sort"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	chainDomain "github.com/fd1az/solana-price-monitor/business/chain/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

const meterName = "github.com/fd1az/solana-price-monitor/business/arbitrage"

// DetectorConfig holds configuration for the arbitrage detector.
type DetectorConfig struct {
	// ThresholdPct is the profit percentage an opportunity must exceed.
	ThresholdPct float64
}

// Detector compares implied prices across venues.
type Detector struct {
	config DetectorConfig
	logger logger.LoggerInterface
	now    func() time.Time

	opportunities metric.Int64Counter
	evaluations   metric.Int64Counter
}

// NewDetector creates a new arbitrage Detector.
func NewDetector(config DetectorConfig, log logger.LoggerInterface) *Detector {
	d := &Detector{
		config: config,
		logger: log,
		now:    time.Now,
	}
	meter := otel.Meter(meterName)
	d.opportunities, _ = meter.Int64Counter("arbitrage_opportunities_total",
		metric.WithDescription("Opportunities above threshold"))
	d.evaluations, _ = meter.Int64Counter("arbitrage_evaluations_total",
		metric.WithDescription("Cross-venue evaluations"))
	return d
}

// Threshold returns the configured threshold percentage.
func (d *Detector) Threshold() float64 {
	return d.config.ThresholdPct
}

// Compare builds the cross-venue comparison for token. Venues whose
// reserves do not yield a positive price are skipped. Fewer than two
// remaining venues is INSUFFICIENT_VENUES.
//
// Venues are ordered by (price, name). The best buy is the first entry;
// the best sell is the first entry carrying the maximum price, so equal
// maxima resolve to the lexicographically smallest venue name.
func (d *Detector) Compare(token string, reserves []chainDomain.PoolReserves) (*domain.Comparison, error) {
	prices := d.venuePrices(token, reserves)
	if len(prices) < 2 {
		return nil, apperror.New(apperror.CodeInsufficientVenues,
			apperror.WithContextf("token %s: %d priced venue(s)", token, len(prices)))
	}

	sort.Slice(prices, func(i, j int) bool {
		if prices[i].Price != prices[j].Price {
			return prices[i].Price < prices[j].Price
		}
		return prices[i].Venue < prices[j].Venue
	})

	buy := prices[0]
	maxPrice := prices[len(prices)-1].Price
	sell := prices[len(prices)-1]
	for _, p := range prices {
		if p.Price == maxPrice {
			sell = p
			break
		}
	}

	spread := sell.Price - buy.Price
	return &domain.Comparison{
		Token:     token,
		Prices:    prices,
		BestBuy:   buy,
		BestSell:  sell,
		Spread:    spread,
		ProfitPct: spread / buy.Price * 100,
		Timestamp: d.now(),
	}, nil
}

// Evaluate returns an opportunity when the comparison's profit percentage
// is strictly greater than the threshold.
func (d *Detector) Evaluate(ctx context.Context, token string, reserves []chainDomain.PoolReserves) (*domain.Opportunity, bool) {
	d.evaluations.Add(ctx, 1)

	cmp, err := d.Compare(token, reserves)
	if err != nil {
		d.logger.Debug(ctx, "no comparison", "token", token, "error", err)
		return nil, false
	}
	return d.Promote(ctx, cmp)
}

// Promote applies the threshold to an existing comparison.
func (d *Detector) Promote(ctx context.Context, cmp *domain.Comparison) (*domain.Opportunity, bool) {
	if cmp == nil || !(cmp.ProfitPct > d.config.ThresholdPct) {
		return nil, false
	}
	d.opportunities.Add(ctx, 1, metric.WithAttributes(
		attribute.String("buy", cmp.BestBuy.Venue),
		attribute.String("sell", cmp.BestSell.Venue),
	))
	return domain.NewOpportunity(cmp), true
}

// venuePrices converts reserves to prices, naming repeated venues
// "venue#2", "venue#3", ... in input order.
func (d *Detector) venuePrices(token string, reserves []chainDomain.PoolReserves) []domain.VenuePrice {
	seen := make(map[string]int, len(reserves))
	out := make([]domain.VenuePrice, 0, len(reserves))
	for _, r := range reserves {
		seen[r.Venue]++
		name := r.Venue
		if n := seen[r.Venue]; n > 1 {
			name = r.Venue + "#" + strconv.Itoa(n)
		}

		price, err := ImpliedPrice(r.Base, r.Quote)
		if err != nil {
			d.logger.Debug(context.Background(), "venue skipped", "token", token, "venue", name, "error", err)
			continue
		}
		if price <= 0 {
			continue
		}
		out = append(out, domain.VenuePrice{Venue: name, Price: price})
	}
	return out
}
