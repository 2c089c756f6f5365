package app

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

const tracerName = "github.com/fd1az/solana-price-monitor/business/pricing"

var _ PriceResolver = (*Resolver)(nil)

// Resolver answers price queries from its cache, falling back to the
// configured sources and a selection strategy on a miss.
type Resolver struct {
	cache     *PriceCache
	sources   []PriceSource
	selector  domain.Selector
	publisher PricePublisher
	logger    logger.LoggerInterface
	tracer    trace.Tracer

	sourceFailures metric.Int64Counter
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPublisher mirrors every freshly resolved record to p.
func WithPublisher(p PricePublisher) ResolverOption {
	return func(r *Resolver) {
		r.publisher = p
	}
}

// NewResolver takes ownership of cache. sources may be empty, in which
// case every miss fails with NO_PRICE_DATA.
func NewResolver(cache *PriceCache, sources []PriceSource, selector domain.Selector, log logger.LoggerInterface, opts ...ResolverOption) *Resolver {
	if selector == nil {
		selector = domain.FirstSelector{}
	}
	r := &Resolver{
		cache:    cache,
		sources:  sources,
		selector: selector,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sourceFailures, _ = otel.Meter(meterName).Int64Counter("price_source_failures_total",
		metric.WithDescription("Failed price source fetches"))
	return r
}

// Resolve returns a fresh record for mint. A cache hit does no network
// work. On a miss every source is queried in order; failing sources are
// skipped and the selector picks among the rest.
func (r *Resolver) Resolve(ctx context.Context, mint string) (domain.PriceRecord, error) {
	ctx, span := r.tracer.Start(ctx, "pricing.resolve",
		trace.WithAttributes(attribute.String("mint", mint)),
	)
	defer span.End()

	if rec, ok := r.cache.Get(ctx, mint); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true), attribute.String("source", rec.Source))
		return rec, nil
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))

	records := make([]domain.PriceRecord, 0, len(r.sources))
	for _, src := range r.sources {
		rec, err := src.Fetch(ctx, mint)
		if err != nil {
			r.sourceFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("source", src.Name())))
			r.logger.Warn(ctx, "price source failed",
				append([]any{"source", src.Name(), "mint", mint}, errorArgs(err)...)...)
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		err := apperror.New(apperror.CodeNoPriceData, apperror.WithContext(mint))
		span.RecordError(err)
		span.SetStatus(codes.Error, "no price data")
		return domain.PriceRecord{}, err
	}

	rec, err := r.selector.Select(records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "selection failed")
		return domain.PriceRecord{}, err
	}

	r.cache.Put(ctx, mint, rec)

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, rec); err != nil {
			r.logger.Warn(ctx, "price publish failed",
				append([]any{"mint", mint}, errorArgs(err)...)...)
		}
	}

	span.SetAttributes(
		attribute.String("source", rec.Source),
		attribute.Int("candidates", len(records)),
		attribute.Float64("price_usd", rec.PriceUSD),
	)
	return rec, nil
}

// ResolveAll resolves each mint and returns the ones that succeeded.
func (r *Resolver) ResolveAll(ctx context.Context, mints []string) map[string]domain.PriceRecord {
	out := make(map[string]domain.PriceRecord, len(mints))
	for _, mint := range mints {
		rec, err := r.Resolve(ctx, mint)
		if err != nil {
			continue
		}
		out[mint] = rec
	}
	return out
}

// EvictStale drops cache entries that are no longer fresh at now.
func (r *Resolver) EvictStale(ctx context.Context, now time.Time) int {
	return r.cache.EvictStale(ctx, now)
}

// Stats summarizes cache occupancy and the active configuration.
func (r *Resolver) Stats() domain.MarketStats {
	names := make([]string, len(r.sources))
	for i, src := range r.sources {
		names[i] = src.Name()
	}
	return domain.MarketStats{
		CachedPrices: r.cache.Len(),
		Sources:      names,
		Strategy:     r.selector.Name(),
	}
}

// Sources returns the configured sources in resolution order.
func (r *Resolver) Sources() []PriceSource {
	out := make([]PriceSource, len(r.sources))
	copy(out, r.sources)
	return out
}

// Close releases the cache and the publisher.
func (r *Resolver) Close() error {
	r.cache.Close()
	if r.publisher != nil {
		return r.publisher.Close()
	}
	return nil
}

func errorArgs(err error) []any {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.ToLog()
	}
	return []any{"error", err}
}
