// Package redis mirrors resolved prices into Redis hashes for external
// consumers. Each mint is stored at "<prefix><mint>" with fields usd, sol,
// source and ts (unix seconds), expiring with the price cache TTL.
package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/solana-price-monitor/business/pricing/app"
	"github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/apperror"
)

const (
	tracerName       = "github.com/fd1az/solana-price-monitor/business/pricing/infra/redis"
	defaultKeyPrefix = "price:"
)

var _ app.PricePublisher = (*Publisher)(nil)

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// TTL is applied to every key. Zero keeps keys forever.
	TTL time.Duration
}

// Publisher writes the latest record per mint.
type Publisher struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	tracer trace.Tracer
}

// New connects and pings Redis.
func New(ctx context.Context, cfg Config) (*Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, apperror.New(apperror.CodePublishFailed,
			apperror.WithContextf("redis ping %s", cfg.Addr),
			apperror.WithCause(err))
	}

	return NewWithClient(rdb, cfg), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client, cfg Config) *Publisher {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Publisher{
		rdb:    rdb,
		prefix: prefix,
		ttl:    cfg.TTL,
		tracer: otel.Tracer(tracerName),
	}
}

func (p *Publisher) key(mint string) string {
	return p.prefix + mint
}

// Publish stores record and refreshes the key expiry atomically.
func (p *Publisher) Publish(ctx context.Context, record domain.PriceRecord) error {
	ctx, span := p.tracer.Start(ctx, "redis.publish_price",
		trace.WithAttributes(attribute.String("mint", record.Mint)),
	)
	defer span.End()

	key := p.key(record.Mint)
	fields := map[string]interface{}{
		"usd":    strconv.FormatFloat(record.PriceUSD, 'f', -1, 64),
		"sol":    strconv.FormatFloat(record.PriceNumeraire, 'f', -1, 64),
		"source": record.Source,
		"ts":     strconv.FormatInt(record.Timestamp, 10),
	}

	_, err := p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		if p.ttl > 0 {
			pipe.Expire(ctx, key, p.ttl)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return apperror.New(apperror.CodePublishFailed,
			apperror.WithContext(key),
			apperror.WithCause(err))
	}
	return nil
}

// Ping checks connectivity for the redis health check.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}
