// Package ratelimit throttles calls to upstream price APIs and the RPC node.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/fd1az/solana-price-monitor/internal/apperror"
)

// Limiter is a token bucket. A nil *Limiter never throttles.
type Limiter struct {
	name    string
	limiter *rate.Limiter
}

// PerMinute builds a limiter allowing requestsPerMinute with a 10% burst.
// Non-positive values disable limiting and return nil.
func PerMinute(name string, requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		name:    name,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst),
	}
}

// PerSecond builds a limiter with an explicit burst.
func PerSecond(name string, requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		name:    name,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks for a token. A cancelled context or a wait that would outlive
// the context deadline surfaces as RATE_LIMIT_EXCEEDED.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return apperror.New(apperror.CodeRateLimitExceeded, apperror.WithContext(l.name), apperror.WithCause(err))
	}
	return nil
}

// Allow reports whether a call may proceed right now without waiting.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}
