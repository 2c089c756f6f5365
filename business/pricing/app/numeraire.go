package app

import (
	"context"
	"errors"
	"time"

	"github.com/fd1az/solana-price-monitor/internal/apperror"
	"github.com/fd1az/solana-price-monitor/internal/cache"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

const numeraireKey = "numeraire"

// Numeraire converts USD prices into numeraire units.
type Numeraire interface {
	ToNumeraire(ctx context.Context, usd float64) float64
}

var _ Numeraire = (*NumeraireService)(nil)

// NumeraireService quotes the numeraire through a NumeraireQuoter, caching
// the quote for a short window and falling back to a configured price when
// the quoter is absent or fails.
type NumeraireService struct {
	quoter      NumeraireQuoter
	fallbackUSD float64
	ttl         time.Duration
	quotes      *cache.Cache[string, float64]
	logger      logger.LoggerInterface
}

// NewNumeraireService builds the service. quoter may be nil. A zero ttl
// disables quote caching.
func NewNumeraireService(quoter NumeraireQuoter, fallbackUSD float64, ttl time.Duration, log logger.LoggerInterface) *NumeraireService {
	return &NumeraireService{
		quoter:      quoter,
		fallbackUSD: fallbackUSD,
		ttl:         ttl,
		quotes:      cache.New[string, float64](ttl),
		logger:      log,
	}
}

// NumeraireUSD returns the numeraire USD price. It never fails.
func (s *NumeraireService) NumeraireUSD(ctx context.Context) float64 {
	if s.quoter == nil {
		return s.fallbackUSD
	}
	if s.ttl > 0 {
		if v, ok := s.quotes.Get(ctx, numeraireKey); ok {
			return v
		}
	}

	v, err := s.quoter.NumeraireUSD(ctx)
	if err == nil && v <= 0 {
		err = apperror.New(apperror.CodeMalformedResponse, apperror.WithContextf("non-positive numeraire price %v", v))
	}
	if err != nil {
		args := []any{"fallback_usd", s.fallbackUSD}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			args = append(args, appErr.ToLog()...)
		} else {
			args = append(args, "error", err)
		}
		s.logger.Warn(ctx, "numeraire quote failed, using fallback", args...)
		return s.fallbackUSD
	}

	if s.ttl > 0 {
		s.quotes.Set(ctx, numeraireKey, v, s.ttl)
	}
	return v
}

// ToNumeraire converts a USD price.
func (s *NumeraireService) ToNumeraire(ctx context.Context, usd float64) float64 {
	n := s.NumeraireUSD(ctx)
	if n <= 0 {
		return 0
	}
	return usd / n
}

func (s *NumeraireService) Close() {
	s.quotes.Close()
}

// SourceError normalizes a client failure to SOURCE_UNAVAILABLE, keeping
// the original error as the cause.
func SourceError(source string, err error) error {
	if err == nil {
		return nil
	}
	if apperror.HasCode(err, apperror.CodeSourceUnavailable) {
		return err
	}
	return apperror.New(apperror.CodeSourceUnavailable,
		apperror.WithContext(source),
		apperror.WithCause(err),
	)
}

// StaticNumeraire converts with a fixed numeraire price.
type StaticNumeraire float64

func (s StaticNumeraire) ToNumeraire(_ context.Context, usd float64) float64 {
	if s <= 0 {
		return 0
	}
	return usd / float64(s)
}
