package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fd1az/solana-price-monitor/internal/apperror"
)

type stubQuoter struct {
	price float64
	err   error
	calls int
}

func (q *stubQuoter) NumeraireUSD(ctx context.Context) (float64, error) {
	q.calls++
	return q.price, q.err
}

func TestNumeraireService(t *testing.T) {
	tests := []struct {
		name   string
		quoter *stubQuoter
		want   float64
	}{
		{"quoted", &stubQuoter{price: 200}, 200},
		{"quoter_error_falls_back", &stubQuoter{err: errors.New("timeout")}, 150},
		{"non_positive_quote_falls_back", &stubQuoter{price: 0}, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewNumeraireService(tt.quoter, 150, time.Minute, &mockLogger{})
			defer s.Close()

			if got := s.NumeraireUSD(context.Background()); got != tt.want {
				t.Errorf("NumeraireUSD() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNumeraireService_CachesQuote(t *testing.T) {
	q := &stubQuoter{price: 200}
	s := NewNumeraireService(q, 150, time.Minute, &mockLogger{})
	defer s.Close()
	ctx := context.Background()

	if got := s.ToNumeraire(ctx, 100); got != 0.5 {
		t.Errorf("ToNumeraire(100) = %v, want 0.5", got)
	}
	s.ToNumeraire(ctx, 50)
	if q.calls != 1 {
		t.Errorf("quoter calls = %d, want 1", q.calls)
	}
}

func TestNumeraireService_NilQuoter(t *testing.T) {
	s := NewNumeraireService(nil, 150, 0, &mockLogger{})
	defer s.Close()

	if got := s.ToNumeraire(context.Background(), 300); got != 2 {
		t.Errorf("ToNumeraire(300) = %v, want 2", got)
	}
}

func TestSourceError(t *testing.T) {
	timeout := apperror.New(apperror.CodeServiceTimeout, apperror.WithContext("jupiter"))

	err := SourceError("jupiter", timeout)
	if got := apperror.GetCode(err); got != apperror.CodeSourceUnavailable {
		t.Errorf("code = %s, want SOURCE_UNAVAILABLE", got)
	}
	if !errors.Is(err, apperror.Sentinel(apperror.CodeServiceTimeout)) {
		t.Error("cause lost")
	}

	already := apperror.New(apperror.CodeSourceUnavailable)
	if SourceError("jupiter", already) != error(already) {
		t.Error("SOURCE_UNAVAILABLE should pass through unchanged")
	}
	if SourceError("jupiter", nil) != nil {
		t.Error("nil should stay nil")
	}
}
