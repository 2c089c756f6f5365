package app

import (
	"context"
	"sync"
	"time"

	"github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	chainDomain "github.com/fd1az/solana-price-monitor/business/chain/domain"
	pricingDomain "github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/logger"
)

type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warns = append(m.warns, msg)
}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

// bal builds a TokenBalance with the given raw amount and decimals.
func bal(account, amount string, decimals uint8) chainDomain.TokenBalance {
	return chainDomain.TokenBalance{Account: account, Amount: amount, Decimals: decimals}
}

// reserves builds pool reserves whose implied price is quote/base with
// zero decimals on both sides.
func reserves(venue, base, quote string) chainDomain.PoolReserves {
	return chainDomain.PoolReserves{
		Venue: venue,
		Pool:  venue + "-pool",
		Base:  bal(venue+"-base", base, 0),
		Quote: bal(venue+"-quote", quote, 0),
	}
}

type stubReader struct {
	pools    map[string][]chainDomain.PoolVaults
	reserves map[string]chainDomain.PoolReserves
	errs     map[string]error
}

func (r *stubReader) Pools(mint string) []chainDomain.PoolVaults {
	return r.pools[mint]
}

func (r *stubReader) ReadReserves(ctx context.Context, v chainDomain.PoolVaults) (chainDomain.PoolReserves, error) {
	if err := r.errs[v.Pool]; err != nil {
		return chainDomain.PoolReserves{}, err
	}
	return r.reserves[v.Pool], nil
}

type recordingReporter struct {
	opportunities []*domain.Opportunity
	comparisons   []*domain.Comparison
}

func (r *recordingReporter) Start(ctx context.Context) error { return nil }

func (r *recordingReporter) Report(opp *domain.Opportunity) {
	r.opportunities = append(r.opportunities, opp)
}

func (r *recordingReporter) UpdatePrice(rec pricingDomain.PriceRecord) {}

func (r *recordingReporter) UpdateComparison(cmp *domain.Comparison) {
	r.comparisons = append(r.comparisons, cmp)
}

func (r *recordingReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
}

func (r *recordingReporter) Stop() error { return nil }

var _ Reporter = (*recordingReporter)(nil)
