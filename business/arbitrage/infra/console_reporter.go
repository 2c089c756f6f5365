// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fd1az/solana-price-monitor/business/arbitrage/app"
	"github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/asset"
)

var _ app.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter implements Reporter for CLI output. Price lines are left
// to the structured log; only opportunities and connection changes print.
type ConsoleReporter struct {
	mu       sync.Mutex
	out      io.Writer
	registry *asset.Registry
}

// NewConsoleReporter creates a new ConsoleReporter writing to stdout.
func NewConsoleReporter(registry *asset.Registry) *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout, registry)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to out.
func NewConsoleReporterTo(out io.Writer, registry *asset.Registry) *ConsoleReporter {
	if registry == nil {
		registry = asset.NewRegistry()
	}
	return &ConsoleReporter{out: out, registry: registry}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "Solana Price Monitor Started")
	fmt.Fprintln(r.out, "============================")
	return nil
}

// Report outputs an arbitrage opportunity to the console.
func (r *ConsoleReporter) Report(opp *domain.Opportunity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	venues := make([]string, 0, len(opp.Prices))
	for _, p := range opp.Prices {
		venues = append(venues, fmt.Sprintf("%s=%.6f", p.Venue, p.Price))
	}

	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, strings.Repeat("=", 80))
	fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
	fmt.Fprintln(r.out, strings.Repeat("=", 80))
	fmt.Fprintf(r.out, "ID:         %s\n", opp.ID)
	fmt.Fprintf(r.out, "Timestamp:  %s\n", opp.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Token:      %s\n", r.registry.Label(asset.Mint(opp.Token)))
	fmt.Fprintf(r.out, "Venues:     %s\n", strings.Join(venues, ", "))
	fmt.Fprintf(r.out, "Spread:     %.6f\n", opp.Spread)
	fmt.Fprintf(r.out, "Trade:      %s\n", opp.Summary())
	fmt.Fprintln(r.out, strings.Repeat("=", 80))
}

// UpdatePrice is a no-op; resolved prices are logged by the monitor.
func (r *ConsoleReporter) UpdatePrice(rec pricingDomain.PriceRecord) {}

// UpdateComparison is a no-op; comparisons are logged at debug level.
func (r *ConsoleReporter) UpdateComparison(cmp *domain.Comparison) {}

// UpdateConnectionStatus outputs connection status changes.
func (r *ConsoleReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := "disconnected"
	if connected {
		status = fmt.Sprintf("connected (%s)", latency.Round(time.Millisecond))
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), name, status)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Solana Price Monitor Stopped")
	return nil
}
