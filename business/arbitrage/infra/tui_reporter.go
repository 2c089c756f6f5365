package infra

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/solana-price-monitor/business/arbitrage/app"
	"github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/solana-price-monitor/business/pricing/domain"
	"github.com/fd1az/solana-price-monitor/internal/asset"
	"github.com/fd1az/solana-price-monitor/pkg/ui"
)

var _ app.Reporter = (*TUIReporter)(nil)

// TUIReporter implements Reporter by forwarding messages to the Bubble Tea
// program. The program itself is owned by main.
type TUIReporter struct {
	send     func(tea.Msg)
	registry *asset.Registry
}

// NewTUIReporter creates a new TUIReporter sending to the global program.
func NewTUIReporter(registry *asset.Registry) *TUIReporter {
	return NewTUIReporterWithSender(ui.Send, registry)
}

// NewTUIReporterWithSender creates a TUIReporter using send.
func NewTUIReporterWithSender(send func(tea.Msg), registry *asset.Registry) *TUIReporter {
	if registry == nil {
		registry = asset.NewRegistry()
	}
	return &TUIReporter{send: send, registry: registry}
}

func (r *TUIReporter) label(mint string) string {
	return r.registry.Label(asset.Mint(mint))
}

// Start marks the pool step ready.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.send(ui.StartupMsg{Step: ui.StepPools, Status: "done"})
	return nil
}

// Report sends an arbitrage opportunity to the TUI.
func (r *TUIReporter) Report(opp *domain.Opportunity) {
	r.send(ui.OpportunityMsg{Label: r.label(opp.Token), Opportunity: opp})
}

// UpdatePrice sends a resolved price to the TUI.
func (r *TUIReporter) UpdatePrice(rec pricingDomain.PriceRecord) {
	r.send(ui.PriceMsg{Label: r.label(rec.Mint), Record: rec})
}

// UpdateComparison sends the latest venue comparison to the TUI.
func (r *TUIReporter) UpdateComparison(cmp *domain.Comparison) {
	r.send(ui.ComparisonMsg{Label: r.label(cmp.Token), Comparison: cmp})
}

// UpdateConnectionStatus sends connection status to the TUI.
func (r *TUIReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	r.send(ui.ConnectionStatusMsg{Name: name, Connected: connected, Latency: latency})
}

// Stop is a no-op; main quits the program.
func (r *TUIReporter) Stop() error {
	return nil
}
