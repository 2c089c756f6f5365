// Package ui provides the Bubble Tea TUI for the price monitor.
package ui

import (
	"time"

	"github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/solana-price-monitor/business/pricing/domain"
)

// PriceMsg is sent when a token price is resolved.
type PriceMsg struct {
	Label  string
	Record pricingDomain.PriceRecord
}

// ComparisonMsg carries the latest cross-venue view of a token.
type ComparisonMsg struct {
	Label      string
	Comparison *domain.Comparison
}

// OpportunityMsg is sent when an arbitrage opportunity is detected.
type OpportunityMsg struct {
	Label       string
	Opportunity *domain.Opportunity
}

// ConnectionStatusMsg is sent when connection status changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Latency   time.Duration
}

// CycleMsg is sent after every monitor cycle.
type CycleMsg struct {
	Cycle    uint64
	Duration time.Duration
	Resolved int
	Failed   int
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string
	Status  string // "connecting", "connected", "failed", "done"
	Message string
}
