package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/solana-price-monitor/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/solana-price-monitor/business/pricing/domain"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func dashboard(t *testing.T) Model {
	t.Helper()
	m := New("SOL")
	m.phase = PhaseDashboard
	m.startupComplete = true
	return update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
}

func testOpportunity() *domain.Opportunity {
	return domain.NewOpportunity(&domain.Comparison{
		Token:     "JUP",
		Prices:    []domain.VenuePrice{{Venue: "orca", Price: 1.0}, {Venue: "raydium", Price: 1.02}},
		BestBuy:   domain.VenuePrice{Venue: "orca", Price: 1.0},
		BestSell:  domain.VenuePrice{Venue: "raydium", Price: 1.02},
		Spread:    0.02,
		ProfitPct: 2.0,
		Timestamp: time.Now(),
	})
}

func TestModel_PriceAndOpportunity(t *testing.T) {
	m := dashboard(t)

	rec := pricingDomain.NewPriceRecord("mint", 0.85, 0.0057, "jupiter", time.Now())
	m = update(t, m, PriceMsg{Label: "JUP", Record: rec})
	m = update(t, m, OpportunityMsg{Label: "JUP", Opportunity: testOpportunity()})

	rows := m.prices.Rows()
	if len(rows) != 1 || rows[0].Token != "JUP" || rows[0].Source != "jupiter" {
		t.Fatalf("unexpected price rows: %+v", rows)
	}
	if m.opportunities.Len() != 1 {
		t.Errorf("opportunities = %d, want 1", m.opportunities.Len())
	}
	if got := m.stats.Stats().BestProfitPct; got != 2.0 {
		t.Errorf("best profit = %v, want 2.0", got)
	}

	view := m.View()
	for _, want := range []string{"JUP", "$0.850000", "orca"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_PauseIgnoresUpdates(t *testing.T) {
	m := dashboard(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if !m.paused {
		t.Fatal("expected paused")
	}

	m = update(t, m, OpportunityMsg{Label: "JUP", Opportunity: testOpportunity()})
	if m.opportunities.Len() != 0 {
		t.Error("paused model must not record opportunities")
	}
}

func TestModel_ErrorsKeepLastThree(t *testing.T) {
	m := dashboard(t)
	for i := 0; i < 5; i++ {
		m = update(t, m, ErrorMsg{Error: errors.New("boom")})
	}
	if len(m.errors) != 3 {
		t.Errorf("errors = %d, want 3", len(m.errors))
	}
	if got := m.stats.Stats().Errors; got != 5 {
		t.Errorf("error count = %d, want 5", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if len(m.errors) != 0 {
		t.Error("errors not cleared")
	}
}

func TestModel_StartupCompletesOnCycle(t *testing.T) {
	m := New("SOL")
	m.phase = PhaseStartup
	if !strings.Contains(m.View(), "Starting up") {
		t.Fatal("expected startup screen")
	}
	m = update(t, m, CycleMsg{Cycle: 1, Duration: 120 * time.Millisecond, Resolved: 3})
	if !m.startupComplete {
		t.Error("first cycle should complete startup")
	}
	if m.stats.Stats().Cycles != 1 {
		t.Error("cycle not recorded")
	}
}

func TestModel_Quit(t *testing.T) {
	m := New("SOL")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(Model).quitting {
		t.Error("expected quitting")
	}
}
