// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// PriceRow is one token line in the price table.
type PriceRow struct {
	Token     string
	USD       float64
	Numeraire float64
	Source    string
	Updated   time.Time

	// Cross-venue view, set once a comparison arrives.
	BestBuy   string
	BestSell  string
	SpreadPct float64
	HasVenues bool
}

// PricesComponent renders the token price table.
type PricesComponent struct {
	rows      map[string]*PriceRow
	numeraire string
}

// NewPricesComponent creates a new prices component.
func NewPricesComponent(numeraire string) *PricesComponent {
	return &PricesComponent{
		rows:      make(map[string]*PriceRow),
		numeraire: numeraire,
	}
}

func (p *PricesComponent) row(token string) *PriceRow {
	r, ok := p.rows[token]
	if !ok {
		r = &PriceRow{Token: token}
		p.rows[token] = r
	}
	return r
}

// SetPrice records the latest resolved price for token.
func (p *PricesComponent) SetPrice(token string, usd, numeraire float64, source string, updated time.Time) {
	r := p.row(token)
	r.USD = usd
	r.Numeraire = numeraire
	r.Source = source
	r.Updated = updated
}

// SetVenues records the latest cross-venue comparison for token.
func (p *PricesComponent) SetVenues(token, buy, sell string, spreadPct float64) {
	r := p.row(token)
	r.BestBuy = buy
	r.BestSell = sell
	r.SpreadPct = spreadPct
	r.HasVenues = true
}

// Rows returns the rows sorted by token label.
func (p *PricesComponent) Rows() []PriceRow {
	out := make([]PriceRow, 0, len(p.rows))
	for _, r := range p.rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// View renders the prices component.
func (p *PricesComponent) View() string {
	if len(p.rows) == 0 {
		return "Waiting for price data..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var b strings.Builder
	b.WriteString(headerStyle.Render("PRICES"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %-8s  %14s  %14s  %-12s  %s\n",
		"Token", "USD", p.numeraire, "Source", "Venues")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("─", 66)))
	b.WriteString("\n")

	for _, r := range p.Rows() {
		usd := "-"
		num := "-"
		if r.USD > 0 {
			usd = fmt.Sprintf("$%.6f", r.USD)
			num = fmt.Sprintf("%.6f", r.Numeraire)
		}
		venues := dimStyle.Render("-")
		if r.HasVenues {
			venues = positiveStyle.Render(fmt.Sprintf("%s→%s %+.2f%%", r.BestBuy, r.BestSell, r.SpreadPct))
		}
		fmt.Fprintf(&b, "  %-8s  %14s  %14s  %-12s  %s\n",
			r.Token, usd, num, truncate(r.Source, 12), venues)
	}

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
