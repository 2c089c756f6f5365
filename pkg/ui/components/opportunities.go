package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// OpportunityRow represents an opportunity in the list.
type OpportunityRow struct {
	Timestamp string
	Token     string
	Buy       string
	BuyPrice  float64
	Sell      string
	SellPrice float64
	ProfitPct float64
}

// OpportunitiesComponent renders the opportunities list.
type OpportunitiesComponent struct {
	rows    []OpportunityRow
	maxRows int
	visible int
	offset  int
}

// NewOpportunitiesComponent creates a new opportunities component keeping
// at most maxRows entries and showing visible of them at a time.
func NewOpportunitiesComponent(maxRows, visible int) *OpportunitiesComponent {
	return &OpportunitiesComponent{
		rows:    make([]OpportunityRow, 0),
		maxRows: maxRows,
		visible: visible,
	}
}

// Add adds a new opportunity to the top of the list.
func (o *OpportunitiesComponent) Add(row OpportunityRow) {
	o.rows = append([]OpportunityRow{row}, o.rows...)
	if len(o.rows) > o.maxRows {
		o.rows = o.rows[:o.maxRows]
	}
}

// Len returns the number of stored opportunities.
func (o *OpportunitiesComponent) Len() int {
	return len(o.rows)
}

// Clear clears all opportunities.
func (o *OpportunitiesComponent) Clear() {
	o.rows = make([]OpportunityRow, 0)
	o.offset = 0
}

// ScrollUp moves the window towards newer entries.
func (o *OpportunitiesComponent) ScrollUp() {
	if o.offset > 0 {
		o.offset--
	}
}

// ScrollDown moves the window towards older entries.
func (o *OpportunitiesComponent) ScrollDown() {
	if o.offset+o.visible < len(o.rows) {
		o.offset++
	}
}

// Offset returns the index of the first visible row.
func (o *OpportunitiesComponent) Offset() int {
	return o.offset
}

// View renders the opportunities component.
func (o *OpportunitiesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	if len(o.rows) == 0 {
		return headerStyle.Render("OPPORTUNITIES") + "\n\nNo opportunities detected yet..."
	}

	end := o.offset + o.visible
	if end > len(o.rows) {
		end = len(o.rows)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("OPPORTUNITIES (%d-%d of %d)", o.offset+1, end, len(o.rows))))
	b.WriteString("\n")
	b.WriteString("┌──────────┬────────┬────────────────────┬────────────────────┬─────────┐\n")
	b.WriteString("│   Time   │ Token  │        Buy         │        Sell        │ Profit  │\n")
	b.WriteString("├──────────┼────────┼────────────────────┼────────────────────┼─────────┤\n")

	for _, row := range o.rows[o.offset:end] {
		fmt.Fprintf(&b, "│ %8s │ %-6s │ %-18s │ %-18s │ %s │\n",
			row.Timestamp,
			truncate(row.Token, 6),
			truncate(fmt.Sprintf("%s %.6f", row.Buy, row.BuyPrice), 18),
			truncate(fmt.Sprintf("%s %.6f", row.Sell, row.SellPrice), 18),
			profitStyle.Render(fmt.Sprintf("%6.2f%%", row.ProfitPct)),
		)
	}

	b.WriteString("└──────────┴────────┴────────────────────┴────────────────────┴─────────┘")
	return b.String()
}
