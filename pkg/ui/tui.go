package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/solana-price-monitor/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed", "done"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"
	PhaseStartup   Phase = "startup"
	PhaseDashboard Phase = "dashboard"
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// Startup step keys.
const (
	StepConfig  = "config"
	StepSolana  = "solana"
	StepSources = "sources"
	StepPools   = "pools"
)

var stepOrder = []string{StepConfig, StepSolana, StepSources, StepPools}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	prices        *components.PricesComponent
	opportunities *components.OpportunitiesComponent
	status        *components.StatusComponent
	stats         *components.StatsComponent
	keys          KeyMap
	help          help.Model

	phase        Phase
	welcomeStart time.Time

	ready      bool
	quitting   bool
	paused     bool
	width      int
	height     int
	lastUpdate time.Time
	errors     []ErrorEntry // last 3
	logs       []string

	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time

	activityFeed []string
	lastScanTime time.Time
}

// New creates a new TUI model. numeraire labels the second price column.
func New(numeraire string) Model {
	now := time.Now()
	return Model{
		prices:        components.NewPricesComponent(numeraire),
		opportunities: components.NewOpportunitiesComponent(50, 8),
		status:        components.NewStatusComponent(),
		stats:         components.NewStatsComponent(),
		keys:          DefaultKeyMap(),
		help:          help.New(),
		phase:         PhaseWelcome,
		welcomeStart:  now,
		logs:          make([]string, 0, 10),
		errors:        make([]ErrorEntry, 0, 3),
		activityFeed:  make([]string, 0, 8),
		startupSteps: map[string]*StartupStep{
			StepConfig:  {Name: "Loading configuration", Status: "pending"},
			StepSolana:  {Name: "Connecting to Solana RPC", Status: "pending"},
			StepSources: {Name: "Initializing price sources", Status: "pending"},
			StepPools:   {Name: "Loading venue pools", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m *Model) leaveWelcome() {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	// Update must not call Send, so the callback runs on its own goroutine.
	if OnStartModules != nil {
		go OnStartModules()
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.phase == PhaseWelcome {
			m.leaveWelcome()
			return m, tickCmd()
		}
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.opportunities.Clear()
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Up):
			m.opportunities.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.opportunities.ScrollDown()
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, 3)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.leaveWelcome()
		}
		return m, tickCmd()

	case PriceMsg:
		if m.paused {
			return m, nil
		}
		r := msg.Record
		m.prices.SetPrice(msg.Label, r.PriceUSD, r.PriceNumeraire, r.Source, r.AcquiredAt())
		m.activityFeed = addActivity(m.activityFeed,
			fmt.Sprintf("%s $%.6f via %s", msg.Label, r.PriceUSD, r.Source))
		m.lastScanTime = time.Now()
		m.lastUpdate = time.Now()

	case ComparisonMsg:
		if m.paused || msg.Comparison == nil {
			return m, nil
		}
		c := msg.Comparison
		m.prices.SetVenues(msg.Label, c.BestBuy.Venue, c.BestSell.Venue, c.ProfitPct)
		m.lastUpdate = time.Now()

	case OpportunityMsg:
		if m.paused || msg.Opportunity == nil {
			return m, nil
		}
		opp := msg.Opportunity
		m.opportunities.Add(components.OpportunityRow{
			Timestamp: opp.Timestamp.Format("15:04:05"),
			Token:     msg.Label,
			Buy:       opp.BestBuy.Venue,
			BuyPrice:  opp.BestBuy.Price,
			Sell:      opp.BestSell.Venue,
			SellPrice: opp.BestSell.Price,
			ProfitPct: opp.ProfitPct,
		})
		s := m.stats.Stats()
		s.Opportunities++
		if opp.ProfitPct > s.BestProfitPct {
			s.BestProfitPct = opp.ProfitPct
		}
		m.stats.Update(s)
		m.activityFeed = addActivity(m.activityFeed,
			fmt.Sprintf("ARB %s: %s", msg.Label, opp.Summary()))
		m.lastUpdate = time.Now()

	case CycleMsg:
		s := m.stats.Stats()
		s.Cycles = msg.Cycle
		s.LastCycle = msg.Duration
		s.Resolved = msg.Resolved
		s.Failed = msg.Failed
		m.stats.Update(s)
		m.startupComplete = true
		m.lastUpdate = time.Now()

	case ConnectionStatusMsg:
		m.status.Update(components.ConnectionStatus{
			Name:       msg.Name,
			Connected:  msg.Connected,
			Latency:    msg.Latency,
			LastUpdate: time.Now(),
		})
		m.lastUpdate = time.Now()

	case ErrorMsg:
		if msg.Error == nil {
			return m, nil
		}
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
		s := m.stats.Stats()
		s.Errors++
		m.stats.Update(s)

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		allReady := true
		for _, step := range m.startupSteps {
			if step.Status != "connected" && step.Status != "done" {
				allReady = false
				break
			}
		}
		if allReady {
			m.startupComplete = true
		}
	}

	return m, nil
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logs = append(logs, fmt.Sprintf("[%s] %s: %s", timestamp, level, message))
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// addActivity adds an activity message and returns the updated slice (keeps last 6).
func addActivity(feed []string, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	feed = append(feed, fmt.Sprintf("[%s] %s", timestamp, message))
	if len(feed) > 6 {
		feed = feed[len(feed)-6:]
	}
	return feed
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		if !m.startupComplete {
			return m.renderStartupScreen()
		}
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" ◎ Solana Price Monitor "))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.prices.View() + "\n\n" + m.stats.View()

	var right strings.Builder
	right.WriteString(m.renderActivityFeed())
	right.WriteString("\n\n")
	right.WriteString(m.opportunities.View())
	rightCol := right.String()

	if m.width > 100 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		r := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, r))
	} else {
		b.WriteString(BoxStyle.Width(max(m.width-4, 20)).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(max(m.width-4, 20)).Render(rightCol))
	}
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(ErrorHeaderStyle.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		pauseStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
		b.WriteString(pauseStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderActivityFeed renders the recent activity feed.
func (m Model) renderActivityFeed() string {
	arbStyle := lipgloss.NewStyle().Foreground(ColorAccent)

	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("LIVE ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.activityFeed) == 0 {
		sb.WriteString(MutedValue.Render("  Waiting for the first cycle..."))
		return sb.String()
	}
	for _, activity := range m.activityFeed {
		if strings.Contains(activity, "ARB ") {
			sb.WriteString(arbStyle.Render("  " + activity))
		} else {
			sb.WriteString(MutedValue.Render("  " + activity))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	accentStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	greenStyle := lipgloss.NewStyle().Foreground(ColorSecondary)

	dots := strings.Repeat(".", int(time.Since(m.welcomeStart).Milliseconds()/300)%4)

	logo := `
   ███████╗ ██████╗ ██╗
   ██╔════╝██╔═══██╗██║
   ███████╗██║   ██║██║
   ╚════██║██║   ██║██║
   ███████║╚██████╔╝███████╗
   ╚══════╝ ╚═════╝ ╚══════╝
`
	var sb strings.Builder
	sb.WriteString("\n\n\n")
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render("     P R I C E   M O N I T O R"))
	sb.WriteString("\n\n")
	sb.WriteString(accentStyle.Render("     prices • venues • spreads"))
	sb.WriteString("\n\n\n")
	sb.WriteString(greenStyle.Render(fmt.Sprintf("     Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("     Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	successStyle := lipgloss.NewStyle().Foreground(ColorSecondary)
	connectingStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	failedStyle := lipgloss.NewStyle().Foreground(ColorDanger)

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(HeaderStyle.Render("  ◎ Solana Price Monitor"))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("  Starting up..."))
	sb.WriteString("\n\n")

	for _, k := range stepOrder {
		step, ok := m.startupSteps[k]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style
		switch step.Status {
		case "connected", "done":
			icon, statusText, style = "✓", "Ready", successStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
			icon, statusText, style = spinners[idx], "Connecting...", connectingStyle
		case "failed":
			icon, statusText, style = "✗", "Failed", failedStyle
		default:
			icon, statusText, style = "○", "Pending", MutedValue
		}

		fmt.Fprintf(&sb, "  %s %s %s\n",
			style.Render(icon),
			MutedValue.Render(step.Name),
			style.Render(statusText),
		)
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(MutedValue.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("  Waiting for the first monitor cycle..."))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if time.Since(m.lastScanTime) < 500*time.Millisecond {
		spinners := []string{"⟳", "◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/100) % len(spinners)
		scanning := lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
		parts = append(parts, scanning.Render(spinners[idx]+" Resolving"))
	}

	if s := m.stats.Stats(); s.Cycles > 0 {
		parts = append(parts, PositiveValue.Render(fmt.Sprintf("Cycle: #%d", s.Cycles)))
	}

	if conns := m.status.Inline(); conns != "" {
		parts = append(parts, conns)
	}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		indicator := ""
		if ago < 2*time.Second {
			indicator = "▪"
		}
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago %s", ago, indicator)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules
// should start. main sets it before running the program.
var OnStartModules func()

// Send sends a message to the running program. It is a no-op before the
// program exists.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
