package components

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ConnectionStatus represents an upstream's status.
type ConnectionStatus struct {
	Name       string
	Connected  bool
	Latency    time.Duration
	LastUpdate time.Time
}

// StatusComponent renders upstream status.
type StatusComponent struct {
	connections map[string]ConnectionStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		connections: make(map[string]ConnectionStatus),
	}
}

// Update updates a connection's status.
func (s *StatusComponent) Update(status ConnectionStatus) {
	s.connections[status.Name] = status
}

// Get returns the status recorded for name.
func (s *StatusComponent) Get(name string) (ConnectionStatus, bool) {
	c, ok := s.connections[name]
	return c, ok
}

// Inline renders all connections on one line, sorted by name.
func (s *StatusComponent) Inline() string {
	names := make([]string, 0, len(s.connections))
	for name := range s.connections {
		names = append(names, name)
	}
	sort.Strings(names)

	connected := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	down := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		c := s.connections[name]
		if !c.Connected {
			parts = append(parts, down.Render("○ "+name+" (down)"))
			continue
		}
		label := name
		if c.Latency > 0 {
			label = fmt.Sprintf("%s (%dms)", name, c.Latency.Milliseconds())
		}
		parts = append(parts, connected.Render("● "+label))
	}
	return strings.Join(parts, "  │  ")
}
