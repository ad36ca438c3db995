// Package stats provides the access statistics tab: entries bucketed over a
// selectable window.
package stats

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/app"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the stats tab.
type keyMap struct {
	Week      key.Binding
	Month     key.Binding
	Year      key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	PrevYear  key.Binding
	NextYear  key.Binding
	Today     key.Binding
	Up        key.Binding
	Down      key.Binding
}

// defaultKeyMap returns the default key bindings for the stats tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Week: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "last 7 days"),
		),
		Month: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "month"),
		),
		Year: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "year"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
		PrevYear: key.NewBinding(
			key.WithKeys("<", ","),
			key.WithHelp("<", "prev year"),
		),
		NextYear: key.NewBinding(
			key.WithKeys(">", "."),
			key.WithHelp(">", "next year"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "this month"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the stats tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	spinner  components.LoadingSpinner
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new stats model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		spinner:  components.NewSpinner("Loading access statistics..."),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the stats tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the stats tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if mode, ok := m.nextWindow(keyMsg); ok {
		return m, func() tea.Msg {
			return app.SetWindowMsg{Mode: mode}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// nextWindow maps a key to the window it selects. Month keys only act in
// month mode and year keys in month or year mode.
func (m *Model) nextWindow(msg tea.KeyMsg) (models.WindowMode, bool) {
	current := m.state.Window()
	now := m.state.Now()

	year := current.Year
	if current.Kind == models.WindowTrailingSevenDays {
		year = now.Year()
	}

	switch {
	case key.Matches(msg, m.keys.Week):
		return models.TrailingSevenDays(), true

	case key.Matches(msg, m.keys.Month):
		if current.Kind == models.WindowMonth {
			return current, false
		}
		return models.MonthWindow(now.Month(), year), true

	case key.Matches(msg, m.keys.Year):
		return models.YearWindow(year), true

	case key.Matches(msg, m.keys.Today):
		return models.MonthWindow(now.Month(), now.Year()), true

	case key.Matches(msg, m.keys.PrevMonth):
		if current.Kind == models.WindowMonth {
			return current.PrevMonth(), true
		}

	case key.Matches(msg, m.keys.NextMonth):
		if current.Kind == models.WindowMonth {
			return current.NextMonth(), true
		}

	case key.Matches(msg, m.keys.PrevYear), key.Matches(msg, m.keys.NextYear):
		delta := -1
		if key.Matches(msg, m.keys.NextYear) {
			delta = 1
		}
		switch current.Kind {
		case models.WindowMonth:
			return models.MonthWindow(current.Month, current.Year+delta), true
		case models.WindowYear:
			return models.YearWindow(current.Year + delta), true
		}
	}

	return current, false
}

// SetSize sets the available size for the stats tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// DocStyle margin and padding
	m.viewport.Width = max(width-6, 0)
	m.viewport.Height = max(height-2, 0)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Week,
		m.keys.Month,
		m.keys.Year,
		m.keys.PrevMonth,
		m.keys.NextMonth,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Week, m.keys.Month, m.keys.Year, m.keys.Today},
		{m.keys.PrevMonth, m.keys.NextMonth, m.keys.PrevYear, m.keys.NextYear},
		{m.keys.Up, m.keys.Down},
	}
}
