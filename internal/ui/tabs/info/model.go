// Package info provides the info tab: configuration, session and the most
// recent poll cycles.
package info

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/app"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/config"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
)

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Copy    key.Binding
	CopyLog key.Binding
	Up      key.Binding
	Down    key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy database path"),
		),
		CopyLog: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "copy log path"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	commands *app.Commands
	syncs    []models.SyncEvent
	syncErr  string
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new info model.
func New(state *app.State, cfg *config.Config, cmds *app.Commands) *Model {
	return &Model{
		state:    state,
		config:   cfg,
		commands: cmds,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init loads the recorded poll cycles.
func (m *Model) Init() tea.Cmd {
	return m.loadSyncs()
}

func (m *Model) loadSyncs() tea.Cmd {
	if m.commands == nil {
		return nil
	}
	return m.commands.LoadSyncHistory()
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DataUpdatedMsg:
		return m, m.loadSyncs()

	case app.SyncHistoryLoadedMsg:
		if msg.Err != nil {
			m.syncErr = msg.Err.Error()
			return m, nil
		}
		m.syncErr = ""
		m.syncs = msg.Events

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Copy):
			return m, m.copy(func(c *config.Config) string { return c.DatabasePath })
		case key.Matches(msg, m.keys.CopyLog):
			return m, m.copy(func(c *config.Config) string { return c.LogPath })
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m *Model) copy(field func(*config.Config) string) tea.Cmd {
	if m.config == nil {
		return nil
	}
	text := field(m.config)
	return func() tea.Msg {
		return app.CopyToClipboardMsg{Text: text}
	}
}

// SetSize sets the available size for the info tab.
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
		m.keys.Copy,
		m.keys.CopyLog,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Copy, m.keys.CopyLog},
		{m.keys.Up, m.keys.Down},
	}
}
