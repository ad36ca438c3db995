// Package history provides the access history tab: the access log with a
// plate search and an inclusive date range.
package history

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/app"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/store"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/timeutil"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/styles"
)

const accessTimeLayout = "2006-01-02 15:04"

// input identifies one of the filter fields.
type input int

const (
	inputSearch input = iota
	inputFrom
	inputTo
	inputCount

	inputNone input = -1
)

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	Search key.Binding
	From   key.Binding
	To     key.Binding
	Reset  key.Binding
	Copy   key.Binding
	Submit key.Binding
	Escape key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search plates"),
		),
		From: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "from date"),
		),
		To: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "to date"),
		),
		Reset: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "reset dates"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy plate"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	table    table.Model
	spinner  components.LoadingSpinner
	keys     keyMap
	inputs   [inputCount]textinput.Model
	bounds   [inputCount]string
	rows     []models.AccessLogEntry
	boundErr string
	editing  input
	width    int
	height   int
}

// New creates a new history model.
func New(state *app.State) *Model {
	var inputs [inputCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 10
		ti.Width = 12
		ti.Placeholder = "YYYY-MM-DD"
		inputs[i] = ti
	}
	inputs[inputSearch].Placeholder = "filter by plate"
	inputs[inputSearch].CharLimit = 20
	inputs[inputSearch].Width = 20
	inputs[inputSearch].Prompt = "/ "
	inputs[inputFrom].Prompt = "from "
	inputs[inputTo].Prompt = "to "

	t := table.New(
		table.WithColumns(columnsFor(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state:   state,
		table:   t,
		spinner: components.NewSpinner("Loading access history..."),
		keys:    defaultKeyMap(),
		inputs:  inputs,
		editing: inputNone,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	m.refreshRows()
	return m.spinner.Init()
}

// CapturesInput reports whether a filter field is being edited.
func (m *Model) CapturesInput() bool {
	return m.editing != inputNone
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DataUpdatedMsg:
		m.refreshRows()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.editing != inputNone {
		return m.updateEditing(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Search):
		return m, m.edit(inputSearch)
	case key.Matches(keyMsg, m.keys.From):
		return m, m.edit(inputFrom)
	case key.Matches(keyMsg, m.keys.To):
		return m, m.edit(inputTo)

	case key.Matches(keyMsg, m.keys.Reset):
		m.ResetDates()

	case key.Matches(keyMsg, m.keys.Copy):
		if i := m.table.Cursor(); i >= 0 && i < len(m.rows) {
			plate := m.rows[i].LicensePlate
			return m, func() tea.Msg {
				return app.CopyToClipboardMsg{Text: plate}
			}
		}

	case key.Matches(keyMsg, m.keys.Escape):
		if m.bounds[inputSearch] != "" {
			m.inputs[inputSearch].SetValue("")
			m.bounds[inputSearch] = ""
			m.refreshRows()
		}

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) edit(i input) tea.Cmd {
	m.editing = i
	return m.inputs[i].Focus()
}

// updateEditing feeds keys to the field being edited. The plate search
// filters as the user types; dates apply on enter.
func (m *Model) updateEditing(msg tea.Msg) (app.Tab, tea.Cmd) {
	i := m.editing

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Submit):
			m.stopEditing()
			m.bounds[i] = strings.TrimSpace(m.inputs[i].Value())
			m.refreshRows()
			return m, nil

		case key.Matches(keyMsg, m.keys.Escape):
			m.stopEditing()
			if i == inputSearch {
				m.bounds[i] = ""
			}
			m.inputs[i].SetValue(m.bounds[i])
			m.refreshRows()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[i], cmd = m.inputs[i].Update(msg)
	if i == inputSearch {
		m.bounds[i] = m.inputs[i].Value()
		m.refreshRows()
	}
	return m, cmd
}

func (m *Model) stopEditing() {
	if m.editing != inputNone {
		m.inputs[m.editing].Blur()
	}
	m.editing = inputNone
}

// SetDateRange sets both date bounds; an empty string clears a bound.
func (m *Model) SetDateRange(from, to string) {
	m.bounds[inputFrom] = strings.TrimSpace(from)
	m.bounds[inputTo] = strings.TrimSpace(to)
	m.inputs[inputFrom].SetValue(m.bounds[inputFrom])
	m.inputs[inputTo].SetValue(m.bounds[inputTo])
	m.refreshRows()
}

// ResetDates clears both date bounds.
func (m *Model) ResetDates() {
	m.SetDateRange("", "")
}

// filter builds the store filter from the committed fields. A malformed
// date yields an error and no filter.
func (m *Model) filter() (store.AccessLogFilter, error) {
	f := store.AccessLogFilter{Search: m.bounds[inputSearch]}
	loc := m.state.Now().Location()

	parse := func(i input) (*time.Time, error) {
		if m.bounds[i] == "" {
			return nil, nil
		}
		t, err := timeutil.ParseDate(m.bounds[i], loc)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	var err error
	if f.From, err = parse(inputFrom); err != nil {
		return f, fmt.Errorf("from: %w", err)
	}
	if f.To, err = parse(inputTo); err != nil {
		return f, fmt.Errorf("to: %w", err)
	}
	return f, nil
}

// refreshRows re-reads the store through the committed filter.
func (m *Model) refreshRows() {
	f, err := m.filter()
	if err != nil {
		m.boundErr = err.Error()
		m.rows = nil
	} else {
		m.boundErr = ""
		m.rows = m.state.Store().FilterAccessLogs(f)
	}

	rows := make([]table.Row, 0, len(m.rows))
	for _, e := range m.rows {
		rows = append(rows, table.Row{
			strconv.FormatInt(e.ID, 10),
			e.LicensePlate,
			e.AccessTime.Format(accessTimeLayout),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func columnsFor(width int) []table.Column {
	plateWidth := min(max(width-40, 15), 30)
	return []table.Column{
		{Title: "ID", Width: 8},
		{Title: "License plate", Width: plateWidth},
		{Title: "Access time", Width: 18},
	}
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-10, 3))
	m.table.SetColumns(columnsFor(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing != inputNone {
		return []key.Binding{m.keys.Submit, m.keys.Escape}
	}
	return []key.Binding{
		m.keys.Search,
		m.keys.From,
		m.keys.To,
		m.keys.Reset,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Search, m.keys.Copy},
		{m.keys.From, m.keys.To, m.keys.Reset},
	}
}
