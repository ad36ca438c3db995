// Package vehicles provides the registered vehicles tab: search, add and
// delete for administrators.
package vehicles

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/app"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/styles"
)

// entryTimeLayout formats the entry time column.
const entryTimeLayout = "2006-01-02 15:04"

// keyMap defines the key bindings specific to the vehicles tab.
type keyMap struct {
	Search key.Binding
	Add    key.Binding
	Delete key.Binding
	Copy   key.Binding
	Submit key.Binding
	Escape key.Binding
}

// defaultKeyMap returns the default key bindings for the vehicles tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search plates"),
		),
		Add: key.NewBinding(
			key.WithKeys("n", "a"),
			key.WithHelp("n", "add vehicle"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy plate"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the vehicles tab state.
type Model struct {
	state         *app.State
	table         table.Model
	plateInput    textinput.Model
	searchInput   textinput.Model
	spinner       components.LoadingSpinner
	keys          keyMap
	rows          []models.Vehicle
	pending       models.Vehicle
	formError     string
	width         int
	height        int
	adding        bool
	searching     bool
	confirmDelete bool
}

// New creates a new vehicles model.
func New(state *app.State) *Model {
	plateInput := textinput.New()
	plateInput.Placeholder = "B 01 ABC"
	plateInput.CharLimit = 20
	plateInput.Width = 30

	searchInput := textinput.New()
	searchInput.Placeholder = "filter by plate"
	searchInput.Prompt = "/ "
	searchInput.CharLimit = 20
	searchInput.Width = 30

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
		state:       state,
		table:       t,
		plateInput:  plateInput,
		searchInput: searchInput,
		spinner:     components.NewSpinner("Loading vehicles..."),
		keys:        defaultKeyMap(),
	}
}

// Init initializes the vehicles tab.
func (m *Model) Init() tea.Cmd {
	m.refreshRows()
	return m.spinner.Init()
}

// CapturesInput reports whether a text field or dialog owns the keyboard.
func (m *Model) CapturesInput() bool {
	return m.adding || m.searching || m.confirmDelete
}

// Update handles messages for the vehicles tab.
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

	switch {
	case m.adding:
		return m.updateAddForm(msg)
	case m.confirmDelete:
		return m.updateDeleteConfirm(msg)
	case m.searching:
		return m.updateSearch(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Search):
		m.searching = true
		return m, m.searchInput.Focus()

	case key.Matches(keyMsg, m.keys.Add):
		m.adding = true
		m.formError = ""
		m.plateInput.SetValue("")
		return m, m.plateInput.Focus()

	case key.Matches(keyMsg, m.keys.Delete):
		if v, ok := m.selected(); ok {
			m.confirmDelete = true
			m.pending = v
		}

	case key.Matches(keyMsg, m.keys.Copy):
		if v, ok := m.selected(); ok {
			plate := v.LicensePlate
			return m, func() tea.Msg {
				return app.CopyToClipboardMsg{Text: plate}
			}
		}

	case key.Matches(keyMsg, m.keys.Escape):
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			m.refreshRows()
		}

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	return m, nil
}

// updateSearch feeds keys to the search field and filters as the user types.
func (m *Model) updateSearch(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Escape):
			m.searching = false
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.refreshRows()
			return m, nil
		case key.Matches(keyMsg, m.keys.Submit):
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.refreshRows()
	return m, cmd
}

// updateAddForm handles the add vehicle form.
func (m *Model) updateAddForm(msg tea.Msg) (app.Tab, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Escape):
			m.closeAddForm()
			return m, nil

		case key.Matches(keyMsg, m.keys.Submit):
			plate := strings.TrimSpace(m.plateInput.Value())
			if plate == "" {
				m.formError = "License plate is required"
				return m, nil
			}
			m.closeAddForm()
			return m, func() tea.Msg {
				return app.AddVehicleMsg{Plate: plate}
			}
		}
	}

	var cmd tea.Cmd
	m.plateInput, cmd = m.plateInput.Update(msg)
	return m, cmd
}

func (m *Model) closeAddForm() {
	m.adding = false
	m.formError = ""
	m.plateInput.Blur()
	m.plateInput.SetValue("")
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y", "Y":
		m.confirmDelete = false
		v := m.pending
		m.pending = models.Vehicle{}
		return m, func() tea.Msg {
			return app.DeleteVehicleMsg{ID: v.ID, Plate: v.LicensePlate}
		}
	case "n", "N", "esc":
		m.confirmDelete = false
		m.pending = models.Vehicle{}
	}
	return m, nil
}

func (m *Model) selected() (models.Vehicle, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return models.Vehicle{}, false
	}
	return m.rows[i], true
}

// refreshRows re-reads the store through the current search.
func (m *Model) refreshRows() {
	m.rows = m.state.Store().FilterVehicles(m.searchInput.Value())

	rows := make([]table.Row, 0, len(m.rows))
	for _, v := range m.rows {
		entry := "-"
		if v.HasEntryTime() {
			entry = v.EntryTime.Format(entryTimeLayout)
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(v.ID, 10),
			v.LicensePlate,
			entry,
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
		{Title: "Entry time", Width: 18},
	}
}

// SetSize sets the available size for the vehicles tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-10, 3))
	m.table.SetColumns(columnsFor(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.adding || m.searching {
		return []key.Binding{m.keys.Submit, m.keys.Escape}
	}
	return []key.Binding{
		m.keys.Search,
		m.keys.Add,
		m.keys.Delete,
		m.keys.Copy,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Search, m.keys.Add},
		{m.keys.Delete, m.keys.Copy},
	}
}
