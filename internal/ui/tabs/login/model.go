// Package login provides the sign-in form shown after the redirect from the
// signed-out notice.
package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/app"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/apperr"
)

type field int

const (
	fieldUsername field = iota
	fieldPassword
	fieldCount
)

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "sign in"),
		),
	}
}

// Model is the sign-in form.
type Model struct {
	username  textinput.Model
	password  textinput.Model
	keys      keyMap
	errMsg    string
	focused   field
	width     int
	height    int
	signingIn bool
}

// New creates the sign-in form.
func New() *Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 32

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 32
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &Model{
		username: username,
		password: password,
		keys:     defaultKeyMap(),
	}
}

// Init resets the form and focuses the username field. It runs again each
// time the form is shown.
func (m *Model) Init() tea.Cmd {
	m.signingIn = false
	m.errMsg = ""
	m.password.SetValue("")
	m.focused = fieldUsername
	return m.updateFocus()
}

// CapturesInput is always true: every key belongs to the form.
func (m *Model) CapturesInput() bool {
	return true
}

// Update handles messages for the sign-in form.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.LoginResultMsg:
		m.signingIn = false
		m.password.SetValue("")
		if msg.Err != nil {
			m.errMsg = describe(msg.Err)
			m.focused = fieldPassword
			return m, m.updateFocus()
		}
		m.errMsg = ""
		return m, nil

	case tea.KeyMsg:
		if m.signingIn {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Next):
			m.focused = (m.focused + 1) % fieldCount
			return m, m.updateFocus()

		case key.Matches(msg, m.keys.Prev):
			m.focused = (m.focused - 1 + fieldCount) % fieldCount
			return m, m.updateFocus()

		case key.Matches(msg, m.keys.Submit):
			if m.focused == fieldUsername && m.password.Value() == "" {
				m.focused = fieldPassword
				return m, m.updateFocus()
			}
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	switch m.focused {
	case fieldUsername:
		m.username, cmd = m.username.Update(msg)
	case fieldPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()

	if username == "" || password == "" {
		m.errMsg = "Username and password are required"
		return nil
	}

	m.errMsg = ""
	m.signingIn = true
	return func() tea.Msg {
		return app.LoginMsg{Username: username, Password: password}
	}
}

func (m *Model) updateFocus() tea.Cmd {
	m.username.Blur()
	m.password.Blur()
	if m.focused == fieldPassword {
		return m.password.Focus()
	}
	return m.username.Focus()
}

func describe(err error) string {
	switch apperr.KindOf(err) {
	case apperr.AuthFailure:
		return "Invalid username or password"
	case apperr.StorageFailure:
		return "Signed in, but the session could not be saved"
	default:
		return "Sign-in failed: " + err.Error()
	}
}

// SetSize sets the available size for the form.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Next, m.keys.Submit}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.keys.Next, m.keys.Prev, m.keys.Submit}}
}
