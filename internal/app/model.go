// Package app implements the main Bubble Tea application with role-based tab navigation.
package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/apperr"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/services"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabVehicles is the ID for the registered vehicles tab.
	TabVehicles TabID = iota
	// TabHistory is the ID for the access history tab.
	TabHistory
	// TabStats is the ID for the access statistics tab.
	TabStats
	// TabInfo is the ID for the info tab.
	TabInfo

	tabCount = 4
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabVehicles:
		return "Vehicles"
	case TabHistory:
		return "History"
	case TabStats:
		return "Stats"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs with text inputs. While CapturesInput
// reports true, only ctrl+c is handled globally.
type InputCapturer interface {
	CapturesInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1     key.Binding
	Tab2     key.Binding
	Tab3     key.Binding
	Tab4     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Refresh  key.Binding
	Logout   key.Binding
	Help     key.Binding
	Quit     key.Binding
	ForceQ   key.Binding
	Escape   key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "first tab"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "second tab"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "third tab"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "fourth tab"))
	k.NextTab = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh"))
	k.Logout = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "sign out"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	k.ForceQ = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	k.PageUp = key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up"))
	k.PageDown = key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Logout, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Refresh, k.Logout, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content   lipgloss.Style
	StatusBar lipgloss.Style
	Toast     lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.StatusBar = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Error = lipgloss.NewStyle().Foreground(errorColor)
	s.Success = lipgloss.NewStyle().Foreground(success)
	s.Warning = lipgloss.NewStyle().Foreground(warning)

	return s
}

// Model is the main application model.
type Model struct {
	login    Tab
	state    *State
	services *services.Manager
	commands *Commands

	// Service subscription
	eventChannel chan services.ServiceEvent

	spinner spinner.Model
	tabs    []Tab
	styles  Styles
	keymap  KeyMap

	activeTab TabID
	width     int
	height    int

	showHelp bool
	ready    bool
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	state := NewState()
	if mgr != nil {
		state.SetNow(mgr.Now)
	}

	return &Model{
		activeTab: TabHistory,
		tabs:      make([]Tab, tabCount), // set by SetTabs
		state:     state,
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model, indexed by TabID.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = make([]Tab, tabCount)
	copy(m.tabs, tabs)
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// SetLoginView sets the view shown once the sign-in redirect fires.
func (m *Model) SetLoginView(login Tab) {
	m.login = login
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// VisibleTabs returns the tabs available to the signed-in role. Admins get
// the full dashboard, other users only their access history.
func (m *Model) VisibleTabs() []TabID {
	if m.state.IsAdmin() {
		return []TabID{TabVehicles, TabHistory, TabStats, TabInfo}
	}
	return []TabID{TabHistory, TabInfo}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds,
			subscribeToServicesCmd(m.services),
			checkAuthCmd(m.services),
		)
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}
	if m.login != nil {
		cmds = append(cmds, m.login.Init())
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)

	case tea.KeyMsg:
		cmd, consumed := m.handleKeyMsg(msg)
		if consumed {
			return m, cmd
		}

	case spinner.TickMsg:
		// Every tab keeps its own spinner running, visible or not.
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, tea.Batch(cmd, m.updateAllTabs(msg))

	case DataUpdatedMsg:
		return m, m.updateAllTabs(msg)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveView(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		if m.signedIn() {
			m.state.RefreshSeries()
		}
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case SessionCheckedMsg:
		if msg.State == models.SessionAuthenticated {
			m.state.SetLoading("initial", true)
		}
	case LoginMsg:
		cmds = append(cmds, m.handleLogin(msg))
	case LoginResultMsg:
		cmds = append(cmds, m.handleLoginResult(msg)...)
	case LogoutMsg:
		if m.services != nil {
			cmds = append(cmds, logoutCmd(m.services))
		}
	case LogoutResultMsg:
		if msg.Err == nil {
			cmds = append(cmds, notifyInfoCmd("Signed out"))
		}
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh())
	case RefreshResultMsg:
		if !msg.Started {
			m.state.SetLoading("sync", false)
			cmds = append(cmds, notifyWarningCmd("Refresh skipped, try again in a moment"))
		}
	case AddVehicleMsg:
		if m.services != nil {
			m.state.SetLoading("mutation", true)
			cmds = append(cmds, addVehicleCmd(m.services, msg.Plate))
		}
	case DeleteVehicleMsg:
		if m.services != nil {
			m.state.SetLoading("mutation", true)
			cmds = append(cmds, deleteVehicleCmd(m.services, msg.ID, msg.Plate))
		}
	case MutationResultMsg:
		cmds = append(cmds, m.handleMutationResult(msg))
	case SetWindowMsg:
		if m.state.SetWindow(msg.Mode) {
			cmds = append(cmds, dataUpdatedCmd)
		}
	case CopyToClipboardMsg:
		cmds = append(cmds, copyToClipboardCmd(msg.Text))
	case ClipboardResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Copy failed: %v", msg.Error)))
		} else {
			cmds = append(cmds, notifyInfoCmd(fmt.Sprintf("Copied %s", msg.Text)))
		}
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(msg.Error.Error()))
	case TabSwitchMsg:
		m.switchTab(msg.Tab)
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func dataUpdatedCmd() tea.Msg {
	return DataUpdatedMsg{}
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleLogin(msg LoginMsg) tea.Cmd {
	if m.services == nil {
		return nil
	}
	m.state.SetLoadingNotification("Signing in...")
	return loginCmd(m.services, msg.Username, msg.Password)
}

func (m *Model) handleLoginResult(msg LoginResultMsg) []tea.Cmd {
	m.state.ClearLoadingNotification()

	var cmds []tea.Cmd
	if m.login != nil {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch {
	case msg.Err == nil:
		cmds = append(cmds, notifySuccessCmd("Signed in"))
	case apperr.Is(msg.Err, apperr.AuthFailure):
		cmds = append(cmds, notifyCmd(NotificationError, "Sign-in failed: check username and password", QuickNotificationDuration))
	case apperr.Is(msg.Err, apperr.StorageFailure):
		// Reported by the services through an ErrorEvent.
	default:
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Sign-in failed: %v", msg.Err)))
	}
	return cmds
}

func (m *Model) handleRefresh() tea.Cmd {
	if m.services == nil || !m.signedIn() {
		return nil
	}
	m.state.SetLoading("sync", true)
	return refreshCmd(m.services)
}

func (m *Model) handleMutationResult(msg MutationResultMsg) tea.Cmd {
	m.state.SetLoading("mutation", false)
	if msg.Err != nil {
		var appErr *apperr.Error
		if errors.As(msg.Err, &appErr) && appErr.Kind.Alerting() {
			// Already surfaced through the services' ErrorEvent.
			return nil
		}
		return notifyErrorCmd(msg.Err.Error())
	}

	switch msg.Op {
	case "add":
		return notifySuccessCmd(fmt.Sprintf("Vehicle %s added", msg.Plate))
	case "delete":
		return notifySuccessCmd(fmt.Sprintf("Vehicle %s deleted", msg.Plate))
	}
	return nil
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.SessionChangedEvent:
		prev, _ := m.state.Session()
		m.state.SetSession(e.State, e.Role)
		if e.State == models.SessionAuthenticated {
			if prev != models.SessionAuthenticated {
				m.state.SetLoading("initial", true)
			}
			if !slices.Contains(m.VisibleTabs(), m.activeTab) {
				m.activeTab = m.VisibleTabs()[0]
			}
		} else {
			m.showHelp = false
		}
		m.updateTabSizes()
		return dataUpdatedCmd

	case services.CountdownEvent:
		m.state.SetCountdown(e.Remaining)

	case services.RedirectEvent:
		m.state.SetRedirected(true)
		if m.login != nil {
			return m.login.Init()
		}

	case services.SyncCompletedEvent:
		m.state.ApplySync(e.Snapshot, e.Sync, e.Err)
		m.state.SetPollInterval(e.Interval)
		return dataUpdatedCmd

	case services.ErrorEvent:
		if e.Kind == apperr.FetchFailure {
			// Shown in the status bar only.
			return nil
		}
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

func (m *Model) signedIn() bool {
	state, _ := m.state.Session()
	return state == models.SessionAuthenticated
}

// updateActiveView routes a message to the surface on screen: the active
// tab when signed in, the login form after the redirect, nothing otherwise.
func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	if !m.signedIn() {
		if m.state.Redirected() && m.login != nil {
			var cmd tea.Cmd
			m.login, cmd = m.login.Update(msg)
			return cmd
		}
		return nil
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateAllTabs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateTabSizes() {
	// navbar (2), status bar (1), spacing
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
	if m.login != nil {
		m.login.SetSize(m.width, m.height)
	}
}

func (m *Model) switchTab(id TabID) {
	if slices.Contains(m.VisibleTabs(), id) {
		m.activeTab = id
		m.updateTabSizes()
	}
}

func (m *Model) stepTab(delta int) {
	visible := m.VisibleTabs()
	idx := max(slices.Index(visible, m.activeTab), 0)
	idx = (idx + delta + len(visible)) % len(visible)
	m.switchTab(visible[idx])
}

func (m *Model) capturingInput() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturesInput()
}

// handleKeyMsg applies global bindings. It reports whether the key was
// consumed; unconsumed keys go to the active view.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keymap.ForceQ) {
		return tea.Quit, true
	}

	if !m.signedIn() {
		if m.state.Redirected() && m.login != nil {
			return nil, false
		}
		if key.Matches(msg, m.keymap.Quit) {
			return tea.Quit, true
		}
		return nil, true
	}

	if m.capturingInput() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}

	case key.Matches(msg, m.keymap.Tab1, m.keymap.Tab2, m.keymap.Tab3, m.keymap.Tab4):
		idx := int(msg.String()[0] - '1')
		if visible := m.VisibleTabs(); idx < len(visible) {
			m.switchTab(visible[idx])
		}
		return nil, true

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp {
			m.stepTab(1)
		}
		return nil, true

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp {
			m.stepTab(-1)
		}
		return nil, true

	case key.Matches(msg, m.keymap.Refresh):
		return m.handleRefresh(), true

	case key.Matches(msg, m.keymap.Logout):
		if m.services != nil {
			return logoutCmd(m.services), true
		}
		return nil, true
	}

	return nil, false
}

// View renders the application UI.
func (m *Model) View() string {
	if !m.ready {
		return m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View()))
	}

	var mainView string
	state, _ := m.state.Session()
	switch {
	case state == models.SessionUnknown:
		mainView = styles.CenterBoth(
			fmt.Sprintf("%s Checking authentication...", m.spinner.View()),
			m.width, m.height)
	case state == models.SessionUnauthenticated && m.state.Redirected() && m.login != nil:
		mainView = m.login.View()
	case state == models.SessionUnauthenticated:
		mainView = m.renderSignedOut()
	default:
		mainView = m.renderDashboard()
	}

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderNavbar())
	b.WriteString("\n")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *Model) renderSignedOut() string {
	notice := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Error.Render("✗ You must be signed in to access this page."),
		"",
		fmt.Sprintf("Redirecting to the sign-in screen in %d seconds...", m.state.Countdown()),
		"",
		m.styles.Subtle.Render("q to quit"),
	)
	return styles.CenterBoth(styles.CardStyle.Render(notice), m.width, m.height)
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, id := range m.VisibleTabs() {
		if id == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, id)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, id)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

// busyLabels names the background work shown in the status bar. The first
// sync has its own message.
var busyLabels = map[string]string{
	"sync":     "refreshing",
	"mutation": "saving",
}

func (m *Model) renderStatusBar() string {
	_, role := m.state.Session()
	vehicles, logs := m.state.Store().Counts()

	var parts []string
	if updated := m.state.GetLastUpdated(); updated.IsZero() {
		parts = append(parts, m.spinner.View()+" waiting for first sync")
	} else {
		parts = append(parts, "synced "+humanize.RelTime(updated, m.state.Now(), "ago", "from now"))
	}
	for _, resource := range m.state.GetLoadingResources() {
		if label, ok := busyLabels[resource]; ok {
			parts = append(parts, m.spinner.View()+" "+label)
		}
	}
	parts = append(parts,
		fmt.Sprintf("%s vehicles", humanize.Comma(int64(vehicles))),
		fmt.Sprintf("%s entries", humanize.Comma(int64(logs))),
		styles.GetRoleStyle(role.IsAdmin()).Render(strings.ToLower(string(role))),
	)

	line := m.styles.StatusBar.Render(strings.Join(parts, " · "))
	if syncErr := m.state.SyncError(); syncErr != "" {
		line += m.styles.Warning.Render(" last sync incomplete: " + ansi.Truncate(syncErr, 60, "…"))
	}
	return line
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	x := max((m.width-lipgloss.Width(overlay))/2, 0)
	y := max((m.height-len(overlayLines))/2, 0)
	overlayWidth := lipgloss.Width(overlay)

	for len(mainLines) < y+len(overlayLines) {
		mainLines = append(mainLines, "")
	}

	for i, overlayLine := range overlayLines {
		mainY := y + i
		mainLine := mainLines[mainY]
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	const startY = 2

	for len(mainLines) < startY+len(toastLines) {
		mainLines = append(mainLines, "")
	}

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		mainLine := mainLines[lineIdx]

		if w := lipgloss.Width(mainLine); w < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		fmt.Sprintf("  1-%d        Switch tabs", len(m.VisibleTabs())),
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Sync now",
		"  x          Sign out",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
		"",
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.activeTab)))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"%s\n\n%s",
		m.activeTab,
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}
