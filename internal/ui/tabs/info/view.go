package info

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderSessionCard(),
		m.renderSyncCard(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-10, 50), 80)
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Session, synchronization and configuration")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderSessionCard() string {
	state, role := m.state.Session()
	vehicles, entries := m.state.Store().Counts()

	rows := []string{
		styles.CardTitleStyle.Render("Session"),
		m.renderConfigRow("State", state.String()),
		m.renderConfigRow("Role", styles.GetRoleStyle(role.IsAdmin()).Render(string(role))),
		m.renderConfigRow("Vehicles", humanize.Comma(int64(vehicles))),
		m.renderConfigRow("Access entries", humanize.Comma(int64(entries))),
	}

	polling := "stopped"
	if d := m.state.PollInterval(); d > 0 {
		polling = "every " + d.String()
	}
	rows = append(rows, m.renderConfigRow("Polling", polling))

	if updated := m.state.GetLastUpdated(); !updated.IsZero() {
		rows = append(rows, m.renderConfigRow("Last sync", humanize.RelTime(updated, m.state.Now(), "ago", "from now")))
	}
	if syncErr := m.state.SyncError(); syncErr != "" {
		rows = append(rows, m.renderConfigRow("Last error", styles.WarningTextStyle.Render(syncErr)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderSyncCard() string {
	rows := []string{styles.CardTitleStyle.Render("Recent Syncs")}

	switch {
	case m.syncErr != "":
		rows = append(rows, styles.ErrorTextStyle.Render("Sync history unavailable: "+m.syncErr))
	case len(m.syncs) == 0:
		rows = append(rows, styles.HelpStyle.Render("No poll cycles recorded yet"))
	default:
		now := m.state.Now()
		for _, e := range m.syncs {
			rows = append(rows, m.renderSyncRow(e, now.Sub(e.StartedAt) >= 0))
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderSyncRow(e models.SyncEvent, past bool) string {
	when := e.StartedAt.Format("15:04:05")
	if past {
		when = humanize.RelTime(e.StartedAt, m.state.Now(), "ago", "from now")
	}

	line := fmt.Sprintf("%-16s %-7s %s vehicles, %s entries in %s",
		when, e.Trigger,
		humanize.Comma(int64(e.Vehicles)),
		humanize.Comma(int64(e.AccessLogs)),
		e.Duration.Round(time.Millisecond))

	if e.Failed() {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.WarningTextStyle.Render("! ")+line,
			"  "+styles.WarningTextStyle.Render(e.Error),
		)
	}
	return styles.SuccessTextStyle.Render("✓ ") + line
}

// renderConfigCard renders the configuration card.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration")}

	if m.config != nil {
		rows = append(rows,
			m.renderConfigRow("API", m.config.APIURL),
			m.renderConfigRow("Database", m.config.DatabasePath),
			m.renderConfigRow("Log file", m.config.LogPath),
			m.renderConfigRow("Poll interval", m.config.PollInterval.String()),
			m.renderConfigRow("Redirect after", m.config.RedirectCountdown.String()),
			m.renderConfigRow("Request timeout", m.config.RequestTimeout.String()),
			m.renderConfigRow("Watch credentials", strconv.FormatBool(m.config.WatchCredentials)),
			m.renderConfigRow("Notifications", strconv.FormatBool(m.config.DesktopNotifications)),
			"",
			styles.HelpStyle.Render("Press 'c' to copy the database path, 'l' for the log path"),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(20).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About ParkControl Dashboard"),
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
