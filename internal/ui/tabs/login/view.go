package login

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/styles"
)

// View renders the sign-in form centered on screen.
func (m *Model) View() string {
	rows := []string{
		styles.TitleStyle.Render("ParkControl"),
		styles.HelpStyle.Render("Sign in to continue"),
		"",
		m.renderField("Username", m.username.View(), m.focused == fieldUsername),
		m.renderField("Password", m.password.View(), m.focused == fieldPassword),
	}

	switch {
	case m.signingIn:
		rows = append(rows, styles.InfoTextStyle.Render("Signing in..."))
	case m.errMsg != "":
		rows = append(rows, styles.ErrorTextStyle.Render(m.errMsg))
	default:
		rows = append(rows, "")
	}

	rows = append(rows, "", styles.HelpStyle.Render("Tab: next field | Enter: sign in | Ctrl+C: quit"))

	card := styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterBoth(card, m.width, m.height)
}

func (m *Model) renderField(label, input string, focused bool) string {
	labelStyle := styles.BlurredStyle
	boxStyle := styles.BlurredBorderStyle
	prefix := "  "
	if focused {
		labelStyle = styles.FocusedStyle
		boxStyle = styles.FocusedBorderStyle
		prefix = "> "
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render(prefix+label+":"),
		boxStyle.Width(40).Render(input),
	)
}
