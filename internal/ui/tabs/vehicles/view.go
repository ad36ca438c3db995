package vehicles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/styles"
)

// View renders the vehicles tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{m.renderTitle()}

	switch {
	case m.adding:
		sections = append(sections, m.renderAddForm())
	case m.confirmDelete:
		sections = append(sections, m.renderDeleteConfirm(), m.renderTable())
	default:
		sections = append(sections, m.renderTable())
	}

	sections = append(sections, m.renderFooter())

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Registered Vehicles")

	total, _ := m.state.Store().Counts()
	subtitle := fmt.Sprintf("%d vehicles registered", total)
	if search := m.searchInput.Value(); search != "" && !m.searching {
		subtitle += fmt.Sprintf(" · %d matching %q", len(m.rows), search)
	}

	rows := []string{title, styles.HelpStyle.Render(subtitle)}
	if m.searching {
		rows = append(rows, styles.FocusedBorderStyle.Render(m.searchInput.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(rows, "")...)
}

func (m *Model) renderTable() string {
	cardWidth := max(m.width-6, 40)

	if len(m.rows) == 0 {
		msg := "No vehicles registered. Press 'n' to add one."
		if m.searchInput.Value() != "" {
			msg = "No plates match the search."
		}
		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Center,
				"",
				styles.SubTitleStyle.Render("No Vehicles"),
				styles.HelpStyle.Render(msg),
				"",
			),
		)
	}

	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

func (m *Model) renderAddForm() string {
	cardWidth := min(max(m.width-10, 40), 70)

	rows := []string{
		styles.CardTitleStyle.Render("Add Vehicle"),
		styles.FocusedStyle.Render("> License plate:"),
		styles.FocusedBorderStyle.Width(cardWidth - 10).Render(m.plateInput.View()),
	}
	if m.formError != "" {
		rows = append(rows, styles.ErrorTextStyle.Render(m.formError))
	}
	rows = append(rows, "", styles.HelpStyle.Render("Enter: save | Esc: cancel"))

	return styles.ModalContentStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderDeleteConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete Vehicle?"),
		"",
		"Are you sure you want to delete:",
		styles.PlateStyle.Render(m.pending.LicensePlate),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)

	return styles.CenterHorizontal(
		styles.ModalContentStyle.Width(50).Render(content),
		m.width,
	)
}

func (m *Model) renderFooter() string {
	var shortcuts []string

	switch {
	case m.adding, m.searching:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " confirm",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	case m.confirmDelete:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	default:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("/") + " search",
			styles.HelpKeyStyle.Render("n") + " add",
			styles.HelpKeyStyle.Render("d") + " delete",
			styles.HelpKeyStyle.Render("c") + " copy",
		}
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpSeparatorStyle.Render(" | ")))
}
