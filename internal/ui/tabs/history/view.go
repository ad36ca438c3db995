package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderFilters(),
		m.renderTable(),
	)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Access History")

	_, total := m.state.Store().Counts()
	subtitle := fmt.Sprintf("%d of %d entries", len(m.rows), total)
	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle))
}

func (m *Model) renderFilters() string {
	boxes := make([]string, 0, inputCount)
	for i := range m.inputs {
		style := styles.BlurredBorderStyle
		if input(i) == m.editing {
			style = styles.FocusedBorderStyle
		}
		boxes = append(boxes, style.Render(m.inputs[i].View()))
	}

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, boxes...)}
	if m.boundErr != "" {
		rows = append(rows, styles.ErrorTextStyle.Render(m.boundErr))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderTable() string {
	cardWidth := max(m.width-6, 40)

	if len(m.rows) == 0 {
		msg := "No access entries recorded yet."
		if m.filtered() {
			msg = "No entries match the filters."
		}
		return styles.CardStyle.Width(cardWidth).Render(styles.HelpStyle.Render(msg))
	}

	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

func (m *Model) filtered() bool {
	for _, b := range m.bounds {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}
