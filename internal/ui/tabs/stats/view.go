package stats

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/styles"
)

// View renders the stats tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	series := m.state.Series()
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(series),
		m.renderBuckets(series),
		m.renderTrend(series),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderHeader(series models.Series) string {
	window := m.state.Window()
	title := styles.TitleStyle.Render("Access Statistics: " + window.Title())

	modes := []struct {
		key  string
		kind models.WindowKind
	}{
		{"w", models.WindowTrailingSevenDays},
		{"m", models.WindowMonth},
		{"y", models.WindowYear},
	}
	selector := make([]string, 0, len(modes))
	for _, mode := range modes {
		label := fmt.Sprintf("[%s] %s", mode.key, mode.kind)
		if mode.kind == window.Kind {
			selector = append(selector, styles.ButtonActiveStyle.Render(label))
		} else {
			selector = append(selector, styles.ButtonInactiveStyle.Render(label))
		}
	}

	total := fmt.Sprintf("Total entries: %s", humanize.Comma(int64(series.Total)))
	if spark := components.RenderSparkline(series.Values, 30); spark != "" {
		total += "  " + styles.InfoTextStyle.Render(spark)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, selector...),
		"",
		styles.SubTitleStyle.Render(total),
	)
}

func (m *Model) renderBuckets(series models.Series) string {
	cardWidth := max(m.width-10, 40)

	rows := []string{styles.CardTitleStyle.Render("Entries per " + bucketUnit(m.state.Window()))}
	rows = append(rows, components.RenderBucketChart(series, cardWidth-6))

	if busiest, ok := busiestBucket(series); ok {
		rows = append(rows, "", styles.HelpStyle.Render(fmt.Sprintf("Busiest: %s (%d)",
			strings.TrimPrefix(busiest.Label, models.HighlightMarker), busiest.Count)))
	}
	if series.Highlight >= 0 {
		rows = append(rows, components.RenderLegend([]components.LegendItem{
			{Label: "entries", Color: styles.Bar},
			{Label: "current " + bucketUnit(m.state.Window()), Color: styles.BarHighlight},
		}))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderTrend(series models.Series) string {
	if len(series.Values) < 2 {
		return ""
	}
	cardWidth := max(m.width-10, 40)
	chart := components.RenderSeriesTrend(series, max(cardWidth-16, 20), 6)
	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, styles.CardTitleStyle.Render("Trend"), chart),
	)
}

func bucketUnit(w models.WindowMode) string {
	if w.Kind == models.WindowYear {
		return "month"
	}
	return "day"
}

// busiestBucket returns the first bucket with the highest count.
func busiestBucket(series models.Series) (models.Bucket, bool) {
	var best models.Bucket
	found := false
	for _, b := range series.Buckets() {
		if !found || b.Count > best.Count {
			best, found = b, true
		}
	}
	return best, found
}
