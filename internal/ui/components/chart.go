// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/ui/styles"
)

// NoDataText is shown in place of an empty chart.
const NoDataText = "No data available"

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(NoDataText)
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue),
	)
}

// RenderSeriesTrend plots a series' counts as a line chart.
func RenderSeriesTrend(series models.Series, width, height int) string {
	if series.Empty() {
		return styles.HelpStyle.Render(NoDataText)
	}
	data := make([]float64, len(series.Values))
	for i, v := range series.Values {
		data[i] = float64(v)
	}
	// asciigraph needs two points to draw a line.
	if len(data) == 1 {
		data = append(data, data[0])
	}
	return RenderLineChart(data, width, height, "entries per bucket")
}

// RenderBucketChart draws one horizontal bar per bucket. The highlighted
// bucket keeps its marker and gets the highlight color.
func RenderBucketChart(series models.Series, width int) string {
	if series.Empty() {
		return styles.HelpStyle.Render(NoDataText)
	}

	maxVal := 0
	for _, v := range series.Values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range series.Labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := width - maxLabelLen - 10 // Leave room for label and value
	if barWidth < 10 {
		barWidth = 10
	}

	lines := make([]string, 0, len(series.Labels))
	for i, label := range series.Labels {
		v := series.Values[i]
		pad := strings.Repeat(" ", maxLabelLen-lipgloss.Width(label))

		barLen := v * barWidth / maxVal
		if v > 0 && barLen == 0 {
			barLen = 1
		}

		style := styles.GetBarStyle(i == series.Highlight)
		bar := style.Render(strings.Repeat("█", barLen))
		lines = append(lines, fmt.Sprintf("%s%s │%s %d", pad, label, bar, v))
	}

	return strings.Join(lines, "\n")
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []int, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	maxVal := 0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := min(max(val*(len(sparkChars)-1)/maxVal, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
