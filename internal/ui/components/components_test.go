package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.label != "Loading" {
		t.Error("Spinner label mismatch")
	}
}

func TestSpinner_View(t *testing.T) {
	s := NewSpinner("Loading vehicles...")
	if !strings.Contains(s.View(), "Loading vehicles...") {
		t.Error("View missing label")
	}
}

func TestSpinner_Ticks(t *testing.T) {
	s := NewSpinner("Loading")
	if s.Init() == nil {
		t.Fatal("Init should return command")
	}

	if _, cmd := s.Update(s.Init()()); cmd == nil {
		t.Error("Update should schedule the next tick")
	}

	other := NewSpinner("Other")
	if _, cmd := s.Update(other.Init()()); cmd != nil {
		t.Error("Ticks of another spinner should be ignored")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 20, 5)
	if lines := strings.Count(view, "\n") + 1; lines != 5 {
		t.Errorf("RenderSpinnerCentered height = %d, want 5", lines)
	}
}

func monthSeries() models.Series {
	return models.Series{
		Labels:    []string{"02 Jan", models.HighlightMarker + "15 Jan"},
		Values:    []int{1, 3},
		Total:     4,
		Highlight: 1,
	}
}

func TestRenderBucketChart(t *testing.T) {
	out := RenderBucketChart(monthSeries(), 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "02 Jan") || !strings.HasSuffix(lines[0], " 1") {
		t.Errorf("first bar = %q", lines[0])
	}
	if !strings.Contains(lines[1], models.HighlightMarker+"15 Jan") || !strings.HasSuffix(lines[1], " 3") {
		t.Errorf("highlighted bar = %q", lines[1])
	}
	if strings.Count(lines[1], "█") <= strings.Count(lines[0], "█") {
		t.Error("larger count should draw a longer bar")
	}
}

func TestRenderBucketChart_Empty(t *testing.T) {
	if out := RenderBucketChart(models.Series{Highlight: -1}, 40); !strings.Contains(out, NoDataText) {
		t.Errorf("empty chart = %q", out)
	}
}

func TestRenderBucketChart_ZeroCounts(t *testing.T) {
	s := models.Series{Labels: []string{"Jan", "Feb"}, Values: []int{0, 0}, Highlight: -1}
	if out := RenderBucketChart(s, 40); strings.Contains(out, "█") {
		t.Errorf("zero counts should draw no bars: %q", out)
	}
}

func TestRenderLineChart(t *testing.T) {
	if s := RenderLineChart([]float64{1, 2, 3, 4}, 20, 5, "Test"); !strings.Contains(s, "Test") {
		t.Error("RenderLineChart missing caption")
	}
	if s := RenderLineChart(nil, 20, 5, "Test"); !strings.Contains(s, NoDataText) {
		t.Error("RenderLineChart should report missing data")
	}
}

func TestRenderSeriesTrend(t *testing.T) {
	if s := RenderSeriesTrend(monthSeries(), 30, 4); s == "" {
		t.Error("RenderSeriesTrend returned empty")
	}

	single := models.Series{Labels: []string{"Jan"}, Values: []int{2}, Highlight: -1}
	if s := RenderSeriesTrend(single, 30, 4); s == "" {
		t.Error("single bucket should still plot")
	}
}

func TestRenderSparkline(t *testing.T) {
	s := RenderSparkline([]int{0, 2, 4}, 10)
	if s != "▁▄█" {
		t.Errorf("RenderSparkline = %q, want ▁▄█", s)
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "A", Color: lipgloss.Color("#ffffff")},
		{Label: "today", Color: lipgloss.Color("214")},
	}
	s := RenderLegend(items)
	if !strings.Contains(s, "A") || !strings.Contains(s, "today") {
		t.Errorf("RenderLegend = %q", s)
	}
}
