// Package aggregate buckets access events into calendar-aligned counts for
// the statistics chart.
package aggregate

import (
	"slices"
	"time"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/timeutil"
)

// TrailingWindow is the span covered by the trailing seven-day mode.
const TrailingWindow = 7 * 24 * time.Hour

type calendarKey[K any] interface {
	comparable
	Compare(K) int
	Label() string
}

// Aggregate groups entries according to mode and returns the buckets in
// chronological order. Calendar keys are computed in now's location, and
// the bucket covering now carries models.HighlightMarker. Entries outside
// the window are dropped; empty buckets are not filled in.
func Aggregate(entries []models.AccessLogEntry, mode models.WindowMode, now time.Time) models.Series {
	if !mode.Valid() {
		return models.Series{Highlight: -1}
	}

	loc := now.Location()

	switch mode.Kind {
	case models.WindowYear:
		counts := make(map[timeutil.MonthKey]int)
		for _, e := range entries {
			t := e.AccessTime.In(loc)
			if t.Year() == mode.Year {
				counts[timeutil.MonthOf(t)]++
			}
		}
		return build(counts, timeutil.MonthOf(now))

	case models.WindowMonth:
		counts := make(map[timeutil.Day]int)
		for _, e := range entries {
			t := e.AccessTime.In(loc)
			if t.Year() == mode.Year && t.Month() == mode.Month {
				counts[timeutil.DayOf(t)]++
			}
		}
		return build(counts, timeutil.DayOf(now))

	default:
		counts := make(map[timeutil.Day]int)
		for _, e := range entries {
			if timeutil.WithinTrailing(now, e.AccessTime, TrailingWindow) {
				counts[timeutil.DayOf(e.AccessTime.In(loc))]++
			}
		}
		return build(counts, timeutil.DayOf(now))
	}
}

func build[K calendarKey[K]](counts map[K]int, current K) models.Series {
	keys := make([]K, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b K) int { return a.Compare(b) })

	s := models.Series{
		Labels:    make([]string, len(keys)),
		Values:    make([]int, len(keys)),
		Highlight: -1,
	}
	for i, k := range keys {
		label := k.Label()
		if k == current {
			label = models.HighlightMarker + label
			s.Highlight = i
		}
		s.Labels[i] = label
		s.Values[i] = counts[k]
		s.Total += counts[k]
	}
	return s
}
