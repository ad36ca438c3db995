// Package timeutil holds the calendar helpers shared by filtering and
// aggregation: day/month keys, labels, range checks and timestamp parsing.
package timeutil

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

const (
	// DayLayout is the label format for day buckets ("02 Jan").
	DayLayout = "02 Jan"
	// MonthLayout is the label format for month buckets ("Jan").
	MonthLayout = "Jan"
	// DateLayout is the user-facing date input format.
	DateLayout = "2006-01-02"
)

// Day identifies a calendar day by its components.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of t in its own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// Compare orders two days chronologically.
func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmp.Compare(d.Year, o.Year)
	case d.Month != o.Month:
		return cmp.Compare(int(d.Month), int(o.Month))
	default:
		return cmp.Compare(d.Day, o.Day)
	}
}

// Label renders the day as "02 Jan".
func (d Day) Label() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(DayLayout)
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month of t in its own location.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Compare orders two months chronologically.
func (m MonthKey) Compare(o MonthKey) int {
	if m.Year != o.Year {
		return cmp.Compare(m.Year, o.Year)
	}
	return cmp.Compare(int(m.Month), int(o.Month))
}

// Label renders the month as "Jan".
func (m MonthKey) Label() string {
	return m.Month.String()[:3]
}

// WithinTrailing reports whether t lies less than window before now.
// Timestamps after now count as inside the window.
func WithinTrailing(now, t time.Time, window time.Duration) bool {
	return now.Sub(t) < window
}

// InDayRange reports whether t falls between from and to inclusive, at day
// granularity. Nil bounds are open. Each bound is compared in its own
// location.
func InDayRange(t time.Time, from, to *time.Time) bool {
	if from != nil && DayOf(t.In(from.Location())).Compare(DayOf(*from)) < 0 {
		return false
	}
	if to != nil && DayOf(t.In(to.Location())).Compare(DayOf(*to)) > 0 {
		return false
	}
	return true
}

// ParseDate parses a "YYYY-MM-DD" date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses the timestamps returned by the access-control API.
// Values carrying an offset keep it; zone-less values are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
