package models

import (
	"fmt"
	"time"
)

// WindowKind selects how access events are bucketed.
type WindowKind int

const (
	// WindowTrailingSevenDays buckets by day over the last seven days.
	WindowTrailingSevenDays WindowKind = iota
	// WindowMonth buckets by day within one calendar month.
	WindowMonth
	// WindowYear buckets by month within one calendar year.
	WindowYear
)

// String returns the display name for a window kind.
func (k WindowKind) String() string {
	switch k {
	case WindowTrailingSevenDays:
		return "Last 7 days"
	case WindowMonth:
		return "Month"
	case WindowYear:
		return "Year"
	default:
		return "Unknown"
	}
}

// WindowMode is the aggregation window selected by the user. Month is only
// meaningful for WindowMonth and Year for WindowMonth and WindowYear.
type WindowMode struct {
	Kind  WindowKind
	Month time.Month
	Year  int
}

// TrailingSevenDays returns the rolling seven-day window.
func TrailingSevenDays() WindowMode {
	return WindowMode{Kind: WindowTrailingSevenDays}
}

// MonthWindow returns the window for one calendar month.
func MonthWindow(month time.Month, year int) WindowMode {
	return WindowMode{Kind: WindowMonth, Month: month, Year: year}
}

// YearWindow returns the window for one calendar year.
func YearWindow(year int) WindowMode {
	return WindowMode{Kind: WindowYear, Year: year}
}

// Valid reports whether the mode's components are usable.
func (w WindowMode) Valid() bool {
	switch w.Kind {
	case WindowTrailingSevenDays:
		return true
	case WindowMonth:
		return w.Month >= time.January && w.Month <= time.December
	case WindowYear:
		return true
	default:
		return false
	}
}

// Title returns a human readable description of the window.
func (w WindowMode) Title() string {
	switch w.Kind {
	case WindowMonth:
		if !w.Valid() {
			return fmt.Sprintf("Month %d (invalid)", w.Month)
		}
		return fmt.Sprintf("%s %d", w.Month, w.Year)
	case WindowYear:
		return fmt.Sprintf("Year %d", w.Year)
	default:
		return w.Kind.String()
	}
}

// PrevMonth steps a month window back one month, wrapping the year.
func (w WindowMode) PrevMonth() WindowMode {
	if w.Month <= time.January {
		return MonthWindow(time.December, w.Year-1)
	}
	return MonthWindow(w.Month-1, w.Year)
}

// NextMonth steps a month window forward one month, wrapping the year.
func (w WindowMode) NextMonth() WindowMode {
	if w.Month >= time.December {
		return MonthWindow(time.January, w.Year+1)
	}
	return MonthWindow(w.Month+1, w.Year)
}
