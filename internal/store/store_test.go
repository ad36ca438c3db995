package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/parkcontrol-dashboard-tui/internal/models"
)

func ptr(t time.Time) *time.Time { return &t }

func day(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func plates[T any](items []T, plate func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, plate(it))
	}
	return out
}

func vehiclePlate(v models.Vehicle) string    { return v.LicensePlate }
func logPlate(e models.AccessLogEntry) string { return e.LicensePlate }

func newSeeded() *EventStore {
	s := New()
	s.ReplaceVehicles([]models.Vehicle{
		{ID: 1, LicensePlate: "1234ABC"},
		{ID: 2, LicensePlate: "5678XYZ"},
		{ID: 3, LicensePlate: "9012abd"},
	})
	s.ReplaceAccessLogs([]models.AccessLogEntry{
		{ID: 1, LicensePlate: "1234ABC", AccessTime: day(2024, time.January, 10, 0, 0)},
		{ID: 2, LicensePlate: "5678XYZ", AccessTime: day(2024, time.January, 11, 12, 0)},
		{ID: 3, LicensePlate: "1234ABC", AccessTime: day(2024, time.January, 12, 23, 59)},
		{ID: 4, LicensePlate: "9012ABD", AccessTime: day(2024, time.January, 13, 0, 0)},
	})
	return s
}

func TestFilterVehicles(t *testing.T) {
	s := newSeeded()

	tests := []struct {
		search string
		want   []string
	}{
		{"", []string{"1234ABC", "5678XYZ", "9012abd"}},
		{"ab", []string{"1234ABC", "9012abd"}},
		{"  XyZ ", []string{"5678XYZ"}},
		{"nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			assert.Equal(t, tt.want, plates(s.FilterVehicles(tt.search), vehiclePlate))
		})
	}
}

func TestFilterAccessLogs(t *testing.T) {
	s := newSeeded()

	tests := []struct {
		name   string
		filter AccessLogFilter
		want   []string
	}{
		{"NoFilter", AccessLogFilter{}, []string{"1234ABC", "5678XYZ", "1234ABC", "9012ABD"}},
		{"Search", AccessLogFilter{Search: "1234abc"}, []string{"1234ABC", "1234ABC"}},
		{
			"InclusiveBounds",
			AccessLogFilter{From: ptr(day(2024, time.January, 10, 0, 0)), To: ptr(day(2024, time.January, 12, 0, 0))},
			[]string{"1234ABC", "5678XYZ", "1234ABC"},
		},
		{
			"FromOnly",
			AccessLogFilter{From: ptr(day(2024, time.January, 12, 18, 0))},
			[]string{"1234ABC", "9012ABD"},
		},
		{
			"ToOnly",
			AccessLogFilter{To: ptr(day(2024, time.January, 10, 6, 0))},
			[]string{"1234ABC"},
		},
		{
			"SearchAndRange",
			AccessLogFilter{Search: "1234", From: ptr(day(2024, time.January, 11, 0, 0))},
			[]string{"1234ABC"},
		},
		{
			"Inverted",
			AccessLogFilter{From: ptr(day(2024, time.January, 12, 0, 0)), To: ptr(day(2024, time.January, 10, 0, 0))},
			[]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plates(s.FilterAccessLogs(tt.filter), logPlate))
		})
	}
}

func TestFilterAccessLogs_BoundLocation(t *testing.T) {
	s := New()
	// 23:30 UTC on the 9th is the 10th in UTC+2.
	s.ReplaceAccessLogs([]models.AccessLogEntry{
		{ID: 1, LicensePlate: "A", AccessTime: day(2024, time.January, 9, 23, 30)},
	})

	plus2 := time.FixedZone("UTC+2", 2*60*60)
	from := time.Date(2024, time.January, 10, 0, 0, 0, 0, plus2)
	assert.Len(t, s.FilterAccessLogs(AccessLogFilter{From: &from}), 1)

	fromUTC := day(2024, time.January, 10, 0, 0)
	assert.Empty(t, s.FilterAccessLogs(AccessLogFilter{From: &fromUTC}))
}

func TestReplaceIsWholesale(t *testing.T) {
	s := newSeeded()

	s.ReplaceVehicles([]models.Vehicle{{ID: 9, LicensePlate: "NEW"}})
	assert.Equal(t, []string{"NEW"}, plates(s.Vehicles(), vehiclePlate))

	s.ReplaceAccessLogs(nil)
	assert.Empty(t, s.AccessLogs())

	v, l := s.Counts()
	assert.Equal(t, 1, v)
	assert.Equal(t, 0, l)
}

func TestReplaceSnapshot(t *testing.T) {
	s := New()
	fetched := day(2024, time.February, 1, 9, 0)
	s.ReplaceSnapshot(models.Snapshot{
		FetchedAt:  fetched,
		Vehicles:   []models.Vehicle{{ID: 1, LicensePlate: "A"}},
		AccessLogs: []models.AccessLogEntry{{ID: 1, LicensePlate: "A"}, {ID: 2, LicensePlate: "A"}},
	})

	v, l := s.Counts()
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, l)
	assert.Equal(t, fetched, s.UpdatedAt())
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := newSeeded()

	vehicles := s.Vehicles()
	require.NotEmpty(t, vehicles)
	vehicles[0].LicensePlate = "MUTATED"
	assert.Equal(t, "1234ABC", s.Vehicles()[0].LicensePlate)

	input := []models.AccessLogEntry{{ID: 1, LicensePlate: "X"}}
	s.ReplaceAccessLogs(input)
	input[0].LicensePlate = "MUTATED"
	assert.Equal(t, "X", s.AccessLogs()[0].LicensePlate)
}

func TestAccessLogFilter_IsZero(t *testing.T) {
	assert.True(t, AccessLogFilter{}.IsZero())
	assert.False(t, AccessLogFilter{Search: "a"}.IsZero())
	assert.False(t, AccessLogFilter{To: ptr(time.Now())}.IsZero())
}
