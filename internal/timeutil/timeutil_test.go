package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayCompare(t *testing.T) {
	a := Day{Year: 2024, Month: time.January, Day: 31}
	b := Day{Year: 2024, Month: time.February, Day: 1}
	c := Day{Year: 2023, Month: time.December, Day: 31}

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 1, a.Compare(c))
	assert.Equal(t, 0, a.Compare(a))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "02 Jan", Day{Year: 2024, Month: time.January, Day: 2}.Label())
	assert.Equal(t, "15 Dec", Day{Year: 1999, Month: time.December, Day: 15}.Label())
	assert.Equal(t, "Sep", MonthKey{Year: 2024, Month: time.September}.Label())
}

func TestMonthCompare(t *testing.T) {
	dec := MonthKey{Year: 2023, Month: time.December}
	jan := MonthKey{Year: 2024, Month: time.January}
	assert.Equal(t, -1, dec.Compare(jan))
	assert.Equal(t, 1, jan.Compare(dec))
	assert.Equal(t, 0, jan.Compare(MonthOf(time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))))
}

func TestWithinTrailing(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour

	assert.True(t, WithinTrailing(now, now, week))
	assert.True(t, WithinTrailing(now, now.Add(-week+time.Nanosecond), week))
	assert.False(t, WithinTrailing(now, now.Add(-week), week), "exactly seven days old is excluded")
	assert.True(t, WithinTrailing(now, now.Add(time.Hour), week), "future entries are inside")
}

func TestInDayRange(t *testing.T) {
	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		from *time.Time
		to   *time.Time
		want bool
	}{
		{"open", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), nil, nil, true},
		{"on lower bound late in day", time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC), &from, &to, true},
		{"on upper bound late in day", time.Date(2024, 1, 12, 23, 59, 0, 0, time.UTC), &from, &to, true},
		{"before", time.Date(2024, 1, 9, 23, 59, 0, 0, time.UTC), &from, &to, false},
		{"after", time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), &from, &to, false},
		{"only from", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), &from, nil, true},
		{"only to", time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC), nil, &to, false},
		{"inverted", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), &to, &from, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InDayRange(tt.t, tt.from, tt.to))
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2024-02-29 ", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "2024-13-01", "29/02/2024", "2023-02-29"} {
		_, err := ParseDate(bad, time.UTC)
		assert.Error(t, err, bad)
	}
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("CET", 60*60)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-02T10:00:00Z", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)},
		{"2024-01-02T10:00:00+02:00", time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)},
		{"2024-01-02T10:00:00", time.Date(2024, 1, 2, 10, 0, 0, 0, loc)},
		{"2024-01-02T10:00:00.123456", time.Date(2024, 1, 2, 10, 0, 0, 123456000, loc)},
		{"2024-01-02 10:00:00", time.Date(2024, 1, 2, 10, 0, 0, 0, loc)},
		{"2024-01-02T10:00", time.Date(2024, 1, 2, 10, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in, loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}

	_, err := ParseTimestamp("", loc)
	assert.Error(t, err)
	_, err = ParseTimestamp("yesterday", loc)
	assert.Error(t, err)
}
