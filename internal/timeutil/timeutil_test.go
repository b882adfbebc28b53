package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T) *time.Location {
	t.Helper()
	return time.FixedZone("MSK", 3*60*60)
}

func TestWeekdayIndexIsMondayFirst(t *testing.T) {
	monday := time.Date(2026, time.October, 12, 9, 0, 0, 0, time.UTC)
	for i := 0; i < DaysInWeek; i++ {
		assert.Equal(t, i, WeekdayIndex(monday.AddDate(0, 0, i)))
	}
}

func TestWeekBoundsFromSunday(t *testing.T) {
	loc := mustLocation(t)
	sunday := time.Date(2026, time.October, 18, 23, 30, 0, 0, loc)

	start, end := WeekBounds(sunday, loc)

	assert.Equal(t, time.Date(2026, time.October, 12, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, time.October, 19, 0, 0, 0, 0, loc), end)
}

func TestDayBoundsUsesLocation(t *testing.T) {
	loc := mustLocation(t)
	// 22:30 UTC is already the next day in UTC+3
	instant := time.Date(2026, time.October, 14, 22, 30, 0, 0, time.UTC)

	start, end := DayBounds(instant, loc)

	assert.Equal(t, time.Date(2026, time.October, 15, 0, 0, 0, 0, loc), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestHourOffset(t *testing.T) {
	loc := mustLocation(t)
	lesson := time.Date(2026, time.October, 15, 10, 30, 0, 0, loc)

	assert.InDelta(t, 10.5, HourOfDay(lesson, loc), 1e-9)
	assert.InDelta(t, 2.5, HourOffset(lesson, 8, loc), 1e-9)
	assert.InDelta(t, -1.5, HourOffset(lesson, 12, loc), 1e-9)
}

func TestParseDate(t *testing.T) {
	loc := mustLocation(t)

	got, err := ParseDate("2026-10-15", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.October, 15, 0, 0, 0, 0, loc), got)

	_, err = ParseDate("15.10.2026", loc)
	assert.Error(t, err)
}

func TestHoursMinutesConversion(t *testing.T) {
	cases := map[float64]int{1: 60, 1.5: 90, 2.5: 150, 4: 240, 0: 0, -2: -120}
	for hours, minutes := range cases {
		assert.Equal(t, minutes, HoursToMinutes(hours), "hours=%v", hours)
	}
	assert.InDelta(t, 1.5, MinutesToHours(90), 1e-9)
}

func TestIsSameDay(t *testing.T) {
	loc := mustLocation(t)
	a := time.Date(2026, time.October, 15, 0, 0, 0, 0, loc)
	b := time.Date(2026, time.October, 15, 23, 59, 0, 0, loc)
	c := time.Date(2026, time.October, 16, 0, 0, 0, 0, loc)

	assert.True(t, IsSameDay(a, b, loc))
	assert.False(t, IsSameDay(b, c, loc))
}
