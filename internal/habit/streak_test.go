package habit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) Day {
	t.Helper()
	d, err := ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestCalculateStreaks_NoCompletions(t *testing.T) {
	today := day(t, "2026-08-28")
	assert.Equal(t, Streaks{}, CalculateStreaks(nil, today))
	assert.Equal(t, Streaks{}, CalculateStreaks([]Day{}, today))
}

func TestCalculateStreaks_ThreeConsecutiveEndingToday(t *testing.T) {
	today := day(t, "2026-08-28")
	got := CalculateStreaks([]Day{today, today.AddDays(-1), today.AddDays(-2)}, today)
	assert.Equal(t, Streaks{Current: 3, Longest: 3}, got)
}

func TestCalculateStreaks_BrokenRunKeepsLongest(t *testing.T) {
	today := day(t, "2026-08-28")
	completed := []Day{
		today,
		today.AddDays(-1),
		today.AddDays(-5),
		today.AddDays(-6),
		today.AddDays(-7),
	}
	got := CalculateStreaks(completed, today)
	assert.Equal(t, Streaks{Current: 2, Longest: 3}, got)
}

func TestCalculateStreaks_GapBeforeTodayZeroesCurrent(t *testing.T) {
	today := day(t, "2026-08-28")
	got := CalculateStreaks([]Day{today.AddDays(-2)}, today)
	assert.Equal(t, Streaks{Current: 0, Longest: 1}, got)
}

func TestCalculateStreaks_YesterdayStillCounts(t *testing.T) {
	today := day(t, "2026-08-28")
	got := CalculateStreaks([]Day{today.AddDays(-1), today.AddDays(-2)}, today)
	assert.Equal(t, Streaks{Current: 2, Longest: 2}, got)
}

func TestCalculateStreaks_OrderAndDuplicatesIrrelevant(t *testing.T) {
	today := day(t, "2026-08-28")
	shuffled := []Day{today.AddDays(-2), today, today.AddDays(-1), today.AddDays(-2), today}
	got := CalculateStreaks(shuffled, today)
	assert.Equal(t, Streaks{Current: 3, Longest: 3}, got)
}

func TestDay_RoundTrip(t *testing.T) {
	d, err := ParseDay("2026-02-09")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-09", d.String())

	_, err = ParseDay("09/02/2026")
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestDayOf_IgnoresTimeOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	morning := time.Date(2026, 8, 28, 0, 5, 0, 0, loc)
	night := time.Date(2026, 8, 28, 23, 55, 0, 0, loc)
	assert.Equal(t, DayOf(morning), DayOf(night))
	assert.Equal(t, "2026-08-28", DayOf(night).String())
}
