package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommitment(t *testing.T, book Book, timeframe string) *Commitment {
	t.Helper()
	c, err := NewCommitment("c1", book, UnitPages, timeframe, "+200", decimal.NewFromInt(10), day0)
	require.NoError(t, err)
	return c
}

func TestNewCommitment_DailyTarget(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 300}, "10 Day")

	assert.Equal(t, 10, c.TotalDays())
	assert.Equal(t, 30, c.DailyTarget)
	assert.Equal(t, "+200", c.Odds)
	assert.Equal(t, day0, c.StartDate)
	assert.Equal(t, day0.AddDate(0, 0, 9), c.TargetEndDate)
	assert.Equal(t, DayScheduled, c.Day.Mode())
}

func TestNewCommitment_RoundsUp(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 301}, "1 Week")
	assert.Equal(t, 43, c.DailyTarget)
	assert.GreaterOrEqual(t, c.DailyTarget*c.TotalDays(), 301)
	assert.Less(t, c.DailyTarget*(c.TotalDays()-1), 301)
}

func TestNewCommitment_NormalizesOdds(t *testing.T) {
	c, err := NewCommitment("c1", Book{ID: "b1", TotalPages: 100}, UnitPages, "1 Week", "180", decimal.NewFromInt(5), day0)
	require.NoError(t, err)
	assert.Equal(t, "+180", c.Odds)
}

func TestNewCommitment_Preconditions(t *testing.T) {
	book := Book{ID: "b1", TotalPages: 100}
	ten := decimal.NewFromInt(10)

	_, err := NewCommitment("c1", book, UnitPages, "0 Days", "+150", ten, day0)
	assert.ErrorIs(t, err, ErrInvalidTimeframe)

	_, err = NewCommitment("c1", book, UnitPages, "1 Week", "odds", ten, day0)
	assert.ErrorIs(t, err, ErrInvalidOdds)

	_, err = NewCommitment("c1", book, UnitPages, "1 Week", "+150", decimal.Zero, day0)
	assert.ErrorIs(t, err, ErrInvalidWager)

	_, err = NewCommitment("c1", book, UnitPages, "1 Week", "+150", decimal.NewFromInt(-5), day0)
	assert.ErrorIs(t, err, ErrInvalidWager)

	_, err = NewCommitment("c1", Book{ID: "b2"}, UnitPages, "1 Week", "+150", ten, day0)
	assert.ErrorIs(t, err, ErrEmptyRange)

	_, err = NewCommitment("c1", book, UnitChapters, "1 Week", "+150", ten, day0)
	assert.ErrorIs(t, err, ErrNoChapters)
}

func TestCommitment_DayRange(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 301}, "1 Week")

	first, err := c.DayRange(1)
	require.NoError(t, err)
	assert.Equal(t, DayRange{Day: 1, Start: 1, End: 43, Target: 43}, first)

	last, err := c.DayRange(7)
	require.NoError(t, err)
	assert.Equal(t, DayRange{Day: 7, Start: 259, End: 301, Target: 43}, last)

	_, err = c.DayRange(0)
	assert.ErrorIs(t, err, ErrDayOutOfRange)
	_, err = c.DayRange(8)
	assert.ErrorIs(t, err, ErrDayOutOfRange)
}

func TestCommitment_DayRangeLastDayShorter(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 100}, "3 Days")
	assert.Equal(t, 34, c.DailyTarget)

	last, err := c.DayRange(3)
	require.NoError(t, err)
	assert.Equal(t, DayRange{Day: 3, Start: 69, End: 100, Target: 32}, last)
}

// The day ranges must tile the effective range with no gaps or overlaps.
func TestCommitment_DayRangesTileEffectiveRange(t *testing.T) {
	prefs := []ReadingPreferences{
		{},
		{SkipFrontMatter: 7, SkipBackMatter: 13},
		{CustomStart: 40, CustomEnd: 41},
	}
	for _, total := range []int{1, 2, 5, 29, 100, 301, 999} {
		for _, p := range prefs {
			for _, tf := range []string{"1 Day", "2 Days", "3 Days", "1 Week", "10 Day", "2 Weeks", "1 Month", "3 Months"} {
				book := Book{ID: "b", TotalPages: total, Preferences: p}
				rng, err := book.EffectiveRange(UnitPages)
				require.NoError(t, err)
				if rng.Size() == 0 {
					continue
				}
				c, err := NewCommitment("c", book, UnitPages, tf, "+110", decimal.NewFromInt(1), day0)
				require.NoError(t, err)

				next := rng.Start
				sum := 0
				for d := 1; d <= c.TotalDays(); d++ {
					dr, err := c.DayRange(d)
					require.NoError(t, err)
					require.Equal(t, next, dr.Start, "total=%d tf=%s day=%d", total, tf, d)
					require.GreaterOrEqual(t, dr.Target, 0)
					next = dr.End + 1
					sum += dr.Target
				}
				assert.Equal(t, rng.End+1, next, "total=%d tf=%s", total, tf)
				assert.Equal(t, rng.Size(), sum, "total=%d tf=%s", total, tf)
				assert.GreaterOrEqual(t, c.DailyTarget*c.TotalDays(), rng.Size())
			}
		}
	}
}

func TestCommitment_DayRangeRespectsTrimmedStart(t *testing.T) {
	book := Book{ID: "b1", TotalPages: 120, Preferences: ReadingPreferences{SkipFrontMatter: 10, SkipBackMatter: 10}}
	c := newTestCommitment(t, book, "10 Day")
	assert.Equal(t, 10, c.DailyTarget)

	dr, err := c.DayRange(2)
	require.NoError(t, err)
	assert.Equal(t, DayRange{Day: 2, Start: 21, End: 30, Target: 10}, dr)
}

func TestCommitment_ShortGoalLeavesEmptyTrailingDays(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 5}, "4 Days")
	assert.Equal(t, 2, c.DailyTarget)

	dr, err := c.DayRange(4)
	require.NoError(t, err)
	assert.Equal(t, 0, dr.Target)
	assert.Equal(t, 6, dr.Start)
	assert.Equal(t, 5, dr.End)
}

func TestCommitment_CurrentAndElapsedDay(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 300}, "10 Day")

	assert.Equal(t, 1, c.CurrentDay(day0))
	assert.Equal(t, 5, c.CurrentDay(day0.AddDate(0, 0, 4)))
	assert.Equal(t, 10, c.CurrentDay(day0.AddDate(0, 0, 15)))
	assert.Equal(t, 16, c.ElapsedDay(day0.AddDate(0, 0, 15)))
	assert.False(t, c.IsOverdue(day0.AddDate(0, 0, 9)))
	assert.True(t, c.IsOverdue(day0.AddDate(0, 0, 10)))
}

func TestCommitment_CanAdvanceDay(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 300}, "10 Day")

	assert.False(t, c.CanAdvanceDay(29, day0))
	assert.True(t, c.CanAdvanceDay(30, day0))

	require.NoError(t, c.AdvanceDay(30, day0))
	assert.Equal(t, Advanced(2), c.Day)
	assert.Equal(t, 2, c.CurrentDay(day0))

	// the advanced day stays pinned while the clock moves
	assert.Equal(t, 2, c.CurrentDay(day0.AddDate(0, 0, 6)))

	err := c.AdvanceDay(45, day0)
	assert.ErrorIs(t, err, ErrCannotAdvance)
	assert.Equal(t, 2, c.CurrentDay(day0))
}

func TestCommitment_NeverAdvancesPastLastDay(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 30}, "3 Days")
	c.Day = Advanced(3)

	assert.False(t, c.CanAdvanceDay(30, day0))
	assert.ErrorIs(t, c.AdvanceDay(30, day0), ErrCannotAdvance)
	assert.Equal(t, 3, c.CurrentDay(day0))
}

func TestCommitment_DayProgress(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 300}, "10 Day")
	day3 := day0.AddDate(0, 0, 2)

	assert.Equal(t, 0, c.DayProgress(40, day3))
	assert.Equal(t, 5, c.DayProgress(65, day3))
	assert.Equal(t, 30, c.DayProgress(200, day3))
}

func TestCommitment_Restart(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 300}, "10 Day")
	c.Day = Advanced(4)

	later := day0.AddDate(0, 0, 3)
	c.Restart(later)
	assert.Equal(t, later, c.StartDate)
	assert.Equal(t, later.AddDate(0, 0, 9), c.TargetEndDate)
	assert.Equal(t, 1, c.CurrentDay(later))
}

func TestCommitment_PotentialWin(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 300}, "10 Day")
	assert.True(t, decimal.NewFromInt(20).Equal(c.PotentialWin()))
}

func TestCommitment_Schedule(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", TotalPages: 100}, "4 Days")
	now := day0.AddDate(0, 0, 2)

	days := c.Schedule(30, now)
	require.Len(t, days, 4)
	assert.Equal(t, DayDone, days[0].State)
	assert.Equal(t, DayMissed, days[1].State)
	assert.Equal(t, DayToday, days[2].State)
	assert.Equal(t, DayUpcoming, days[3].State)
	assert.Equal(t, 25, days[3].Target)
}
