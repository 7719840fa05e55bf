package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"wagerd/internal/odds"
)

// Commitment is a wager to read a book's effective range within a timeframe.
// Range and DailyTarget are fixed at creation; later preference changes do
// not reshape an existing schedule.
type Commitment struct {
	ID            string          `json:"id"`
	Book          Book            `json:"book"`
	Unit          Unit            `json:"unit"`
	Timeframe     Timeframe       `json:"timeframe"`
	Odds          string          `json:"odds"`
	Wager         decimal.Decimal `json:"wager"`
	Range         Range           `json:"range"`
	DailyTarget   int             `json:"dailyTarget"`
	StartDate     time.Time       `json:"startDate"`
	TargetEndDate time.Time       `json:"targetEndDate"`
	Day           CurrentDay      `json:"currentDay"`
}

// NewCommitment resolves the book's effective range and builds the schedule.
func NewCommitment(id string, book Book, unit Unit, timeframeLabel, quotedOdds string, wager decimal.Decimal, now time.Time) (*Commitment, error) {
	rng, err := book.EffectiveRange(unit)
	if err != nil {
		return nil, err
	}
	return NewCommitmentWithRange(id, book, unit, rng, timeframeLabel, quotedOdds, wager, now)
}

// NewCommitmentWithRange is NewCommitment with a precomputed effective range.
func NewCommitmentWithRange(id string, book Book, unit Unit, rng Range, timeframeLabel, quotedOdds string, wager decimal.Decimal, now time.Time) (*Commitment, error) {
	tf, err := ParseTimeframe(timeframeLabel)
	if err != nil {
		return nil, err
	}
	line, err := odds.ParseLine(quotedOdds)
	if err != nil {
		return nil, err
	}
	if !wager.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWager, wager)
	}
	size := rng.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: book %s", ErrEmptyRange, book.ID)
	}
	if unit == "" {
		unit = UnitPages
	}

	c := &Commitment{
		ID:          id,
		Book:        book,
		Unit:        unit,
		Timeframe:   tf,
		Odds:        line.String(),
		Wager:       wager,
		Range:       rng,
		DailyTarget: (size + tf.Days - 1) / tf.Days,
	}
	c.Restart(now)
	return c, nil
}

// Restart fixes day 1 at now and drops any advanced day.
func (c *Commitment) Restart(now time.Time) {
	c.StartDate = now
	c.TargetEndDate = now.AddDate(0, 0, c.TotalDays()-1)
	c.Day = ScheduledFrom(now)
}

func (c *Commitment) Clone() *Commitment {
	cp := *c
	return &cp
}

func (c *Commitment) TotalDays() int { return c.Timeframe.Days }

func (c *Commitment) Line() odds.Line {
	l, _ := odds.ParseLine(c.Odds)
	return l
}

func (c *Commitment) PotentialWin() decimal.Decimal {
	return odds.PotentialWin(c.Wager, c.Line())
}

// CurrentDay is the advanced day if pinned, else the wall-clock day, within [1, TotalDays].
func (c *Commitment) CurrentDay(now time.Time) int {
	return c.Day.Resolve(c.TotalDays(), now)
}

// ElapsedDay is the unclamped wall-clock day index; it exceeds TotalDays once the
// timeframe has run out.
func (c *Commitment) ElapsedDay(now time.Time) int {
	return max(daysElapsed(c.StartDate, now)+1, 1)
}

func (c *Commitment) IsOverdue(now time.Time) bool {
	return c.ElapsedDay(now) > c.TotalDays()
}

// Position converts a cumulative unit count into the last unit reached.
func (c *Commitment) Position(unitsRead int) int {
	return c.Range.Start - 1 + unitsRead
}

type DayRange struct {
	Day    int `json:"day"`
	Start  int `json:"start"`
	End    int `json:"end"`
	Target int `json:"target"`
}

func (c *Commitment) DayRange(day int) (DayRange, error) {
	if day < 1 || day > c.TotalDays() {
		return DayRange{}, fmt.Errorf("%w: %d not in [1, %d]", ErrDayOutOfRange, day, c.TotalDays())
	}
	start := c.Range.Start + (day-1)*c.DailyTarget
	if start > c.Range.End {
		// short goals spread over long timeframes leave trailing days empty
		return DayRange{Day: day, Start: c.Range.End + 1, End: c.Range.End}, nil
	}
	end := min(start+c.DailyTarget-1, c.Range.End)
	return DayRange{Day: day, Start: start, End: end, Target: end - start + 1}, nil
}

// DayProgress is derived from the cumulative position, never stored.
func (c *Commitment) DayProgress(position int, now time.Time) int {
	dr, err := c.DayRange(c.CurrentDay(now))
	if err != nil {
		return 0
	}
	return min(max(position-dr.Start+1, 0), dr.Target)
}

func (c *Commitment) CanAdvanceDay(position int, now time.Time) bool {
	day := c.CurrentDay(now)
	if day >= c.TotalDays() {
		return false
	}
	dr, err := c.DayRange(day)
	if err != nil {
		return false
	}
	return position >= dr.End
}

// AdvanceDay pins the current day one past the resolved day.
func (c *Commitment) AdvanceDay(position int, now time.Time) error {
	if !c.CanAdvanceDay(position, now) {
		return fmt.Errorf("%w: commitment %s", ErrCannotAdvance, c.ID)
	}
	c.Day = Advanced(c.CurrentDay(now) + 1)
	return nil
}
