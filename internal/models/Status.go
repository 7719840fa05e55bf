package models

import "time"

type Status string

const (
	StatusOnTrack   Status = "onTrack"
	StatusAhead     Status = "ahead"
	StatusBehind    Status = "behind"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// ClassifyStatus compares a cumulative position against the schedule.
// It reads nothing but its arguments.
func ClassifyStatus(c *Commitment, position int, now time.Time) Status {
	if position >= c.Range.End {
		return StatusCompleted
	}
	if c.IsOverdue(now) {
		return StatusOverdue
	}
	expected := c.Range.Start - 1 + c.CurrentDay(now)*c.DailyTarget
	switch {
	case position >= expected+c.DailyTarget:
		return StatusAhead
	case position < expected-c.DailyTarget:
		return StatusBehind
	default:
		return StatusOnTrack
	}
}
