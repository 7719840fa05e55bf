package models

import "time"

type DayState string

const (
	DayDone     DayState = "done"
	DayMissed   DayState = "missed"
	DayToday    DayState = "today"
	DayUpcoming DayState = "upcoming"
)

type ScheduledDay struct {
	DayRange
	State DayState `json:"state"`
}

// Schedule lists every day of the commitment with its state relative to now.
func (c *Commitment) Schedule(position int, now time.Time) []ScheduledDay {
	current := c.CurrentDay(now)
	days := make([]ScheduledDay, 0, c.TotalDays())
	for day := 1; day <= c.TotalDays(); day++ {
		dr, err := c.DayRange(day)
		if err != nil {
			break
		}
		sd := ScheduledDay{DayRange: dr}
		switch {
		case position >= dr.End:
			sd.State = DayDone
		case day < current:
			sd.State = DayMissed
		case day == current:
			sd.State = DayToday
		default:
			sd.State = DayUpcoming
		}
		days = append(days, sd)
	}
	return days
}
