package models

import (
	"fmt"
	"math"
	"time"

	json "github.com/goccy/go-json"
)

type DayMode string

const (
	DayScheduled DayMode = "scheduled"
	DayAdvanced  DayMode = "advanced"
)

// CurrentDay is either derived from the wall clock (Scheduled) or pinned
// by an explicit advance (Advanced). An advanced day stays pinned until it
// is advanced again.
type CurrentDay struct {
	mode  DayMode
	start time.Time
	index int
}

func ScheduledFrom(start time.Time) CurrentDay {
	return CurrentDay{mode: DayScheduled, start: start}
}

func Advanced(index int) CurrentDay {
	return CurrentDay{mode: DayAdvanced, index: index}
}

func (d CurrentDay) Mode() DayMode { return d.mode }

func (d CurrentDay) IsAdvanced() bool { return d.mode == DayAdvanced }

// Resolve returns the 1-based day index clamped to [1, totalDays].
func (d CurrentDay) Resolve(totalDays int, now time.Time) int {
	var day int
	if d.IsAdvanced() {
		day = d.index
	} else {
		day = daysElapsed(d.start, now) + 1
	}
	return min(max(day, 1), totalDays)
}

// daysElapsed counts calendar-day boundaries crossed in start's location.
func daysElapsed(start, now time.Time) int {
	loc := start.Location()
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	n := now.In(loc)
	n = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	return int(math.Round(n.Sub(s).Hours() / 24))
}

type currentDayJSON struct {
	Mode  DayMode    `json:"mode"`
	Start *time.Time `json:"start,omitempty"`
	Index int        `json:"index,omitempty"`
}

func (d CurrentDay) MarshalJSON() ([]byte, error) {
	out := currentDayJSON{Mode: d.Mode()}
	switch out.Mode {
	case DayAdvanced:
		out.Index = d.index
	default:
		out.Mode = DayScheduled
		start := d.start
		out.Start = &start
	}
	return json.Marshal(out)
}

func (d *CurrentDay) UnmarshalJSON(data []byte) error {
	var in currentDayJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Mode {
	case DayAdvanced:
		if in.Index < 1 {
			return fmt.Errorf("advanced day index %d", in.Index)
		}
		*d = Advanced(in.Index)
	case DayScheduled, "":
		var start time.Time
		if in.Start != nil {
			start = *in.Start
		}
		*d = ScheduledFrom(start)
	default:
		return fmt.Errorf("unknown day mode %q", in.Mode)
	}
	return nil
}
