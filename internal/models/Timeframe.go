package models

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type Timeframe struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

var unitDays = map[string]int{
	"day": 1, "days": 1, "d": 1,
	"week": 7, "weeks": 7, "wk": 7, "wks": 7, "w": 7,
	"month": 30, "months": 30, "mo": 30, "mos": 30,
}

// ParseTimeframe reads labels like "1 Day", "2 Weeks" or "1 Month".
// An unrecognized unit token treats the number as raw days.
func ParseTimeframe(label string) (Timeframe, error) {
	s := strings.TrimSpace(label)
	i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if i == -1 {
		i = len(s)
	}
	if i == 0 {
		return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, label)
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n <= 0 {
		return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, label)
	}

	days := n
	fields := strings.Fields(strings.ToLower(s[i:]))
	if len(fields) > 0 {
		if mult, ok := unitDays[fields[0]]; ok {
			days = n * mult
		}
	}
	return Timeframe{Label: s, Days: days}, nil
}
