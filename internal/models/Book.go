package models

import (
	"fmt"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Multiplier falls back to medium for unknown tags.
func (d Difficulty) Multiplier() float64 {
	switch Difficulty(strings.ToLower(string(d))) {
	case DifficultyEasy:
		return 0.8
	case DifficultyHard:
		return 1.4
	default:
		return 1.0
	}
}

type Unit string

const (
	UnitPages    Unit = "pages"
	UnitChapters Unit = "chapters"
)

func ParseUnit(s string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnitPages:
		return UnitPages, nil
	case UnitChapters:
		return UnitChapters, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

// ReadingPreferences trims front and back matter, or pins a custom range.
// A custom range wins when CustomStart > 0 and CustomEnd >= CustomStart.
type ReadingPreferences struct {
	SkipFrontMatter int `json:"skipFrontMatter,omitempty"`
	SkipBackMatter  int `json:"skipBackMatter,omitempty"`
	CustomStart     int `json:"customStart,omitempty"`
	CustomEnd       int `json:"customEnd,omitempty"`
}

func (p ReadingPreferences) hasCustom() bool {
	return p.CustomStart > 0 && p.CustomEnd >= p.CustomStart
}

// Range is an inclusive span of pages or chapters.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Size() int {
	return max(0, r.End-r.Start+1)
}

type Book struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Author        string             `json:"author,omitempty"`
	TotalPages    int                `json:"totalPages"`
	TotalChapters int                `json:"totalChapters,omitempty"`
	Difficulty    Difficulty         `json:"difficulty,omitempty"`
	Preferences   ReadingPreferences `json:"preferences"`
}

func (b Book) Total(unit Unit) (int, error) {
	switch unit {
	case UnitPages, "":
		return b.TotalPages, nil
	case UnitChapters:
		if b.TotalChapters <= 0 {
			return 0, fmt.Errorf("%w: %s", ErrNoChapters, b.ID)
		}
		return b.TotalChapters, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
}

// EffectiveRange applies the reading preferences to the book's total.
// The range may be empty but its size is never negative.
func (b Book) EffectiveRange(unit Unit) (Range, error) {
	total, err := b.Total(unit)
	if err != nil {
		return Range{}, err
	}
	p := b.Preferences
	if p.hasCustom() {
		start := min(max(p.CustomStart, 1), total)
		end := min(p.CustomEnd, total)
		if total == 0 {
			return Range{Start: 1, End: 0}, nil
		}
		return Range{Start: start, End: end}, nil
	}
	start := 1 + max(p.SkipFrontMatter, 0)
	end := total - max(p.SkipBackMatter, 0)
	if end < start {
		return Range{Start: start, End: start - 1}, nil
	}
	return Range{Start: start, End: end}, nil
}
