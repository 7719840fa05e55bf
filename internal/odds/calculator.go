package odds

import (
	"fmt"
	"math"
	"strings"
)

const (
	PolicyFine   = "fine"
	PolicyCoarse = "coarse"
)

// Policy turns a goal size and timeframe into a quoted line.
// Callers must reject timeframeDays <= 0 before calling Quote.
type Policy interface {
	Name() string
	Quote(effectiveUnits, timeframeDays int, difficultyMultiplier float64) Line
	// Bounds is the inclusive range every quote is clamped into.
	Bounds() (Line, Line)
}

type bucket struct {
	maxDays int // inclusive upper bound, 0 = unbounded
	divisor float64
	cap     float64
}

type bucketPolicy struct {
	name    string
	buckets []bucket
	k       float64
	min     Line
	max     Line
}

func (p *bucketPolicy) Name() string { return p.name }

func (p *bucketPolicy) Quote(effectiveUnits, timeframeDays int, difficultyMultiplier float64) Line {
	unitsPerDay := float64(effectiveUnits) / float64(timeframeDays)
	b := p.bucketFor(timeframeDays)
	factor := math.Min(unitsPerDay/b.divisor, b.cap)

	raw := Line(100 + int(math.Floor(factor*difficultyMultiplier*p.k)))
	return min(max(raw, p.min), p.max)
}

func (p *bucketPolicy) bucketFor(days int) bucket {
	for _, b := range p.buckets {
		if b.maxDays == 0 || days <= b.maxDays {
			return b
		}
	}
	return p.buckets[len(p.buckets)-1]
}

func (p *bucketPolicy) Bounds() (Line, Line) { return p.min, p.max }

// NewFineGrained is the four-bucket policy keyed by day count.
func NewFineGrained() Policy {
	return &bucketPolicy{
		name: PolicyFine,
		buckets: []bucket{
			{maxDays: 3, divisor: 15, cap: 10},
			{maxDays: 7, divisor: 20, cap: 8},
			{maxDays: 21, divisor: 12, cap: 4},
			{maxDays: 0, divisor: 8, cap: 2},
		},
		k:   40,
		min: 105,
		max: 999,
	}
}

// NewCoarse is the legacy day/week/month policy.
func NewCoarse() Policy {
	return &bucketPolicy{
		name: PolicyCoarse,
		buckets: []bucket{
			{maxDays: 1, divisor: 20, cap: 8},
			{maxDays: 7, divisor: 10, cap: 3},
			{maxDays: 0, divisor: 5, cap: 1.5},
		},
		k:   50,
		min: 110,
		max: 800,
	}
}

func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyFine:
		return NewFineGrained(), nil
	case PolicyCoarse:
		return NewCoarse(), nil
	}
	return nil, fmt.Errorf("unknown odds policy %q", name)
}

// Quote checks the timeframe precondition and formats the policy's line.
func Quote(p Policy, effectiveUnits, timeframeDays int, difficultyMultiplier float64) (string, error) {
	if timeframeDays <= 0 {
		return "", ErrInvalidTimeframe
	}
	return p.Quote(effectiveUnits, timeframeDays, difficultyMultiplier).String(), nil
}

// WithinBounds reports whether l could have been quoted by p.
func WithinBounds(p Policy, l Line) bool {
	lo, hi := p.Bounds()
	return l >= lo && l <= hi
}
