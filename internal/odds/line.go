package odds

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOdds      = errors.New("invalid odds")
	ErrInvalidTimeframe = errors.New("timeframe must be at least one day")
	ErrNoLegs           = errors.New("no legs to combine")
)

var hundred = decimal.NewFromInt(100)

// Line is an American odds value: 180 is quoted as "+180".
type Line int

func (l Line) String() string {
	if l < 0 {
		return strconv.Itoa(int(l))
	}
	return "+" + strconv.Itoa(int(l))
}

// Decimal returns the decimal payout multiplier including the stake.
func (l Line) Decimal() float64 {
	if l < 0 {
		return 1 + 100/math.Abs(float64(l))
	}
	return 1 + float64(l)/100
}

// ParseLine accepts "+180", "180" and "-150". Negative lines must be -100 or
// below; anything between -100 and 0 would pay more than even money.
func ParseLine(s string) (Line, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidOdds)
	}
	v, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOdds, s)
	}
	if v < 0 && v > -100 {
		return 0, fmt.Errorf("%w: %q is between -100 and 0", ErrInvalidOdds, s)
	}
	return Line(v), nil
}

// PotentialWin is the profit on a winning wager, stake excluded.
func PotentialWin(wager decimal.Decimal, l Line) decimal.Decimal {
	if l < 0 {
		return wager.Mul(hundred).Div(decimal.NewFromInt(int64(-l)))
	}
	return wager.Mul(decimal.NewFromInt(int64(l))).Div(hundred)
}

// Combine multiplies the decimal multipliers of every leg into a single parlay line.
// A single leg is returned unchanged.
func Combine(legs ...Line) (Line, error) {
	switch len(legs) {
	case 0:
		return 0, ErrNoLegs
	case 1:
		return legs[0], nil
	}
	product := 1.0
	for _, leg := range legs {
		product *= leg.Decimal()
	}
	return Line(math.Round((product - 1) * 100)), nil
}
