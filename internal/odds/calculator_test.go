package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var multipliers = []float64{0.8, 1.0, 1.4}

func TestFineGrained_KnownQuotes(t *testing.T) {
	p := NewFineGrained()

	// 300 pages in 10 days: 30/day, factor min(30/12,4)=2.5, 100+floor(2.5*1.0*40)=200
	assert.Equal(t, Line(200), p.Quote(300, 10, 1.0))
	// hard book, 280 pages in 14 days: 20/12*1.4*40=93.3
	assert.Equal(t, Line(193), p.Quote(280, 14, 1.4))
	// 30 pages in 30 days: 1/day, floor(1/8*40)=5
	assert.Equal(t, Line(105), p.Quote(30, 30, 1.0))
}

func TestFineGrained_ClampsToBounds(t *testing.T) {
	p := NewFineGrained()

	assert.Equal(t, Line(105), p.Quote(1, 90, 0.8))
	// 2000 pages in 1 day hits the cap of 10: 100+10*40=500
	assert.Equal(t, Line(500), p.Quote(2000, 1, 1.0))
	assert.Equal(t, Line(999), p.Quote(2000, 1, 3.0))
}

func TestCoarse_KnownQuotes(t *testing.T) {
	p := NewCoarse()

	// 100 pages in 1 day: min(100/20,8)=5, 100+5*50=350
	assert.Equal(t, Line(350), p.Quote(100, 1, 1.0))
	// 70 pages in 7 days: min(10/10,3)=1, 100+50=150
	assert.Equal(t, Line(150), p.Quote(70, 7, 1.0))
	// 300 pages in 30 days: min(10/5,1.5)=1.5, 100+75=175
	assert.Equal(t, Line(175), p.Quote(300, 30, 1.0))
	assert.Equal(t, Line(110), p.Quote(1, 30, 0.8))
	assert.Equal(t, Line(800), p.Quote(5000, 1, 3.0))
}

func TestPolicies_StayInsideBounds(t *testing.T) {
	for _, p := range []Policy{NewFineGrained(), NewCoarse()} {
		lo, hi := p.Bounds()
		for _, days := range []int{1, 2, 3, 5, 7, 10, 14, 21, 30, 60, 365} {
			for units := 0; units <= 3000; units += 37 {
				for _, m := range multipliers {
					q := p.Quote(units, days, m)
					assert.GreaterOrEqual(t, q, lo, "%s units=%d days=%d", p.Name(), units, days)
					assert.LessOrEqual(t, q, hi, "%s units=%d days=%d", p.Name(), units, days)
				}
			}
		}
	}
}

func TestPolicies_NonDecreasingInPagesPerDay(t *testing.T) {
	for _, p := range []Policy{NewFineGrained(), NewCoarse()} {
		for _, days := range []int{1, 3, 7, 14, 30} {
			for _, m := range multipliers {
				prev := p.Quote(0, days, m)
				for units := 1; units <= 4000; units += 11 {
					q := p.Quote(units, days, m)
					assert.GreaterOrEqual(t, q, prev, "%s units=%d days=%d", p.Name(), units, days)
					prev = q
				}
			}
		}
	}
}

func TestPolicies_NonDecreasingInDifficulty(t *testing.T) {
	for _, p := range []Policy{NewFineGrained(), NewCoarse()} {
		for _, units := range []int{50, 300, 900} {
			easy := p.Quote(units, 10, 0.8)
			medium := p.Quote(units, 10, 1.0)
			hard := p.Quote(units, 10, 1.4)
			assert.LessOrEqual(t, easy, medium)
			assert.LessOrEqual(t, medium, hard)
		}
	}
}

func TestPolicies_Deterministic(t *testing.T) {
	p := NewFineGrained()
	assert.Equal(t, p.Quote(412, 14, 1.4), p.Quote(412, 14, 1.4))
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("fine")
	require.NoError(t, err)
	assert.Equal(t, PolicyFine, p.Name())

	p, err = PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFine, p.Name())

	p, err = PolicyByName(" Coarse ")
	require.NoError(t, err)
	assert.Equal(t, PolicyCoarse, p.Name())

	_, err = PolicyByName("kelly")
	assert.Error(t, err)
}

func TestQuote_RejectsNonPositiveTimeframe(t *testing.T) {
	_, err := Quote(NewFineGrained(), 100, 0, 1.0)
	assert.ErrorIs(t, err, ErrInvalidTimeframe)

	_, err = Quote(NewFineGrained(), 100, -3, 1.0)
	assert.ErrorIs(t, err, ErrInvalidTimeframe)

	q, err := Quote(NewFineGrained(), 300, 10, 1.0)
	require.NoError(t, err)
	assert.Equal(t, "+200", q)
}

func TestWithinBounds(t *testing.T) {
	fine := NewFineGrained()
	assert.True(t, WithinBounds(fine, 105))
	assert.True(t, WithinBounds(fine, 999))
	assert.False(t, WithinBounds(fine, 104))
	assert.False(t, WithinBounds(fine, 1000))
	assert.False(t, WithinBounds(fine, -150))

	coarse := NewCoarse()
	assert.False(t, WithinBounds(coarse, 105))
	assert.True(t, WithinBounds(coarse, 800))
}
