package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressRecord_InclusiveCounting(t *testing.T) {
	p := NewProgressRecord("c1", day0)
	units := p.Apply(Range{Start: 1, End: 300}, 10, 19, day0)

	assert.Equal(t, 10, units)
	assert.Equal(t, 10, p.UnitsRead)
	assert.Equal(t, 19, p.LastPosition)
}

func TestProgressRecord_Accumulates(t *testing.T) {
	p := NewProgressRecord("c1", day0)
	rng := Range{Start: 1, End: 300}
	p.Apply(rng, 1, 30, day0)
	p.Apply(rng, 31, 75, day0)

	assert.Equal(t, 75, p.UnitsRead)
	assert.Equal(t, 75, p.LastPosition)
}

func TestProgressRecord_ClampsToRange(t *testing.T) {
	p := NewProgressRecord("c1", day0)
	units := p.Apply(Range{Start: 1, End: 100}, 90, 250, day0)

	assert.Equal(t, 11, units)
	assert.Equal(t, 100, p.LastPosition)

	p = NewProgressRecord("c2", day0)
	units = p.Apply(Range{Start: 11, End: 110}, 1, 20, day0)
	assert.Equal(t, 10, units)
}

func TestProgressRecord_BackwardsSessionCountsNothing(t *testing.T) {
	p := NewProgressRecord("c1", day0)
	units := p.Apply(Range{Start: 1, End: 100}, 50, 40, day0)
	assert.Equal(t, 0, units)
	assert.Equal(t, 0, p.UnitsRead)
}

func TestProgressRecord_CapsAtRangeSize(t *testing.T) {
	p := NewProgressRecord("c1", day0)
	rng := Range{Start: 1, End: 50}
	p.Apply(rng, 1, 50, day0)
	p.Apply(rng, 1, 50, day0)
	assert.Equal(t, 50, p.UnitsRead)
}
