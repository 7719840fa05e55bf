package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifficulty_Multiplier(t *testing.T) {
	assert.Equal(t, 0.8, DifficultyEasy.Multiplier())
	assert.Equal(t, 1.0, DifficultyMedium.Multiplier())
	assert.Equal(t, 1.4, DifficultyHard.Multiplier())
	assert.Equal(t, 1.4, Difficulty("HARD").Multiplier())
	assert.Equal(t, 1.0, Difficulty("").Multiplier())
	assert.Equal(t, 1.0, Difficulty("brutal").Multiplier())
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("")
	require.NoError(t, err)
	assert.Equal(t, UnitPages, u)

	u, err = ParseUnit(" Chapters")
	require.NoError(t, err)
	assert.Equal(t, UnitChapters, u)

	_, err = ParseUnit("words")
	assert.ErrorIs(t, err, ErrInvalidUnit)
}

func TestBook_EffectiveRange_FullBookByDefault(t *testing.T) {
	b := Book{ID: "b1", TotalPages: 300}
	r, err := b.EffectiveRange(UnitPages)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 1, End: 300}, r)
	assert.Equal(t, 300, r.Size())
}

func TestBook_EffectiveRange_TrimsMatter(t *testing.T) {
	b := Book{ID: "b1", TotalPages: 300, Preferences: ReadingPreferences{SkipFrontMatter: 12, SkipBackMatter: 20}}
	r, err := b.EffectiveRange(UnitPages)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 13, End: 280}, r)
	assert.Equal(t, 268, r.Size())
}

func TestBook_EffectiveRange_CustomWins(t *testing.T) {
	b := Book{ID: "b1", TotalPages: 300, Preferences: ReadingPreferences{
		SkipFrontMatter: 12, CustomStart: 50, CustomEnd: 120,
	}}
	r, err := b.EffectiveRange(UnitPages)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 50, End: 120}, r)
}

func TestBook_EffectiveRange_CustomClampedToBook(t *testing.T) {
	b := Book{ID: "b1", TotalPages: 100, Preferences: ReadingPreferences{CustomStart: 90, CustomEnd: 400}}
	r, err := b.EffectiveRange(UnitPages)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 90, End: 100}, r)
}

func TestBook_EffectiveRange_NeverNegative(t *testing.T) {
	b := Book{ID: "b1", TotalPages: 10, Preferences: ReadingPreferences{SkipFrontMatter: 8, SkipBackMatter: 8}}
	r, err := b.EffectiveRange(UnitPages)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Size())

	empty := Book{ID: "b2"}
	r, err = empty.EffectiveRange(UnitPages)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Size())
}

func TestBook_EffectiveRange_Chapters(t *testing.T) {
	b := Book{ID: "b1", TotalPages: 300, TotalChapters: 24}
	r, err := b.EffectiveRange(UnitChapters)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 1, End: 24}, r)

	_, err = Book{ID: "b2", TotalPages: 300}.EffectiveRange(UnitChapters)
	assert.ErrorIs(t, err, ErrNoChapters)

	_, err = b.EffectiveRange(Unit("lines"))
	assert.ErrorIs(t, err, ErrInvalidUnit)
}
