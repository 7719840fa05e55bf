package models

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_JSONKeepsCommitmentState(t *testing.T) {
	c := newTestCommitment(t, Book{ID: "b1", Title: "Dune", TotalPages: 300, Difficulty: DifficultyHard}, "10 Day")
	c.Day = Advanced(2)

	settled := SettleReading(newTestCommitment(t, Book{ID: "b2", TotalPages: 50}, "1 Week"), 50, OutcomeWon, day0)

	storage := Storage{
		Version: StorageVersion,
		Readers: map[string]*ReaderData{
			"default": {
				Active:   []*Commitment{c},
				Progress: map[string]*ProgressRecord{c.ID: {CommitmentID: c.ID, UnitsRead: 42, LastPosition: 42}},
				Settled:  []*SettledCommitment{settled},
			},
		},
	}

	data, err := json.Marshal(storage)
	require.NoError(t, err)

	var back Storage
	require.NoError(t, json.Unmarshal(data, &back))
	require.Contains(t, back.Readers, "default")

	rd := back.Readers["default"]
	require.Len(t, rd.Active, 1)
	got := rd.Active[0]
	assert.Equal(t, Advanced(2), got.Day)
	assert.Equal(t, 30, got.DailyTarget)
	assert.Equal(t, DifficultyHard, got.Book.Difficulty)
	assert.True(t, decimal.NewFromInt(10).Equal(got.Wager))
	assert.Equal(t, 42, rd.Progress[c.ID].UnitsRead)

	require.Len(t, rd.Settled, 1)
	assert.Equal(t, OutcomeWon, rd.Settled[0].Outcome)
	assert.True(t, decimal.NewFromInt(30).Equal(rd.Settled[0].Payout))
}
