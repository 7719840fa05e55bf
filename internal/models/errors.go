package models

import (
	"errors"

	"wagerd/internal/odds"
)

var (
	ErrInvalidTimeframe = odds.ErrInvalidTimeframe
	ErrInvalidOdds      = odds.ErrInvalidOdds
	ErrInvalidWager     = errors.New("wager must be greater than zero")
	ErrEmptyRange       = errors.New("effective range is empty")
	ErrNoChapters       = errors.New("book has no chapter count")
	ErrInvalidUnit      = errors.New("unknown tracking unit")
	ErrDayOutOfRange    = errors.New("day index out of range")
	ErrCannotAdvance    = errors.New("current day cannot be advanced")
	ErrNoGoals          = errors.New("engagement commitment needs at least one goal")
	ErrInvalidGoal      = errors.New("invalid engagement goal")
	ErrUnknownGoal      = errors.New("unknown engagement goal")
)
