package services

import "time"

// Clock is read once per operation; day boundaries come from it, not from timers.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewSystemClock() Clock {
	return systemClock{}
}

// LedgerObserver receives lifecycle events, typically for metrics.
type LedgerObserver interface {
	IncConfirmed(count int)
	IncSessions()
	IncSettled(outcome string)
}

type noopObserver struct{}

func (noopObserver) IncConfirmed(_ int)  {}
func (noopObserver) IncSessions()        {}
func (noopObserver) IncSettled(_ string) {}
