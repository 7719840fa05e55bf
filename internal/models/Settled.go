package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Outcome string

const (
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomeOverdue Outcome = "overdue"
)

type Kind string

const (
	KindReading    Kind = "reading"
	KindEngagement Kind = "engagement"
)

// SettledCommitment is the terminal record of a commitment. Exactly one of
// Commitment and Engagement is set, matching Kind.
type SettledCommitment struct {
	Kind       Kind                  `json:"kind"`
	Commitment *Commitment           `json:"commitment,omitempty"`
	Engagement *EngagementCommitment `json:"engagement,omitempty"`
	SettledAt  time.Time             `json:"settledAt"`
	UnitsRead  int                   `json:"unitsRead"`
	Success    bool                  `json:"success"`
	Outcome    Outcome               `json:"outcome"`
	Payout     decimal.Decimal       `json:"payout"`
}

func (s *SettledCommitment) ID() string {
	if s.Engagement != nil {
		return s.Engagement.ID
	}
	if s.Commitment != nil {
		return s.Commitment.ID
	}
	return ""
}

// SettleReading builds the terminal record; a win pays stake plus winnings.
func SettleReading(c *Commitment, unitsRead int, outcome Outcome, now time.Time) *SettledCommitment {
	s := &SettledCommitment{
		Kind:       KindReading,
		Commitment: c,
		SettledAt:  now,
		UnitsRead:  unitsRead,
		Success:    outcome == OutcomeWon,
		Outcome:    outcome,
		Payout:     decimal.Zero,
	}
	if s.Success {
		s.Payout = c.Wager.Add(c.PotentialWin())
	}
	return s
}

func SettleEngagement(e *EngagementCommitment, outcome Outcome, now time.Time) *SettledCommitment {
	units := 0
	for _, g := range e.Goals {
		units += g.Current
	}
	s := &SettledCommitment{
		Kind:       KindEngagement,
		Engagement: e,
		SettledAt:  now,
		UnitsRead:  units,
		Success:    outcome == OutcomeWon,
		Outcome:    outcome,
		Payout:     decimal.Zero,
	}
	if s.Success {
		s.Payout = e.Wager.Add(e.PotentialWin())
	}
	return s
}
