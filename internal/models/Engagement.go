package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wagerd/internal/odds"
)

type GoalType string

const (
	GoalSessions   GoalType = "sessions"
	GoalNotes      GoalType = "notes"
	GoalHighlights GoalType = "highlights"
	GoalMinutes    GoalType = "minutes"
)

type Goal struct {
	Type    GoalType `json:"type"`
	Target  int      `json:"target"`
	Current int      `json:"current"`
}

func (g Goal) Complete() bool { return g.Current >= g.Target }

func (g Goal) Ratio() float64 {
	if g.Target <= 0 {
		return 1
	}
	return min(float64(g.Current)/float64(g.Target), 1)
}

// EngagementCommitment is a wager on activity goals for a book rather than on
// finishing it.
type EngagementCommitment struct {
	ID        string          `json:"id"`
	Book      Book            `json:"book"`
	Goals     []Goal          `json:"goals"`
	Odds      string          `json:"odds"`
	Wager     decimal.Decimal `json:"wager"`
	StartDate time.Time       `json:"startDate"`
}

func NewEngagementCommitment(id string, book Book, goals []Goal, quotedOdds string, wager decimal.Decimal, now time.Time) (*EngagementCommitment, error) {
	if len(goals) == 0 {
		return nil, ErrNoGoals
	}
	seen := make(map[GoalType]struct{}, len(goals))
	normalized := make([]Goal, 0, len(goals))
	for _, g := range goals {
		g.Type = GoalType(strings.ToLower(strings.TrimSpace(string(g.Type))))
		if g.Type == "" || g.Target <= 0 || g.Current < 0 {
			return nil, fmt.Errorf("%w: %+v", ErrInvalidGoal, g)
		}
		if _, dup := seen[g.Type]; dup {
			return nil, fmt.Errorf("%w: duplicate %s", ErrInvalidGoal, g.Type)
		}
		seen[g.Type] = struct{}{}
		normalized = append(normalized, g)
	}
	line, err := odds.ParseLine(quotedOdds)
	if err != nil {
		return nil, err
	}
	if !wager.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWager, wager)
	}
	return &EngagementCommitment{
		ID:        id,
		Book:      book,
		Goals:     normalized,
		Odds:      line.String(),
		Wager:     wager,
		StartDate: now,
	}, nil
}

func (e *EngagementCommitment) Clone() *EngagementCommitment {
	cp := *e
	cp.Goals = append([]Goal(nil), e.Goals...)
	return &cp
}

func (e *EngagementCommitment) Complete() bool {
	for _, g := range e.Goals {
		if !g.Complete() {
			return false
		}
	}
	return len(e.Goals) > 0
}

// Progress is the mean goal completion as a percentage.
func (e *EngagementCommitment) Progress() float64 {
	if len(e.Goals) == 0 {
		return 0
	}
	var sum float64
	for _, g := range e.Goals {
		sum += g.Ratio()
	}
	return sum / float64(len(e.Goals)) * 100
}

// RecordGoal adds delta to the goal's count; counts never drop below zero.
func (e *EngagementCommitment) RecordGoal(goal GoalType, delta int) error {
	goal = GoalType(strings.ToLower(strings.TrimSpace(string(goal))))
	for i := range e.Goals {
		if e.Goals[i].Type == goal {
			e.Goals[i].Current = max(e.Goals[i].Current+delta, 0)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownGoal, goal)
}

func (e *EngagementCommitment) Line() odds.Line {
	l, _ := odds.ParseLine(e.Odds)
	return l
}

func (e *EngagementCommitment) PotentialWin() decimal.Decimal {
	return odds.PotentialWin(e.Wager, e.Line())
}
