package services

import (
	"github.com/shopspring/decimal"

	"wagerd/internal/models"
	"wagerd/internal/odds"
)

// Slip stages draft commitments before confirmation. Each kind keeps at most
// one draft per book; adding another replaces it in place.
// Slip is not safe for concurrent use; the owning Ledger serializes access.
type Slip struct {
	commitments []*models.Commitment
	engagements []*models.EngagementCommitment
}

type SlipSummary struct {
	Commitments        []*models.Commitment           `json:"commitments"`
	Engagements        []*models.EngagementCommitment `json:"engagements"`
	TotalWager         decimal.Decimal                `json:"totalWager"`
	TotalPotentialWin  decimal.Decimal                `json:"totalPotentialWin"`
	IsParlay           bool                           `json:"isParlay"`
	CombinedOdds       string                         `json:"combinedOdds,omitempty"`
	ParlayPotentialWin decimal.Decimal                `json:"parlayPotentialWin"`
}

func NewSlip() *Slip {
	return &Slip{}
}

// AddCommitment reports whether an existing draft for the same book was replaced.
func (s *Slip) AddCommitment(c *models.Commitment) bool {
	for i, existing := range s.commitments {
		if existing.Book.ID == c.Book.ID {
			s.commitments[i] = c
			return true
		}
	}
	s.commitments = append(s.commitments, c)
	return false
}

func (s *Slip) AddEngagement(e *models.EngagementCommitment) bool {
	for i, existing := range s.engagements {
		if existing.Book.ID == e.Book.ID {
			s.engagements[i] = e
			return true
		}
	}
	s.engagements = append(s.engagements, e)
	return false
}

func (s *Slip) Remove(kind models.Kind, bookID string) bool {
	switch kind {
	case models.KindReading:
		for i, c := range s.commitments {
			if c.Book.ID == bookID {
				s.commitments = append(s.commitments[:i], s.commitments[i+1:]...)
				return true
			}
		}
	case models.KindEngagement:
		for i, e := range s.engagements {
			if e.Book.ID == bookID {
				s.engagements = append(s.engagements[:i], s.engagements[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (s *Slip) Contains(id string) bool {
	for _, c := range s.commitments {
		if c.ID == id {
			return true
		}
	}
	for _, e := range s.engagements {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (s *Slip) Len() int { return len(s.commitments) + len(s.engagements) }

func (s *Slip) IsEmpty() bool { return s.Len() == 0 }

func (s *Slip) IsParlay() bool { return s.Len() > 1 }

func (s *Slip) Clear() {
	s.commitments = nil
	s.engagements = nil
}

func (s *Slip) TotalWager() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.commitments {
		total = total.Add(c.Wager)
	}
	for _, e := range s.engagements {
		total = total.Add(e.Wager)
	}
	return total
}

func (s *Slip) TotalPotentialWin() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.commitments {
		total = total.Add(c.PotentialWin())
	}
	for _, e := range s.engagements {
		total = total.Add(e.PotentialWin())
	}
	return total
}

func (s *Slip) legs() []odds.Line {
	legs := make([]odds.Line, 0, s.Len())
	for _, c := range s.commitments {
		legs = append(legs, c.Line())
	}
	for _, e := range s.engagements {
		legs = append(legs, e.Line())
	}
	return legs
}

// CombinedOdds is the parlay quote; a single draft returns its own odds.
func (s *Slip) CombinedOdds() (string, error) {
	switch {
	case s.IsEmpty():
		return "", ErrEmptySlip
	case len(s.commitments) == 1 && len(s.engagements) == 0:
		return s.commitments[0].Odds, nil
	case len(s.engagements) == 1 && len(s.commitments) == 0:
		return s.engagements[0].Odds, nil
	}
	combined, err := odds.Combine(s.legs()...)
	if err != nil {
		return "", err
	}
	return combined.String(), nil
}

func (s *Slip) ParlayPotentialWin() (decimal.Decimal, error) {
	combined, err := odds.Combine(s.legs()...)
	if err != nil {
		return decimal.Zero, ErrEmptySlip
	}
	return odds.PotentialWin(s.TotalWager(), combined), nil
}

func (s *Slip) Summary() SlipSummary {
	summary := SlipSummary{
		Commitments:        make([]*models.Commitment, 0, len(s.commitments)),
		Engagements:        make([]*models.EngagementCommitment, 0, len(s.engagements)),
		TotalWager:         s.TotalWager(),
		TotalPotentialWin:  s.TotalPotentialWin(),
		IsParlay:           s.IsParlay(),
		ParlayPotentialWin: decimal.Zero,
	}
	for _, c := range s.commitments {
		summary.Commitments = append(summary.Commitments, c.Clone())
	}
	for _, e := range s.engagements {
		summary.Engagements = append(summary.Engagements, e.Clone())
	}
	if summary.IsParlay {
		summary.CombinedOdds, _ = s.CombinedOdds()
		summary.ParlayPotentialWin, _ = s.ParlayPotentialWin()
	}
	return summary
}

func (s *Slip) Data() models.SlipData {
	sum := s.Summary()
	return models.SlipData{Commitments: sum.Commitments, Engagements: sum.Engagements}
}

func (s *Slip) Load(data models.SlipData) {
	s.Clear()
	for _, c := range data.Commitments {
		if c != nil {
			s.AddCommitment(c)
		}
	}
	for _, e := range data.Engagements {
		if e != nil {
			s.AddEngagement(e)
		}
	}
}
