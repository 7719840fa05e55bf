package models

import "time"

// ProgressRecord is the cumulative reading progress of one active commitment.
type ProgressRecord struct {
	CommitmentID string    `json:"commitmentId"`
	UnitsRead    int       `json:"unitsRead"`
	LastPosition int       `json:"lastPosition"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func NewProgressRecord(commitmentID string, now time.Time) *ProgressRecord {
	return &ProgressRecord{CommitmentID: commitmentID, UpdatedAt: now}
}

// Apply records an inclusive session [startUnit, endUnit] clamped into rng and
// returns the units it counted. The cumulative count never exceeds rng.Size().
func (p *ProgressRecord) Apply(rng Range, startUnit, endUnit int, now time.Time) int {
	start := max(startUnit, rng.Start)
	end := min(endUnit, rng.End)
	units := max(0, end-start+1)

	p.UnitsRead = min(p.UnitsRead+units, rng.Size())
	p.LastPosition = end
	p.UpdatedAt = now
	return units
}

func (p *ProgressRecord) Clone() *ProgressRecord {
	cp := *p
	return &cp
}
