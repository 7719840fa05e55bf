package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"wagerd/internal/models"
)

type EmptySlipPolicy string

const (
	EmptySlipReject EmptySlipPolicy = "reject"
	EmptySlipIgnore EmptySlipPolicy = "ignore"
)

func ParseEmptySlipPolicy(s string) (EmptySlipPolicy, error) {
	switch EmptySlipPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", EmptySlipReject:
		return EmptySlipReject, nil
	case EmptySlipIgnore:
		return EmptySlipIgnore, nil
	}
	return "", fmt.Errorf("unknown empty slip policy %q", s)
}

type Receipt struct {
	Confirmed    []string        `json:"confirmed"`
	TotalWager   decimal.Decimal `json:"totalWager"`
	IsParlay     bool            `json:"isParlay"`
	CombinedOdds string          `json:"combinedOdds,omitempty"`
}

type ActiveView struct {
	Commitment  *models.Commitment     `json:"commitment"`
	Progress    *models.ProgressRecord `json:"progress"`
	Position    int                    `json:"position"`
	Status      models.Status          `json:"status"`
	CurrentDay  int                    `json:"currentDay"`
	Today       models.DayRange        `json:"today"`
	DayProgress int                    `json:"dayProgress"`
	CanAdvance  bool                   `json:"canAdvance"`
}

type EngagementView struct {
	Engagement *models.EngagementCommitment `json:"engagement"`
	Progress   float64                      `json:"progress"`
	Complete   bool                         `json:"complete"`
}

type SessionResult struct {
	UnitsRead int                       `json:"unitsRead"`
	View      *ActiveView               `json:"view,omitempty"`
	Settled   *models.SettledCommitment `json:"settled,omitempty"`
}

type EngagementResult struct {
	View    *EngagementView           `json:"view,omitempty"`
	Settled *models.SettledCommitment `json:"settled,omitempty"`
}

// Ledger owns one reader's slip, active commitments and settled history.
// Every exported method is a single critical section.
type Ledger struct {
	mu          sync.Mutex
	slip        *Slip
	active      map[string]*models.Commitment
	progress    map[string]*models.ProgressRecord
	engagements map[string]*models.EngagementCommitment
	settled     []*models.SettledCommitment
	settledIDs  map[string]struct{}
	emptySlip   EmptySlipPolicy
	observer    LedgerObserver
}

func NewLedger(emptySlip EmptySlipPolicy, observer LedgerObserver) *Ledger {
	if observer == nil {
		observer = noopObserver{}
	}
	if emptySlip == "" {
		emptySlip = EmptySlipReject
	}
	return &Ledger{
		slip:        NewSlip(),
		active:      make(map[string]*models.Commitment),
		progress:    make(map[string]*models.ProgressRecord),
		engagements: make(map[string]*models.EngagementCommitment),
		settledIDs:  make(map[string]struct{}),
		emptySlip:   emptySlip,
		observer:    observer,
	}
}

func (l *Ledger) DraftCommitment(c *models.Commitment) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slip.AddCommitment(c)
}

func (l *Ledger) DraftEngagement(e *models.EngagementCommitment) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slip.AddEngagement(e)
}

func (l *Ledger) RemoveDraft(kind models.Kind, bookID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slip.Remove(kind, bookID)
}

func (l *Ledger) Slip() SlipSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slip.Summary()
}

// Confirm moves every draft into the active set with fresh progress and
// start dates, then clears the slip. Nothing moves if any draft conflicts.
func (l *Ledger) Confirm(now time.Time) (Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.slip.IsEmpty() {
		if l.emptySlip == EmptySlipIgnore {
			return Receipt{Confirmed: []string{}, TotalWager: decimal.Zero}, nil
		}
		return Receipt{}, ErrEmptySlip
	}

	receipt := Receipt{
		Confirmed:  make([]string, 0, l.slip.Len()),
		TotalWager: l.slip.TotalWager(),
		IsParlay:   l.slip.IsParlay(),
	}
	if receipt.IsParlay {
		combined, err := l.slip.CombinedOdds()
		if err != nil {
			return Receipt{}, err
		}
		receipt.CombinedOdds = combined
	}

	commitments := make([]*models.Commitment, 0, len(l.slip.commitments))
	for _, draft := range l.slip.commitments {
		if err := l.checkFreeLocked(draft.ID); err != nil {
			return Receipt{}, err
		}
		c := draft.Clone()
		c.Restart(now)
		commitments = append(commitments, c)
	}
	engagements := make([]*models.EngagementCommitment, 0, len(l.slip.engagements))
	for _, draft := range l.slip.engagements {
		if err := l.checkFreeLocked(draft.ID); err != nil {
			return Receipt{}, err
		}
		e := draft.Clone()
		e.StartDate = now
		for i := range e.Goals {
			e.Goals[i].Current = 0
		}
		engagements = append(engagements, e)
	}

	for _, c := range commitments {
		l.active[c.ID] = c
		l.progress[c.ID] = models.NewProgressRecord(c.ID, now)
		receipt.Confirmed = append(receipt.Confirmed, c.ID)
	}
	for _, e := range engagements {
		l.engagements[e.ID] = e
		receipt.Confirmed = append(receipt.Confirmed, e.ID)
	}
	l.slip.Clear()
	l.observer.IncConfirmed(len(receipt.Confirmed))
	return receipt, nil
}

func (l *Ledger) checkFreeLocked(id string) error {
	if _, ok := l.active[id]; ok {
		return fmt.Errorf("%w: %s already active", ErrStateMismatch, id)
	}
	if _, ok := l.engagements[id]; ok {
		return fmt.Errorf("%w: %s already active", ErrStateMismatch, id)
	}
	if _, ok := l.settledIDs[id]; ok {
		return fmt.Errorf("%w: %s already settled", ErrStateMismatch, id)
	}
	return nil
}

// inactiveErrLocked explains why id is not an active commitment of the wanted kind.
func (l *Ledger) inactiveErrLocked(id string) error {
	switch {
	case l.slip.Contains(id):
		return fmt.Errorf("%w: %s is a draft", ErrStateMismatch, id)
	case l.isSettledLocked(id):
		return fmt.Errorf("%w: %s is settled", ErrStateMismatch, id)
	}
	if _, ok := l.active[id]; ok {
		return fmt.Errorf("%w: %s is a reading commitment", ErrStateMismatch, id)
	}
	if _, ok := l.engagements[id]; ok {
		return fmt.Errorf("%w: %s is an engagement commitment", ErrStateMismatch, id)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (l *Ledger) isSettledLocked(id string) bool {
	_, ok := l.settledIDs[id]
	return ok
}

// RecordSession counts the inclusive unit span [startUnit, endUnit] against an
// active commitment and settles it if the book is finished.
func (l *Ledger) RecordSession(id string, startUnit, endUnit int, now time.Time) (SessionResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.active[id]
	if !ok {
		return SessionResult{}, l.inactiveErrLocked(id)
	}
	rec := l.progress[id]
	if rec == nil {
		rec = models.NewProgressRecord(id, now)
		l.progress[id] = rec
	}
	units := rec.Apply(c.Range, startUnit, endUnit, now)
	l.observer.IncSessions()

	result := SessionResult{UnitsRead: units}
	for _, s := range l.checkCompletionLocked(now) {
		if s.ID() == id {
			result.Settled = s
		}
	}
	if result.Settled == nil {
		view := l.viewLocked(c, now)
		result.View = &view
	}
	return result, nil
}

func (l *Ledger) RecordEngagement(id string, goal models.GoalType, delta int, now time.Time) (EngagementResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.engagements[id]
	if !ok {
		return EngagementResult{}, l.inactiveErrLocked(id)
	}
	if err := e.RecordGoal(goal, delta); err != nil {
		return EngagementResult{}, err
	}

	result := EngagementResult{}
	for _, s := range l.checkCompletionLocked(now) {
		if s.ID() == id {
			result.Settled = s
		}
	}
	if result.Settled == nil {
		view := engagementView(e)
		result.View = &view
	}
	return result, nil
}

// CheckCompletion settles every finished commitment as won.
func (l *Ledger) CheckCompletion(now time.Time) []*models.SettledCommitment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.checkCompletionLocked(now)
}

func (l *Ledger) checkCompletionLocked(now time.Time) []*models.SettledCommitment {
	var settled []*models.SettledCommitment
	for _, id := range l.sortedActiveIDsLocked() {
		c := l.active[id]
		units := 0
		if rec := l.progress[id]; rec != nil {
			units = rec.UnitsRead
		}
		if units < c.Range.Size() {
			continue
		}
		settled = append(settled, l.settleReadingLocked(c, units, models.OutcomeWon, now))
	}
	for _, id := range l.sortedEngagementIDsLocked() {
		e := l.engagements[id]
		if !e.Complete() {
			continue
		}
		settled = append(settled, l.settleEngagementLocked(e, models.OutcomeWon, now))
	}
	return settled
}

func (l *Ledger) settleReadingLocked(c *models.Commitment, units int, outcome models.Outcome, now time.Time) *models.SettledCommitment {
	s := models.SettleReading(c, units, outcome, now)
	delete(l.active, c.ID)
	delete(l.progress, c.ID)
	l.appendSettledLocked(s)
	return s
}

func (l *Ledger) settleEngagementLocked(e *models.EngagementCommitment, outcome models.Outcome, now time.Time) *models.SettledCommitment {
	s := models.SettleEngagement(e, outcome, now)
	delete(l.engagements, e.ID)
	l.appendSettledLocked(s)
	return s
}

func (l *Ledger) appendSettledLocked(s *models.SettledCommitment) {
	l.settled = append(l.settled, s)
	l.settledIDs[s.ID()] = struct{}{}
	l.observer.IncSettled(string(s.Outcome))
}

// Forfeit is the caller's explicit decision to give up a commitment. Overdue
// reading commitments settle as overdue, everything else as lost.
func (l *Ledger) Forfeit(id string, now time.Time) (*models.SettledCommitment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.active[id]; ok {
		units := 0
		if rec := l.progress[id]; rec != nil {
			units = rec.UnitsRead
		}
		outcome := models.OutcomeLost
		if c.IsOverdue(now) {
			outcome = models.OutcomeOverdue
		}
		return l.settleReadingLocked(c, units, outcome, now), nil
	}
	if e, ok := l.engagements[id]; ok {
		return l.settleEngagementLocked(e, models.OutcomeLost, now), nil
	}
	return nil, l.inactiveErrLocked(id)
}

func (l *Ledger) AdvanceDay(id string, now time.Time) (ActiveView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.active[id]
	if !ok {
		return ActiveView{}, l.inactiveErrLocked(id)
	}
	if err := c.AdvanceDay(l.positionLocked(c), now); err != nil {
		return ActiveView{}, err
	}
	return l.viewLocked(c, now), nil
}

func (l *Ledger) Status(id string, now time.Time) (models.Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.active[id]
	if !ok {
		return "", l.inactiveErrLocked(id)
	}
	return models.ClassifyStatus(c, l.positionLocked(c), now), nil
}

func (l *Ledger) Schedule(id string, now time.Time) ([]models.ScheduledDay, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.active[id]
	if !ok {
		return nil, l.inactiveErrLocked(id)
	}
	return c.Schedule(l.positionLocked(c), now), nil
}

func (l *Ledger) View(id string, now time.Time) (ActiveView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.active[id]
	if !ok {
		return ActiveView{}, l.inactiveErrLocked(id)
	}
	return l.viewLocked(c, now), nil
}

func (l *Ledger) Active(now time.Time) []ActiveView {
	l.mu.Lock()
	defer l.mu.Unlock()

	views := make([]ActiveView, 0, len(l.active))
	for _, id := range l.sortedActiveIDsLocked() {
		views = append(views, l.viewLocked(l.active[id], now))
	}
	return views
}

func (l *Ledger) Engagements() []EngagementView {
	l.mu.Lock()
	defer l.mu.Unlock()

	views := make([]EngagementView, 0, len(l.engagements))
	for _, id := range l.sortedEngagementIDsLocked() {
		views = append(views, engagementView(l.engagements[id]))
	}
	return views
}

func (l *Ledger) Settled() []*models.SettledCommitment {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*models.SettledCommitment, len(l.settled))
	copy(out, l.settled)
	return out
}

func (l *Ledger) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active) + len(l.engagements)
}

func (l *Ledger) positionLocked(c *models.Commitment) int {
	units := 0
	if rec := l.progress[c.ID]; rec != nil {
		units = rec.UnitsRead
	}
	return c.Position(units)
}

func (l *Ledger) viewLocked(c *models.Commitment, now time.Time) ActiveView {
	rec := l.progress[c.ID]
	if rec == nil {
		rec = models.NewProgressRecord(c.ID, c.StartDate)
	}
	position := c.Position(rec.UnitsRead)
	day := c.CurrentDay(now)
	today, _ := c.DayRange(day)
	return ActiveView{
		Commitment:  c.Clone(),
		Progress:    rec.Clone(),
		Position:    position,
		Status:      models.ClassifyStatus(c, position, now),
		CurrentDay:  day,
		Today:       today,
		DayProgress: c.DayProgress(position, now),
		CanAdvance:  c.CanAdvanceDay(position, now),
	}
}

func engagementView(e *models.EngagementCommitment) EngagementView {
	return EngagementView{
		Engagement: e.Clone(),
		Progress:   e.Progress(),
		Complete:   e.Complete(),
	}
}

func (l *Ledger) sortedActiveIDsLocked() []string {
	ids := make([]string, 0, len(l.active))
	for id := range l.active {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := l.active[ids[i]], l.active[ids[j]]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID < b.ID
	})
	return ids
}

func (l *Ledger) sortedEngagementIDsLocked() []string {
	ids := make([]string, 0, len(l.engagements))
	for id := range l.engagements {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := l.engagements[ids[i]], l.engagements[ids[j]]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.ID < b.ID
	})
	return ids
}

// Snapshot returns a deep copy suitable for persistence.
func (l *Ledger) Snapshot() *models.ReaderData {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := &models.ReaderData{
		Slip:        l.slip.Data(),
		Active:      make([]*models.Commitment, 0, len(l.active)),
		Progress:    make(map[string]*models.ProgressRecord, len(l.progress)),
		Engagements: make([]*models.EngagementCommitment, 0, len(l.engagements)),
		Settled:     make([]*models.SettledCommitment, len(l.settled)),
	}
	for _, id := range l.sortedActiveIDsLocked() {
		data.Active = append(data.Active, l.active[id].Clone())
	}
	for id, rec := range l.progress {
		data.Progress[id] = rec.Clone()
	}
	for _, id := range l.sortedEngagementIDsLocked() {
		data.Engagements = append(data.Engagements, l.engagements[id].Clone())
	}
	copy(data.Settled, l.settled)
	return data
}

// Restore replaces the ledger's state. Active entries whose IDs are already
// settled are dropped so a commitment never lives in two collections.
func (l *Ledger) Restore(data *models.ReaderData) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.slip = NewSlip()
	l.active = make(map[string]*models.Commitment)
	l.progress = make(map[string]*models.ProgressRecord)
	l.engagements = make(map[string]*models.EngagementCommitment)
	l.settled = nil
	l.settledIDs = make(map[string]struct{})
	if data == nil {
		return
	}

	for _, s := range data.Settled {
		if s == nil || s.ID() == "" {
			continue
		}
		l.settled = append(l.settled, s)
		l.settledIDs[s.ID()] = struct{}{}
	}
	for _, c := range data.Active {
		if c == nil || l.isSettledLocked(c.ID) {
			continue
		}
		l.active[c.ID] = c
		if rec, ok := data.Progress[c.ID]; ok && rec != nil {
			l.progress[c.ID] = rec
		} else {
			l.progress[c.ID] = models.NewProgressRecord(c.ID, c.StartDate)
		}
	}
	for _, e := range data.Engagements {
		if e == nil || l.isSettledLocked(e.ID) {
			continue
		}
		l.engagements[e.ID] = e
	}

	var slip models.SlipData
	for _, c := range data.Slip.Commitments {
		if c != nil && l.checkFreeLocked(c.ID) == nil {
			slip.Commitments = append(slip.Commitments, c)
		}
	}
	for _, e := range data.Slip.Engagements {
		if e != nil && l.checkFreeLocked(e.ID) == nil {
			slip.Engagements = append(slip.Engagements, e)
		}
	}
	l.slip.Load(slip)
}
