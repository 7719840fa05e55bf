package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wagerd/internal/models"
	"wagerd/internal/odds"
	"wagerd/internal/structures"
)

const DefaultReader = "default"

type QuoteResult struct {
	Odds        string       `json:"odds"`
	Policy      string       `json:"policy"`
	Range       models.Range `json:"range"`
	Units       int          `json:"units"`
	Days        int          `json:"days"`
	DailyTarget int          `json:"dailyTarget"`
}

type DraftRequest struct {
	Book      models.Book     `json:"book"`
	Unit      models.Unit     `json:"unit"`
	Timeframe string          `json:"timeframe"`
	Wager     decimal.Decimal `json:"wager"`
	Odds      string          `json:"odds,omitempty"`
}

type EngagementRequest struct {
	Book  models.Book     `json:"book"`
	Goals []models.Goal   `json:"goals"`
	Odds  string          `json:"odds"`
	Wager decimal.Decimal `json:"wager"`
}

type TrackerServiceInterface interface {
	Quote(book models.Book, unit models.Unit, timeframe string) (QuoteResult, error)
	DraftCommitment(reader string, req DraftRequest) (*models.Commitment, error)
	DraftEngagement(reader string, req EngagementRequest) (*models.EngagementCommitment, error)
	RemoveDraft(reader string, kind models.Kind, bookID string) bool
	GetSlip(reader string) SlipSummary
	Confirm(reader string) (Receipt, error)
	RecordSession(reader, id string, startUnit, endUnit int) (SessionResult, error)
	RecordEngagement(reader, id string, goal models.GoalType, delta int) (EngagementResult, error)
	AdvanceDay(reader, id string) (ActiveView, error)
	Forfeit(reader, id string) (*models.SettledCommitment, error)
	GetStatus(reader, id string) (models.Status, error)
	GetActive(reader string) []ActiveView
	GetEngagements(reader string) []EngagementView
	GetSchedule(reader, id string) ([]models.ScheduledDay, error)
	GetSettled(reader string) []*models.SettledCommitment
	InvalidateBook(bookID string)
	GetReaders() []string
	GetActiveCount() int
	GetSnapshot() *models.Storage
	PutReaderData(reader string, data *models.ReaderData)
}

// TrackerService keeps one Ledger per reader and the shared per-book cache.
type TrackerService struct {
	mu         sync.RWMutex
	ledgers    map[string]*Ledger
	maxReaders int
	policy     odds.Policy
	emptySlip  EmptySlipPolicy
	cache      *BookCache
	clock      Clock
	observer   LedgerObserver
	newID      func() string
}

func NewTrackerService(conf *structures.Config, store RangeStore, clock Clock, observer LedgerObserver) (TrackerServiceInterface, error) {
	policy, err := odds.PolicyByName(conf.Tracker.OddsPolicy)
	if err != nil {
		return nil, err
	}
	emptySlip, err := ParseEmptySlipPolicy(conf.Tracker.EmptySlipPolicy)
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = NewSystemClock()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	maxReaders := conf.Tracker.MaxReaders
	if maxReaders == 0 {
		maxReaders = 10000
	}
	return &TrackerService{
		ledgers:    make(map[string]*Ledger),
		maxReaders: maxReaders,
		policy:     policy,
		emptySlip:  emptySlip,
		cache:      NewBookCache(store),
		clock:      clock,
		observer:   observer,
		newID:      uuid.NewString,
	}, nil
}

func normalizeReader(reader string) string {
	if reader == "" {
		return DefaultReader
	}
	return reader
}

func (ts *TrackerService) ledger(reader string) (*Ledger, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	l, ok := ts.ledgers[normalizeReader(reader)]
	return l, ok
}

func (ts *TrackerService) getOrCreateLedger(reader string) (*Ledger, error) {
	reader = normalizeReader(reader)

	// Fast path: reader already exists (read lock only)
	if l, ok := ts.ledger(reader); ok {
		return l, nil
	}

	// Slow path: write lock with double-check
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if l, ok := ts.ledgers[reader]; ok {
		return l, nil
	}
	if ts.maxReaders > 0 && len(ts.ledgers) >= ts.maxReaders {
		return nil, fmt.Errorf("%w: %d", ErrTooManyReaders, ts.maxReaders)
	}
	l := NewLedger(ts.emptySlip, ts.observer)
	ts.ledgers[reader] = l
	return l, nil
}

func (ts *TrackerService) Quote(book models.Book, unit models.Unit, timeframe string) (QuoteResult, error) {
	tf, err := models.ParseTimeframe(timeframe)
	if err != nil {
		return QuoteResult{}, err
	}
	rng, err := ts.cache.EffectiveRange(book, unit)
	if err != nil {
		return QuoteResult{}, err
	}
	size := rng.Size()
	if size == 0 {
		return QuoteResult{}, fmt.Errorf("%w: book %s", models.ErrEmptyRange, book.ID)
	}
	quote, err := odds.Quote(ts.policy, size, tf.Days, book.Difficulty.Multiplier())
	if err != nil {
		return QuoteResult{}, err
	}
	return QuoteResult{
		Odds:        quote,
		Policy:      ts.policy.Name(),
		Range:       rng,
		Units:       size,
		Days:        tf.Days,
		DailyTarget: (size + tf.Days - 1) / tf.Days,
	}, nil
}

// DraftCommitment quotes the book and stages the draft. Odds sent with the
// request must equal the quote.
func (ts *TrackerService) DraftCommitment(reader string, req DraftRequest) (*models.Commitment, error) {
	unit := req.Unit
	if unit == "" {
		unit = models.UnitPages
	}
	q, err := ts.Quote(req.Book, unit, req.Timeframe)
	if err != nil {
		return nil, err
	}
	if req.Odds != "" {
		line, err := odds.ParseLine(req.Odds)
		if err != nil {
			return nil, err
		}
		if line.String() != q.Odds {
			return nil, fmt.Errorf("%w: %s does not match quote %s", models.ErrInvalidOdds, line, q.Odds)
		}
	}
	c, err := models.NewCommitmentWithRange(ts.newID(), req.Book, unit, q.Range, req.Timeframe, q.Odds, req.Wager, ts.clock.Now())
	if err != nil {
		return nil, err
	}
	l, err := ts.getOrCreateLedger(reader)
	if err != nil {
		return nil, err
	}
	l.DraftCommitment(c)
	return c.Clone(), nil
}

// DraftEngagement stages an engagement bet. Its odds are client supplied and
// must lie inside the active policy's bounds.
func (ts *TrackerService) DraftEngagement(reader string, req EngagementRequest) (*models.EngagementCommitment, error) {
	line, err := odds.ParseLine(req.Odds)
	if err != nil {
		return nil, err
	}
	if !odds.WithinBounds(ts.policy, line) {
		lo, hi := ts.policy.Bounds()
		return nil, fmt.Errorf("%w: %s outside %s..%s", models.ErrInvalidOdds, line, lo, hi)
	}
	e, err := models.NewEngagementCommitment(ts.newID(), req.Book, req.Goals, req.Odds, req.Wager, ts.clock.Now())
	if err != nil {
		return nil, err
	}
	l, err := ts.getOrCreateLedger(reader)
	if err != nil {
		return nil, err
	}
	l.DraftEngagement(e)
	return e.Clone(), nil
}

func (ts *TrackerService) RemoveDraft(reader string, kind models.Kind, bookID string) bool {
	l, ok := ts.ledger(reader)
	if !ok {
		return false
	}
	return l.RemoveDraft(kind, bookID)
}

func (ts *TrackerService) GetSlip(reader string) SlipSummary {
	l, ok := ts.ledger(reader)
	if !ok {
		return NewSlip().Summary()
	}
	return l.Slip()
}

// Confirm places the reader's slip. A reader without a ledger has an empty
// slip, so no ledger is created for them.
func (ts *TrackerService) Confirm(reader string) (Receipt, error) {
	l, ok := ts.ledger(reader)
	if !ok {
		if ts.emptySlip == EmptySlipIgnore {
			return Receipt{Confirmed: []string{}, TotalWager: decimal.Zero}, nil
		}
		return Receipt{}, ErrEmptySlip
	}
	return l.Confirm(ts.clock.Now())
}

func (ts *TrackerService) RecordSession(reader, id string, startUnit, endUnit int) (SessionResult, error) {
	l, ok := ts.ledger(reader)
	if !ok {
		return SessionResult{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.RecordSession(id, startUnit, endUnit, ts.clock.Now())
}

func (ts *TrackerService) RecordEngagement(reader, id string, goal models.GoalType, delta int) (EngagementResult, error) {
	l, ok := ts.ledger(reader)
	if !ok {
		return EngagementResult{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.RecordEngagement(id, goal, delta, ts.clock.Now())
}

func (ts *TrackerService) AdvanceDay(reader, id string) (ActiveView, error) {
	l, ok := ts.ledger(reader)
	if !ok {
		return ActiveView{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.AdvanceDay(id, ts.clock.Now())
}

func (ts *TrackerService) Forfeit(reader, id string) (*models.SettledCommitment, error) {
	l, ok := ts.ledger(reader)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.Forfeit(id, ts.clock.Now())
}

func (ts *TrackerService) GetStatus(reader, id string) (models.Status, error) {
	l, ok := ts.ledger(reader)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.Status(id, ts.clock.Now())
}

func (ts *TrackerService) GetActive(reader string) []ActiveView {
	l, ok := ts.ledger(reader)
	if !ok {
		return []ActiveView{}
	}
	return l.Active(ts.clock.Now())
}

func (ts *TrackerService) GetEngagements(reader string) []EngagementView {
	l, ok := ts.ledger(reader)
	if !ok {
		return []EngagementView{}
	}
	return l.Engagements()
}

func (ts *TrackerService) GetSchedule(reader, id string) ([]models.ScheduledDay, error) {
	l, ok := ts.ledger(reader)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.Schedule(id, ts.clock.Now())
}

func (ts *TrackerService) GetSettled(reader string) []*models.SettledCommitment {
	l, ok := ts.ledger(reader)
	if !ok {
		return []*models.SettledCommitment{}
	}
	return l.Settled()
}

func (ts *TrackerService) InvalidateBook(bookID string) {
	ts.cache.Invalidate(bookID)
}

func (ts *TrackerService) GetReaders() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	readers := make([]string, 0, len(ts.ledgers))
	for r := range ts.ledgers {
		readers = append(readers, r)
	}
	sort.Strings(readers)
	return readers
}

func (ts *TrackerService) GetActiveCount() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	total := 0
	for _, l := range ts.ledgers {
		total += l.ActiveCount()
	}
	return total
}

func (ts *TrackerService) GetSnapshot() *models.Storage {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	storage := &models.Storage{
		Version: models.StorageVersion,
		Readers: make(map[string]*models.ReaderData, len(ts.ledgers)),
	}
	for reader, l := range ts.ledgers {
		storage.Readers[reader] = l.Snapshot()
	}
	return storage
}

// PutReaderData replaces a reader's ledger with restored data.
func (ts *TrackerService) PutReaderData(reader string, data *models.ReaderData) {
	reader = normalizeReader(reader)
	ts.mu.Lock()
	defer ts.mu.Unlock()
	l, ok := ts.ledgers[reader]
	if !ok {
		l = NewLedger(ts.emptySlip, ts.observer)
		ts.ledgers[reader] = l
	}
	l.Restore(data)
}
