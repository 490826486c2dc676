// Package service coordinates the ledger session with persistence, metrics
// and live subscribers.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/baccarat-tracker/internal/analyzer"
	"github.com/yourusername/baccarat-tracker/internal/backtest"
	"github.com/yourusername/baccarat-tracker/internal/ledger"
	"github.com/yourusername/baccarat-tracker/internal/logger"
	"github.com/yourusername/baccarat-tracker/internal/metrics"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// SnapshotStore persists the ledger between runs
type SnapshotStore interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Save(ctx context.Context, snap models.Snapshot) error
}

// Event names published to subscribers
const (
	EventOutcomeRecorded = "outcome_recorded"
	EventOutcomeDeleted  = "outcome_deleted"
	EventLedgerCleared   = "ledger_cleared"
	EventShoeChanged     = "shoe_changed"
	EventDealerChanged   = "dealer_changed"
	EventSnapshotLoaded  = "snapshot_loaded"
)

// Update is pushed to subscribers after every ledger mutation
type Update struct {
	Event         string            `json:"event"`
	Size          int               `json:"size"`
	CurrentShoe   int               `json:"currentShoe"`
	CurrentDealer int               `json:"currentDealer"`
	Analysis      analyzer.Analysis `json:"analysis"`
}

// TrackerService is the concurrency-safe owner of one ledger session
type TrackerService struct {
	mu           sync.RWMutex
	session      *ledger.Session
	store        SnapshotStore
	writeThrough bool
	dirty        bool
	revision     uint64
	backtests    *backtest.ResultCache

	subsMu      sync.Mutex
	subscribers map[int]chan Update
	nextSubID   int

	logger      *logrus.Logger
	audit       *logger.AuditLogger
	forecastLog *logger.ForecastLogger
}

// Option configures a TrackerService
type Option func(*trackerOptions)

type trackerOptions struct {
	writeThrough   bool
	sessionOptions []ledger.Option
	cacheTTL       time.Duration
	cacheSize      int
}

// WithWriteThrough controls whether every mutation is saved immediately.
// When disabled, mutations only mark the ledger dirty until Flush is called.
func WithWriteThrough(enabled bool) Option {
	return func(o *trackerOptions) { o.writeThrough = enabled }
}

// WithSessionOptions passes options to the underlying ledger session.
func WithSessionOptions(opts ...ledger.Option) Option {
	return func(o *trackerOptions) { o.sessionOptions = append(o.sessionOptions, opts...) }
}

// WithBacktestCache sizes the cache of replay results.
func WithBacktestCache(ttl time.Duration, maxEntries int) Option {
	return func(o *trackerOptions) {
		o.cacheTTL = ttl
		o.cacheSize = maxEntries
	}
}

// NewTrackerService creates a tracker backed by store
func NewTrackerService(store SnapshotStore, log *logrus.Logger, opts ...Option) *TrackerService {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	o := trackerOptions{writeThrough: true, cacheTTL: 10 * time.Minute, cacheSize: 32}
	for _, opt := range opts {
		opt(&o)
	}

	metrics.InitRegistry()

	return &TrackerService{
		session:      ledger.NewSession(log, o.sessionOptions...),
		store:        store,
		writeThrough: o.writeThrough,
		backtests:    backtest.NewResultCache(o.cacheTTL, o.cacheSize),
		subscribers:  make(map[int]chan Update),
		logger:       log,
		audit:        logger.NewAuditLogger(log),
		forecastLog:  logger.NewForecastLogger(log),
	}
}

// Load restores the ledger from the store.
func (s *TrackerService) Load(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		metrics.RecordSnapshotImport(false)
		s.audit.LogSnapshotRejected("store", err)
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	s.mu.Lock()
	if err := s.session.Restore(snap); err != nil {
		s.mu.Unlock()
		metrics.RecordSnapshotImport(false)
		s.audit.LogSnapshotRejected("store", err)
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	s.dirty = false
	s.revision++
	s.mu.Unlock()

	metrics.RecordSnapshotImport(true)
	s.audit.LogSnapshotImported("store", len(snap.Results), snap.CurrentShoe, snap.CurrentDealer)
	s.publish(EventSnapshotLoaded)
	return nil
}

// AddOutcome records a new hand. If the write-through save fails the hand is
// kept in memory and the returned error wraps ErrSnapshotNotSaved.
func (s *TrackerService) AddOutcome(ctx context.Context, req ledger.AppendRequest) (models.OutcomeRecord, error) {
	s.mu.Lock()
	rec, err := s.session.Append(req)
	if err != nil {
		s.mu.Unlock()
		return models.OutcomeRecord{}, err
	}
	saveErr := s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordOutcome(string(rec.Winner))
	if rec.IsCorrectPrediction != nil {
		metrics.RecordPredictionScored(*rec.IsCorrectPrediction)
	}
	s.audit.LogOutcomeRecorded(rec)
	s.forecastLog.LogPredictionScored(rec)
	s.publish(EventOutcomeRecorded)
	return rec, saveErr
}

// DeleteOutcome removes the hand with the given id.
func (s *TrackerService) DeleteOutcome(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.session.Delete(id); err != nil {
		s.mu.Unlock()
		return err
	}
	remaining := s.session.Len()
	saveErr := s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordOutcomeDeleted()
	s.audit.LogOutcomeDeleted(id, remaining)
	s.publish(EventOutcomeDeleted)
	return saveErr
}

// Clear empties the ledger and resets the shoe and dealer counters.
func (s *TrackerService) Clear(ctx context.Context) error {
	s.mu.Lock()
	discarded := s.session.Len()
	s.session.Clear()
	saveErr := s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordLedgerCleared()
	s.audit.LogLedgerCleared(discarded)
	s.publish(EventLedgerCleared)
	return saveErr
}

// NewShoe starts the next shoe and returns its number.
func (s *TrackerService) NewShoe(ctx context.Context) (int, error) {
	s.mu.Lock()
	shoe := s.session.NewShoe()
	saveErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.audit.LogCounterChange("shoe", shoe-1, shoe)
	s.publish(EventShoeChanged)
	return shoe, saveErr
}

// ChangeDealer moves to the next dealer and returns its number.
func (s *TrackerService) ChangeDealer(ctx context.Context) (int, error) {
	s.mu.Lock()
	dealer := s.session.ChangeDealer()
	saveErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.audit.LogCounterChange("dealer", dealer-1, dealer)
	s.publish(EventDealerChanged)
	return dealer, saveErr
}

// Import replaces the ledger with a snapshot read from r. A rejected
// document leaves the ledger unchanged.
func (s *TrackerService) Import(ctx context.Context, r io.Reader, source string) error {
	s.mu.Lock()
	if err := s.session.Import(r); err != nil {
		s.mu.Unlock()
		metrics.RecordSnapshotImport(false)
		s.audit.LogSnapshotRejected(source, err)
		return err
	}
	size, shoe, dealer := s.session.Len(), s.session.CurrentShoe(), s.session.CurrentDealer()
	saveErr := s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordSnapshotImport(true)
	s.audit.LogSnapshotImported(source, size, shoe, dealer)
	s.publish(EventSnapshotLoaded)
	return saveErr
}

// Export writes the ledger as a JSON snapshot.
func (s *TrackerService) Export(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Export(w)
}

// Snapshot returns the persisted form of the ledger.
func (s *TrackerService) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Snapshot()
}

// Records returns a copy of the ledger, oldest first.
func (s *TrackerService) Records() []models.OutcomeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Records()
}

// Counters returns the current shoe and dealer numbers.
func (s *TrackerService) Counters() (shoe, dealer int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.CurrentShoe(), s.session.CurrentDealer()
}

// Analysis derives every view from one consistent ledger state.
func (s *TrackerService) Analysis() analyzer.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyzeLocked()
}

// Statistics returns aggregate metrics for the ledger.
func (s *TrackerService) Statistics() analyzer.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Statistics()
}

// Patterns returns the patterns detected in the ledger.
func (s *TrackerService) Patterns() []models.Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Patterns()
}

// Forecast returns the prediction for the next hand.
func (s *TrackerService) Forecast() models.Forecast {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Forecast()
}

// Roads returns the road diagrams for the ledger.
func (s *TrackerService) Roads() analyzer.Roads {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Roads()
}

// Backtest replays the current ledger through the forecaster. Results are
// cached until the ledger next changes.
func (s *TrackerService) Backtest(ctx context.Context, cfg backtest.BacktestConfig) (backtest.Metrics, error) {
	engine, err := backtest.NewEngine(cfg, s.logger)
	if err != nil {
		return backtest.Metrics{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	s.mu.RLock()
	key := backtest.CacheKey{Revision: s.revision, Config: cfg}
	records := s.session.Records()
	s.mu.RUnlock()

	if cached, ok := s.backtests.Get(key); ok {
		return cached, nil
	}
	_, result, err := engine.Run(ctx, records)
	if err != nil {
		return backtest.Metrics{}, fmt.Errorf("backtest failed: %w", err)
	}
	metrics.RecordBacktestRun()
	s.backtests.Set(key, result)
	return result, nil
}

// Dirty reports whether the ledger has changes not yet saved.
func (s *TrackerService) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush saves the ledger if it has unsaved changes.
func (s *TrackerService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.saveLocked(ctx)
}

// Subscribe registers for updates. Slow subscribers only see the latest
// update. The returned function unsubscribes and closes the channel.
func (s *TrackerService) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 1)

	s.subsMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subscribers, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

// persistLocked marks the ledger changed and, in write-through mode, saves
// it. A failed save leaves the change in memory and the ledger dirty.
func (s *TrackerService) persistLocked(ctx context.Context) error {
	s.dirty = true
	s.revision++
	s.backtests.Invalidate()
	if !s.writeThrough {
		return nil
	}
	if err := s.saveLocked(ctx); err != nil {
		s.logger.WithError(err).Warn("Snapshot save failed, ledger kept in memory")
		return err
	}
	return nil
}

func (s *TrackerService) saveLocked(ctx context.Context) error {
	if err := s.store.Save(ctx, s.session.Snapshot()); err != nil {
		metrics.RecordSnapshotSave(false)
		return fmt.Errorf("%w: %w", models.ErrSnapshotNotSaved, err)
	}
	metrics.RecordSnapshotSave(true)
	s.dirty = false
	return nil
}

func (s *TrackerService) analyzeLocked() analyzer.Analysis {
	start := time.Now()
	analysis := s.session.Analyze()
	elapsed := time.Since(start)

	metrics.RecordAnalysis(elapsed.Seconds())
	metrics.UpdatePredictionAccuracy(analysis.Statistics.PredictionAccuracy.InexactFloat64())
	return analysis
}

func (s *TrackerService) publish(event string) {
	s.mu.RLock()
	start := time.Now()
	analysis := s.analyzeLocked()
	update := Update{
		Event:         event,
		Size:          s.session.Len(),
		CurrentShoe:   s.session.CurrentShoe(),
		CurrentDealer: s.session.CurrentDealer(),
		Analysis:      analysis,
	}
	s.mu.RUnlock()

	metrics.UpdateLedgerState(update.Size, update.CurrentShoe, update.CurrentDealer)
	metrics.RecordForecast(analysis.Forecast.Rule, analysis.Forecast.Confidence.InexactFloat64())
	s.forecastLog.LogForecast(analysis.Forecast, update.Size, float64(time.Since(start).Microseconds())/1000)

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- update
	}
}
