package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/baccarat-tracker/internal/analyzer"
	"github.com/yourusername/baccarat-tracker/internal/backtest"
	"github.com/yourusername/baccarat-tracker/internal/ledger"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// MockSnapshotStore mocks the snapshot store
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Load(ctx context.Context) (models.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Snapshot), args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, snap models.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func add(t *testing.T, svc *TrackerService, winners ...models.Winner) {
	t.Helper()
	for _, w := range winners {
		_, err := svc.AddOutcome(context.Background(), ledger.AppendRequest{Winner: w})
		require.NoError(t, err)
	}
}

func TestLoadRestoresSnapshot(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Load", mock.Anything).Return(models.Snapshot{
		Results: []models.OutcomeRecord{
			{ID: "a", Winner: models.WinnerPlayer, Timestamp: 1, ShoeNumber: 2, DealerNumber: 3},
		},
		CurrentShoe:   2,
		CurrentDealer: 3,
	}, nil)

	svc := NewTrackerService(store, nil)
	require.NoError(t, svc.Load(context.Background()))

	shoe, dealer := svc.Counters()
	assert.Equal(t, 2, shoe)
	assert.Equal(t, 3, dealer)
	assert.Len(t, svc.Records(), 1)
	assert.False(t, svc.Dirty())
	store.AssertExpectations(t)
}

func TestLoadPropagatesStoreError(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Load", mock.Anything).Return(models.Snapshot{}, models.ErrMalformedSnapshot)

	svc := NewTrackerService(store, nil)
	err := svc.Load(context.Background())
	assert.ErrorIs(t, err, models.ErrMalformedSnapshot)
}

func TestWriteThroughSavesEveryMutation(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.AnythingOfType("models.Snapshot")).Return(nil)

	svc := NewTrackerService(store, nil)
	ctx := context.Background()

	rec, err := svc.AddOutcome(ctx, ledger.AppendRequest{Winner: models.WinnerBanker})
	require.NoError(t, err)
	_, err = svc.NewShoe(ctx)
	require.NoError(t, err)
	_, err = svc.ChangeDealer(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteOutcome(ctx, rec.ID))
	require.NoError(t, svc.Clear(ctx))

	store.AssertNumberOfCalls(t, "Save", 5)
	assert.False(t, svc.Dirty())
}

func TestSavedSnapshotReflectsMutation(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.MatchedBy(func(snap models.Snapshot) bool {
		return len(snap.Results) == 1 && snap.Results[0].Winner == models.WinnerTie
	})).Return(nil).Once()

	svc := NewTrackerService(store, nil)
	add(t, svc, models.WinnerTie)
	store.AssertExpectations(t)
}

func TestSaveFailureKeepsLedgerDirty(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	svc := NewTrackerService(store, nil)
	rec, err := svc.AddOutcome(context.Background(), ledger.AppendRequest{Winner: models.WinnerPlayer})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSnapshotNotSaved)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, models.WinnerPlayer, rec.Winner)
	assert.True(t, svc.Dirty())
	assert.Len(t, svc.Records(), 1, "the hand is kept in memory")

	require.NoError(t, svc.Flush(context.Background()))
	assert.False(t, svc.Dirty())
}

func TestEveryMutationReportsSaveFailure(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only file system"))

	svc := NewTrackerService(store, nil)
	ctx := context.Background()

	rec, err := svc.AddOutcome(ctx, ledger.AppendRequest{Winner: models.WinnerBanker})
	assert.ErrorIs(t, err, models.ErrSnapshotNotSaved)

	shoe, err := svc.NewShoe(ctx)
	assert.ErrorIs(t, err, models.ErrSnapshotNotSaved)
	assert.Equal(t, 2, shoe)

	dealer, err := svc.ChangeDealer(ctx)
	assert.ErrorIs(t, err, models.ErrSnapshotNotSaved)
	assert.Equal(t, 2, dealer)

	assert.ErrorIs(t, svc.DeleteOutcome(ctx, rec.ID), models.ErrSnapshotNotSaved)
	assert.ErrorIs(t, svc.Import(ctx, strings.NewReader(`{"results": []}`), "test"), models.ErrSnapshotNotSaved)
	assert.ErrorIs(t, svc.Clear(ctx), models.ErrSnapshotNotSaved)

	assert.ErrorIs(t, svc.Flush(ctx), models.ErrSnapshotNotSaved)
	assert.True(t, svc.Dirty())
	store.AssertNumberOfCalls(t, "Save", 7)
}

func TestDeferredSavesUntilFlush(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	svc := NewTrackerService(store, nil, WithWriteThrough(false))
	add(t, svc, models.WinnerPlayer, models.WinnerBanker)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.True(t, svc.Dirty())

	require.NoError(t, svc.Flush(context.Background()))
	require.NoError(t, svc.Flush(context.Background()))
	store.AssertNumberOfCalls(t, "Save", 1)
}

func TestFlushReportsSaveError(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only filesystem"))

	svc := NewTrackerService(store, nil, WithWriteThrough(false))
	add(t, svc, models.WinnerPlayer)

	err := svc.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only filesystem")
	assert.True(t, svc.Dirty())
}

func TestAddOutcomeRejectsInvalidInput(t *testing.T) {
	store := new(MockSnapshotStore)
	svc := NewTrackerService(store, nil)

	_, err := svc.AddOutcome(context.Background(), ledger.AppendRequest{Winner: "dragon"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDeleteMissingOutcome(t *testing.T) {
	store := new(MockSnapshotStore)
	svc := NewTrackerService(store, nil)

	err := svc.DeleteOutcome(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestImportAndExport(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	svc := NewTrackerService(store, nil)

	err := svc.Import(context.Background(), strings.NewReader(`{"results": [], "currentShoe": 3, "currentDealer": 2}`), "test")
	require.NoError(t, err)

	rec, err := svc.AddOutcome(context.Background(), ledger.AppendRequest{Winner: models.WinnerBanker})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.ShoeNumber)
	assert.Equal(t, 2, rec.DealerNumber)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(&buf))
	assert.Contains(t, buf.String(), `"currentShoe": 3`)

	err = svc.Import(context.Background(), strings.NewReader(`[1, 2`), "test")
	assert.ErrorIs(t, err, models.ErrMalformedSnapshot)
	assert.Len(t, svc.Records(), 1)
}

func TestAnalysisViewsAreConsistent(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	svc := NewTrackerService(store, nil)
	add(t, svc, models.WinnerBanker, models.WinnerBanker, models.WinnerBanker,
		models.WinnerBanker, models.WinnerBanker, models.WinnerBanker)

	analysis := svc.Analysis()
	assert.Equal(t, analysis.Statistics, svc.Statistics())
	assert.Equal(t, analysis.Patterns, svc.Patterns())
	assert.Equal(t, analysis.Forecast, svc.Forecast())
	assert.Equal(t, analysis.Roads, svc.Roads())
	assert.Equal(t, analyzer.RuleLongStreakReversal, analysis.Forecast.Rule)
}

func TestSubscribeReceivesLatestUpdate(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	svc := NewTrackerService(store, nil)

	updates, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	add(t, svc, models.WinnerPlayer)
	_, err := svc.NewShoe(context.Background())
	require.NoError(t, err)

	select {
	case u := <-updates:
		assert.Equal(t, EventShoeChanged, u.Event)
		assert.Equal(t, 1, u.Size)
		assert.Equal(t, 2, u.CurrentShoe)
		assert.Equal(t, 1, u.Analysis.Statistics.Total)
	case <-time.After(time.Second):
		t.Fatal("expected an update")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	svc := NewTrackerService(new(MockSnapshotStore), nil)

	updates, unsubscribe := svc.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-updates
	assert.False(t, ok)
}

func TestBacktestReplaysLedger(t *testing.T) {
	store := new(MockSnapshotStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	svc := NewTrackerService(store, nil)
	add(t, svc, models.WinnerBanker, models.WinnerBanker, models.WinnerBanker,
		models.WinnerBanker, models.WinnerBanker, models.WinnerBanker, models.WinnerPlayer)

	result, err := svc.Backtest(context.Background(), backtest.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 7, result.Hands)
	assert.Equal(t, 2, result.Wins)
	assert.Equal(t, "1.95", result.NetUnits.StringFixed(2))

	cached, err := svc.Backtest(context.Background(), backtest.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, result, cached)

	add(t, svc, models.WinnerPlayer)
	result, err = svc.Backtest(context.Background(), backtest.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 8, result.Hands, "a new hand invalidates the cached replay")
}

func TestBacktestRejectsInvalidConfig(t *testing.T) {
	svc := NewTrackerService(new(MockSnapshotStore), nil)
	cfg := backtest.DefaultConfig()
	cfg.MinConfidence = decimal.NewFromInt(-1)

	_, err := svc.Backtest(context.Background(), cfg)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
