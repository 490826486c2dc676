package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlusher struct {
	mu      sync.Mutex
	dirty   bool
	flushes int
	err     error
}

func (f *fakeFlusher) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	if f.err != nil {
		return f.err
	}
	f.dirty = false
	return nil
}

func (f *fakeFlusher) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

func (f *fakeFlusher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(&fakeFlusher{}, quietLogger())
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestScheduleAutosaveRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&fakeFlusher{}, quietLogger())
	_, err := s.ScheduleAutosave("not a schedule")
	assert.Error(t, err)
}

func TestScheduleWhileRunning(t *testing.T) {
	s := NewScheduler(&fakeFlusher{}, quietLogger())
	_, err := s.ScheduleAutosave("@every 1h")
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	_, err = s.ScheduleAutosave("@every 1m")
	assert.Error(t, err)
	assert.Error(t, s.Start(), "double start")
	assert.True(t, s.GetNextRun().After(time.Now()))
}

func TestAutosaveFlushesOnlyWhenDirty(t *testing.T) {
	f := &fakeFlusher{}
	s := NewScheduler(f, quietLogger())

	s.autosave()
	assert.Equal(t, 0, f.count())

	f.dirty = true
	s.autosave()
	assert.Equal(t, 1, f.count())
	assert.False(t, f.Dirty())
}

func TestAutosaveLogsFailure(t *testing.T) {
	f := &fakeFlusher{dirty: true, err: errors.New("disk full")}
	s := NewScheduler(f, quietLogger())

	assert.NotPanics(t, s.autosave)
	assert.True(t, f.Dirty())
}

func TestScheduledJobRuns(t *testing.T) {
	f := &fakeFlusher{dirty: true}
	s := NewScheduler(f, quietLogger())
	_, err := s.ScheduleAutosave("@every 1s")
	require.NoError(t, err)
	require.NoError(t, s.Start())

	assert.Eventually(t, func() bool { return f.count() > 0 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestStopFlushesPendingChanges(t *testing.T) {
	f := &fakeFlusher{}
	s := NewScheduler(f, quietLogger())
	_, err := s.ScheduleAutosave("@every 1h")
	require.NoError(t, err)
	require.NoError(t, s.Start())

	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()

	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 1, f.count())
	assert.NoError(t, s.Stop(context.Background()), "stopping twice is a no-op")
}
