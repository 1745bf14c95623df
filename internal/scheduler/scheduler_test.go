package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	calls  atomic.Int32
	maxAge atomic.Int64
	err    error
}

func (f *fakeSweeper) Sweep(_ context.Context, maxAge time.Duration) (int, error) {
	f.calls.Add(1)
	f.maxAge.Store(int64(maxAge))
	return 3, f.err
}

type fakeReporter struct {
	mu      sync.Mutex
	errs    []error
	service string
}

func (r *fakeReporter) Report(_ context.Context, err error, service string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	r.service = service
}

func TestScheduler_SweepsOnStart(t *testing.T) {
	sw := &fakeSweeper{}
	s := New(sw, time.Hour, 24*time.Hour, &fakeReporter{}, slog.Default())

	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	assert.Eventually(t, func() bool { return sw.calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(24*time.Hour), sw.maxAge.Load())
}

func TestScheduler_SweepErrorIsReported(t *testing.T) {
	errStore := errors.New("store unavailable")
	sw := &fakeSweeper{err: errStore}
	rep := &fakeReporter{}
	s := New(sw, time.Hour, time.Hour, rep, slog.Default())

	assert.NotPanics(t, s.sweep)
	assert.Equal(t, int32(1), sw.calls.Load())
	require.Len(t, rep.errs, 1)
	require.ErrorIs(t, rep.errs[0], errStore)
	assert.Equal(t, "cache-sweep", rep.service)
}

func TestScheduler_SuccessfulSweepNotReported(t *testing.T) {
	rep := &fakeReporter{}
	s := New(&fakeSweeper{}, time.Hour, time.Hour, rep, slog.Default())

	s.sweep()

	assert.Empty(t, rep.errs)
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	s := New(&fakeSweeper{}, time.Hour, time.Hour, &fakeReporter{}, slog.Default())
	assert.NotPanics(t, s.Stop)
}
