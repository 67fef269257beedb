package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) RefreshAll(_ context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	sweeper := &countingSweeper{}
	sched := NewScheduler(sweeper, newTestLogger())
	defer sched.Stop()

	sched.Configure(true, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 3
	}, 5*time.Second, 5*time.Millisecond)
}

func TestScheduler_DisabledDoesNotRun(t *testing.T) {
	sweeper := &countingSweeper{}
	sched := NewScheduler(sweeper, newTestLogger())

	sched.Configure(false, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, sweeper.calls.Load())
}

func TestScheduler_ReconfigureReplacesLoop(t *testing.T) {
	first := &countingSweeper{}
	sched := NewScheduler(first, newTestLogger())
	defer sched.Stop()

	sched.Configure(true, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return first.calls.Load() >= 1
	}, 5*time.Second, 5*time.Millisecond)

	// Reconfiguring stops the previous loop before starting a new one,
	// so only one ticker is ever live.
	sched.Configure(true, time.Hour)
	time.Sleep(20 * time.Millisecond)
	settled := first.calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, first.calls.Load())

	status := sched.Status()
	assert.True(t, status.Enabled)
	assert.Equal(t, time.Hour, status.Interval)
}

func TestScheduler_DisableStopsLoop(t *testing.T) {
	sweeper := &countingSweeper{}
	sched := NewScheduler(sweeper, newTestLogger())

	sched.Configure(true, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 1
	}, 5*time.Second, 5*time.Millisecond)

	sched.Configure(false, 0)
	time.Sleep(20 * time.Millisecond)
	settled := sweeper.calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, sweeper.calls.Load())

	assert.False(t, sched.Status().Enabled)
}

func TestScheduler_SkipsWhileSweepRunning(t *testing.T) {
	sweeper := &countingSweeper{err: ErrSweepInProgress}
	sched := NewScheduler(sweeper, newTestLogger())
	defer sched.Stop()

	// A busy sweeper only produces debug-level skips, never a crash.
	sched.Configure(true, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 2
	}, 5*time.Second, 5*time.Millisecond)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	sched := NewScheduler(&countingSweeper{}, newTestLogger())
	sched.Configure(true, time.Hour)

	sched.Stop()
	sched.Stop()
}
