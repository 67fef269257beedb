package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Sweeper runs a full price refresh sweep.
type Sweeper interface {
	RefreshAll(ctx context.Context) error
}

// Scheduler runs recurring refresh sweeps on a fixed interval. At most
// one ticker loop is alive at a time: reconfiguring always stops the
// previous loop before starting a new one.
type Scheduler struct {
	sweeper Sweeper
	logger  *slog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	enabled  bool
	interval time.Duration
}

// ScheduleStatus is the externally visible state of the scheduler.
type ScheduleStatus struct {
	Enabled  bool          `json:"enabled"`
	Interval time.Duration `json:"-"`
}

// NewScheduler creates a scheduler. It starts idle; call Configure to
// arm it.
func NewScheduler(sweeper Sweeper, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper: sweeper,
		logger:  logger,
	}
}

// Configure replaces the current schedule. Any running loop is stopped
// first, so the new interval starts counting from now.
func (s *Scheduler) Configure(enabled bool, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	s.enabled = enabled
	s.interval = interval

	if !enabled {
		s.logger.Info("refresh schedule disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx, interval)

	s.logger.Info("refresh schedule configured", slog.Duration("interval", interval))
}

// Stop halts the loop without changing the configured schedule.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Status returns the configured schedule.
func (s *Scheduler) Status() ScheduleStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ScheduleStatus{Enabled: s.enabled, Interval: s.interval}
}

func (s *Scheduler) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.sweeper.RefreshAll(ctx)
			switch {
			case errors.Is(err, ErrSweepInProgress):
				// The previous sweep outlived the interval; skip this
				// tick rather than queue up.
				s.logger.Debug("scheduled sweep skipped, previous still running")
			case errors.Is(err, context.Canceled):
				return
			case err != nil:
				s.logger.Error("scheduled sweep error", slog.String("error", err.Error()))
			}
		}
	}
}
