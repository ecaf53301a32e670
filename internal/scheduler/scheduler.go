// Package scheduler drives periodic sync passes: one immediate pass on
// start, then one per interval, with overlapping passes coalesced.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sponsorboard/jobsync/internal/aggregator"
	"github.com/sponsorboard/jobsync/internal/model"
)

// DefaultInterval is the pause between sync passes when none is configured.
const DefaultInterval = 60 * time.Second

// Syncer runs one sync pass. Satisfied by aggregator.Aggregator.
type Syncer interface {
	Sync(ctx context.Context) (model.SyncReport, error)
}

// Status is a point-in-time view of the scheduler.
type Status struct {
	Running   bool
	NextRunAt time.Time
}

// Scheduler owns the sync loop lifecycle. Start and Stop are idempotent and
// safe to call from any goroutine.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	nextRun time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a scheduler. A non-positive interval falls back to
// DefaultInterval.
func New(syncer Syncer, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the sync loop. The first pass runs immediately, not after
// one interval. Calling Start while already running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done
	s.nextRun = time.Now()

	s.logger.Info("starting scheduler", "interval", s.interval.String())
	go s.run(ctx, done)
}

// Stop cancels the loop and waits for any in-progress pass to finish.
// Calling Stop while not running is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

// Status reports whether the loop is running and when the next pass is due.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{Running: s.running}
	if s.running {
		st.NextRunAt = s.nextRun
	}
	return st
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.pass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

// pass runs one sync and records when the next one is due. A pass still in
// flight from a previous tick is skipped, not queued.
func (s *Scheduler) pass(ctx context.Context) {
	s.mu.Lock()
	s.nextRun = time.Now().Add(s.interval)
	s.mu.Unlock()

	_, err := s.syncer.Sync(ctx)
	switch {
	case errors.Is(err, aggregator.ErrSyncInFlight):
		s.logger.Info("previous sync pass still running, skipping this tick")
	case err != nil:
		s.logger.Error("sync pass failed", "error", err)
	}
}
