package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sponsorboard/jobsync/internal/aggregator"
	"github.com/sponsorboard/jobsync/internal/model"
)

type countingSyncer struct {
	calls atomic.Int32
	err   error
}

func (s *countingSyncer) Sync(_ context.Context) (model.SyncReport, error) {
	s.calls.Add(1)
	return model.SyncReport{Status: model.StatusCompleted}, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStart_RunsImmediatelyThenOnInterval(t *testing.T) {
	syncer := &countingSyncer{}
	s := New(syncer, 100*time.Millisecond, discardLogger())

	s.Start()
	defer s.Stop()

	// First pass runs on start, not after one interval.
	deadline := time.Now().Add(time.Second)
	for syncer.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if syncer.calls.Load() == 0 {
		t.Fatal("expected an immediate first pass")
	}

	time.Sleep(250 * time.Millisecond)
	if got := syncer.calls.Load(); got < 2 {
		t.Errorf("expected at least 2 passes after interval elapsed, got %d", got)
	}
}

func TestStart_Idempotent(t *testing.T) {
	syncer := &countingSyncer{}
	s := New(syncer, time.Hour, discardLogger())

	s.Start()
	s.Start()
	defer s.Stop()

	time.Sleep(100 * time.Millisecond)
	if got := syncer.calls.Load(); got != 1 {
		t.Errorf("expected exactly 1 pass from a doubly-started scheduler, got %d", got)
	}
}

func TestStop_Idempotent(t *testing.T) {
	s := New(&countingSyncer{}, time.Hour, discardLogger())

	// Stop before start is a no-op.
	s.Stop()

	s.Start()
	s.Stop()
	s.Stop()

	if s.Status().Running {
		t.Error("expected scheduler stopped")
	}
}

func TestStop_ReturnsPromptly(t *testing.T) {
	s := New(&countingSyncer{}, time.Hour, discardLogger())
	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return within 2s")
	}
}

func TestStatus(t *testing.T) {
	s := New(&countingSyncer{}, time.Hour, discardLogger())

	if st := s.Status(); st.Running {
		t.Error("expected not running before Start")
	}
	if st := s.Status(); !st.NextRunAt.IsZero() {
		t.Error("expected zero next run time while stopped")
	}

	s.Start()
	st := s.Status()
	if !st.Running {
		t.Error("expected running after Start")
	}
	if st.NextRunAt.IsZero() {
		t.Error("expected next run time set while running")
	}

	s.Stop()
	if st := s.Status(); st.Running {
		t.Error("expected not running after Stop")
	}
}

func TestPass_InFlightSkipIsNotAnError(t *testing.T) {
	syncer := &countingSyncer{err: aggregator.ErrSyncInFlight}
	s := New(syncer, 50*time.Millisecond, discardLogger())

	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	// The loop keeps ticking across skipped passes.
	if got := syncer.calls.Load(); got < 2 {
		t.Errorf("expected loop to keep ticking through skips, got %d calls", got)
	}
}

func TestPass_SyncErrorKeepsLoopAlive(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("boom")}
	s := New(syncer, 50*time.Millisecond, discardLogger())

	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	if got := syncer.calls.Load(); got < 2 {
		t.Errorf("expected loop to survive sync errors, got %d calls", got)
	}
}
