package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_FirstRequestImmediate(t *testing.T) {
	l := NewHostLimiter(time.Second, 1)

	start := time.Now()
	if err := l.Wait(context.Background(), "api.example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first request waited %v, want immediate", elapsed)
	}
}

func TestWait_EnforcesDelayPerHost(t *testing.T) {
	l := NewHostLimiter(80*time.Millisecond, 1)
	ctx := context.Background()

	start := time.Now()
	if err := l.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("second request to same host after %v, want >= 80ms", elapsed)
	}
}

func TestWait_HostsIndependent(t *testing.T) {
	l := NewHostLimiter(time.Second, 1)
	ctx := context.Background()

	if err := l.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A different host must not inherit a's delay.
	start := time.Now()
	if err := l.Wait(ctx, "b.example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("different host waited %v, want immediate", elapsed)
	}
}

func TestWait_CancelledContext(t *testing.T) {
	l := NewHostLimiter(time.Hour, 1)
	ctx := context.Background()

	if err := l.Wait(ctx, "a.example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.Wait(cancelCtx, "a.example.com"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

func TestWaitURL_KeysByHost(t *testing.T) {
	l := NewHostLimiter(80*time.Millisecond, 1)
	ctx := context.Background()

	start := time.Now()
	if err := l.WaitURL(ctx, "https://boards.example.com/v1/boards/acme/jobs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.WaitURL(ctx, "https://boards.example.com/v1/boards/other/jobs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("same-host URLs completed in %v, want >= 80ms", elapsed)
	}
}
