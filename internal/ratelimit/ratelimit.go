package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a minimum gap between requests to the same host.
// Paged and multi-board connectors share one instance per source so their
// inter-request delays stay under informal upstream rate limits.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing one request per delay to each
// host, with the given burst. The first request to a host never waits.
func NewHostLimiter(delay time.Duration, burst int) *HostLimiter {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (l *HostLimiter) limiterFor(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters[host] = lim
	return lim
}

// Wait blocks until the host's limiter permits a request, or the context is
// cancelled.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if err := l.limiterFor(host).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", host, err)
	}
	return nil
}

// WaitURL is Wait keyed by the URL's host. Unparseable URLs share a single
// fallback bucket.
func (l *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return l.Wait(ctx, "_")
	}
	return l.Wait(ctx, u.Host)
}
