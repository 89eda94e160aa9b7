package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter gates requests per key. Fail-open: limiter faults must not
// take the verification flow down.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Rate describes a token bucket: sustained requests per second with a
// burst ceiling.
type Rate struct {
	PerSecond float64
	Burst     float64
}

type bucket struct {
	tokens float64
	ts     time.Time
}

// MemoryLimiter is the in-process fallback used when no redis address
// is configured. Per-key token buckets behind one mutex.
type MemoryLimiter struct {
	mu      sync.Mutex
	rate    Rate
	buckets map[string]*bucket
}

func NewMemoryLimiter(rate Rate) *MemoryLimiter {
	return &MemoryLimiter{
		rate:    rate,
		buckets: make(map[string]*bucket),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.rate.Burst, ts: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.ts).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.rate.PerSecond
		if b.tokens > l.rate.Burst {
			b.tokens = l.rate.Burst
		}
		b.ts = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}
