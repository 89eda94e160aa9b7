package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiterBurst(t *testing.T) {
	l := NewMemoryLimiter(Rate{PerSecond: 1, Burst: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, l.Allow(ctx, "10.0.0.1"))
}

func TestMemoryLimiterIsolatesKeys(t *testing.T) {
	l := NewMemoryLimiter(Rate{PerSecond: 1, Burst: 1})
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "10.0.0.1"))
	assert.False(t, l.Allow(ctx, "10.0.0.1"))

	// A different client still has its full budget.
	assert.True(t, l.Allow(ctx, "10.0.0.2"))
}
