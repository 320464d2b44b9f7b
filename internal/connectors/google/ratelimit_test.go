package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter()

	require.NotNil(t, rl)
	assert.NotNil(t, rl.limiter)
}

func TestNewRateLimiterWithConfig(t *testing.T) {
	cfg := RateLimitConfig{
		RequestsPerSecond: 2.0,
		BurstSize:         4,
	}

	rl := NewRateLimiterWithConfig(cfg)

	require.NotNil(t, rl)
	assert.NotNil(t, rl.limiter)
}

func TestRateLimiter_Wait(t *testing.T) {
	rl := NewRateLimiter()

	ctx := context.Background()
	err := rl.Wait(ctx)

	assert.NoError(t, err)
}

func TestRateLimiter_Wait_ContextCancelled(t *testing.T) {
	rl := NewRateLimiter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := rl.Wait(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter()

	// First few requests should be allowed (burst)
	for i := 0; i < 4; i++ {
		assert.True(t, rl.Allow(), "request %d should be allowed", i)
	}
}

func TestRateLimiter_RecordRateLimitError(t *testing.T) {
	rl := NewRateLimiter()

	// Record a rate limit error with 1 second backoff
	rl.RecordRateLimitError(1)

	// Should not allow immediately
	assert.False(t, rl.Allow())

	// Wait for backoff to expire
	time.Sleep(1100 * time.Millisecond)

	// Should allow after backoff
	assert.True(t, rl.Allow())
}

func TestRateLimiter_RecordRateLimitError_DefaultBackoff(t *testing.T) {
	rl := NewRateLimiter()

	// Record with zero (should use the default backoff)
	rl.RecordRateLimitError(0)

	rl.mu.Lock()
	retryAt := rl.retryAt
	rl.mu.Unlock()

	expectedRetry := time.Now().Add(60 * time.Second)
	assert.WithinDuration(t, expectedRetry, retryAt, 2*time.Second)
}
