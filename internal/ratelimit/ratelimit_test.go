package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryBucketRefills(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	bucket := NewMemoryBucket(clk)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := bucket.Take(ctx, "k", 1, 3)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d", i)
	}

	res, err := bucket.Take(ctx, "k", 1, 3)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Second, res.RetryAfter)

	clk.Advance(time.Second)
	res, err = bucket.Take(ctx, "k", 1, 3)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = bucket.Take(ctx, "other", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)
}

func TestMemoryBucketValidates(t *testing.T) {
	bucket := NewMemoryBucket(nil)
	ctx := context.Background()

	_, err := bucket.Take(ctx, "", 1, 1)
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, err = bucket.Take(ctx, "k", 0, 1)
	assert.ErrorIs(t, err, ErrInvalidLimits)
}

func TestTokenBucketWithoutClient(t *testing.T) {
	assert.Nil(t, NewTokenBucket(nil))

	var tb *TokenBucket
	_, err := tb.Take(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestLoginLimiterBlocksPerIdentifier(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	limiter := NewLoginLimiter(NewMemoryBucket(clk), 2, time.Minute, 2, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1", "asha@example.com")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	res, err := limiter.Allow(ctx, "10.0.0.2", "ASHA@example.com")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)

	res, err = limiter.Allow(ctx, "10.0.0.2", "ravi@example.com")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	clk.Advance(time.Minute)
	res, err = limiter.Allow(ctx, "10.0.0.1", "asha@example.com")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

type failingBucket struct{}

func (failingBucket) Take(context.Context, string, float64, int) (Result, error) {
	return Result{}, errors.New("connection refused")
}

func TestLoginLimiterFailsOpen(t *testing.T) {
	limiter := NewLoginLimiter(failingBucket{}, 1, time.Minute, 1, zap.NewNop())

	res, err := limiter.Allow(context.Background(), "10.0.0.1", "asha")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNilLoginLimiterAllows(t *testing.T) {
	var limiter *LoginLimiter
	res, err := limiter.Allow(context.Background(), "ip", "id")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	assert.Nil(t, NewLoginLimiter(NewMemoryBucket(nil), 0, time.Minute, 1, nil))
}
