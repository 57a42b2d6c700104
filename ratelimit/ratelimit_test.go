package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tunedl/ratelimit"
)

func TestTrackJitter(t *testing.T) {
	t.Parallel()

	for range 100 {
		ms := ratelimit.TrackJitter().Milliseconds()
		assert.GreaterOrEqual(t, ms, int64(1000))
		assert.Less(t, ms, int64(4000))
	}
}

func TestSleepHonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	start := time.Now()
	err := ratelimit.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	require.NoError(t, ratelimit.Sleep(t.Context(), time.Millisecond))
	require.NoError(t, ratelimit.Sleep(t.Context(), 0))
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()

	unlimited := ratelimit.NewLimiter(0, 0)
	for range 50 {
		assert.True(t, unlimited.Allow())
	}

	limited := ratelimit.NewLimiter(time.Hour, 2)
	assert.True(t, limited.Allow())
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow())
}
