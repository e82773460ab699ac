package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestEnforce_CooldownAndExpiry(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, Enforce(ctx, rdb, userID, "entry", 5*time.Second))

	err := Enforce(ctx, rdb, userID, "entry", 5*time.Second)
	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 5*time.Second, rlErr.RetryAfter)

	mr.FastForward(6 * time.Second)
	assert.NoError(t, Enforce(ctx, rdb, userID, "entry", 5*time.Second))
}

func TestEnforce_PerUserAndAction(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, Enforce(ctx, rdb, a, "entry", time.Minute))
	assert.NoError(t, Enforce(ctx, rdb, b, "entry", time.Minute))
	assert.NoError(t, Enforce(ctx, rdb, a, "profile", time.Minute))
}

func TestClearRateLimit(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, Enforce(ctx, rdb, userID, "entry", time.Minute))
	require.NoError(t, ClearRateLimit(ctx, rdb, userID, "entry"))
	assert.NoError(t, Enforce(ctx, rdb, userID, "entry", time.Minute))
}

func TestNilClientAlwaysAllows(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		assert.NoError(t, Enforce(ctx, nil, userID, "entry", time.Minute))
	}
}
