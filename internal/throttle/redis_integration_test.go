//go:build integration

package throttle

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisLimiter(client)
	ip := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = limiter.ResetLogin(context.Background(), ip) })

	for range LoginMaxFailures {
		require.NoError(t, limiter.RegisterLoginFailure(ctx, ip))
	}
	blocked, err := limiter.LoginBlocked(ctx, ip)
	require.NoError(t, err)
	assert.True(t, blocked)

	require.NoError(t, limiter.ResetLogin(ctx, ip))
	blocked, err = limiter.LoginBlocked(ctx, ip)
	require.NoError(t, err)
	assert.False(t, blocked)

	key := "resend:" + uuid.NewString()
	ok, err := limiter.AcquireCooldown(ctx, key, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = limiter.AcquireCooldown(ctx, key, time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}
