package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLock_Lock(t *testing.T) {
	_, client := setupMiniredis(t)
	lock := NewRedisLock(client)
	assert.NotNil(t, lock)

	ctx := context.Background()
	key := "test-lock"

	unlock, err := lock.Lock(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	_, err = lock.TryLock(ctx, key)
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	assert.NoError(t, unlock(ctx))
	assert.NoError(t, unlock(ctx))

	unlock, err = lock.Lock(ctx, key)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
}

func TestRedisLock_LockExhaustsRetries(t *testing.T) {
	_, client := setupMiniredis(t)
	lock := NewRedisLock(client)
	ctx := context.Background()

	unlock, err := lock.Lock(ctx, "busy")
	require.NoError(t, err)
	defer unlock(ctx)

	_, err = lock.Lock(ctx, "busy", WithRetries(2), WithRetryDelay(time.Millisecond))
	assert.ErrorIs(t, err, ErrLockNotAcquired)
}

func TestRedisLock_Expiry(t *testing.T) {
	mr, client := setupMiniredis(t)
	lock := NewRedisLock(client)
	ctx := context.Background()
	key := "test-lock-expiry"

	_, err := lock.Lock(ctx, key, WithExpiry(300*time.Millisecond))
	require.NoError(t, err)

	mr.FastForward(time.Second)

	unlock, err := lock.TryLock(ctx, key)
	require.NoError(t, err)
	assert.NoError(t, unlock(ctx))
}

func TestRedisLock_InvalidKey(t *testing.T) {
	_, client := setupMiniredis(t)
	lock := NewRedisLock(client)
	ctx := context.Background()

	_, err := lock.Lock(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidLockKey)

	_, err = lock.TryLock(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidLockKey)
}

func TestRedisLock_ContextCancellation(t *testing.T) {
	_, client := setupMiniredis(t)
	lock := NewRedisLock(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lock.Lock(ctx, "test-context-cancel")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = lock.TryLock(ctx, "test-context-cancel")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisLock_BackendDown(t *testing.T) {
	mr, client := setupMiniredis(t)
	lock := NewRedisLock(client)
	mr.Close()

	_, err := lock.TryLock(context.Background(), "down")
	assert.Error(t, err)
}
