package lock

import (
	"context"
	"errors"
	"sync"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

type redisLock struct {
	rs *redsync.Redsync
}

// NewRedisLock serializes callers across every process sharing client.
func NewRedisLock(client *redis.Client) Lock {
	pool := goredis.NewPool(client)
	rs := redsync.New(pool)
	return &redisLock{rs: rs}
}

func createUnlock(mutex *redsync.Mutex) UnlockFunc {
	var once sync.Once
	return func(ctx context.Context) (err error) {
		once.Do(func() {
			ok, unlockErr := mutex.UnlockContext(ctx)
			if unlockErr != nil {
				err = ErrUnlockFailed.Wrap(unlockErr)
				return
			}
			if !ok {
				err = ErrUnlockFailed
			}
		})
		return err
	}
}

func classifyLockError(err error) error {
	var errTaken *redsync.ErrTaken
	if errors.As(err, &errTaken) || errors.Is(err, redsync.ErrFailed) {
		return ErrLockNotAcquired.Wrap(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ErrBackend.Wrap(err)
}

func (l *redisLock) Lock(ctx context.Context, key string, opts ...LockOption) (UnlockFunc, error) {
	if err := checkLockRequest(ctx, key); err != nil {
		return nil, err
	}

	options := applyLockOptions(opts)
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(options.expiry),
		redsync.WithRetryDelay(options.retryDelay),
		redsync.WithTries(options.retries),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, classifyLockError(err)
	}

	return createUnlock(mutex), nil
}

func (l *redisLock) TryLock(ctx context.Context, key string, opts ...LockOption) (UnlockFunc, error) {
	if err := checkLockRequest(ctx, key); err != nil {
		return nil, err
	}

	options := applyLockOptions(opts)
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(options.expiry),
		redsync.WithTries(1),
	)
	if err := mutex.TryLockContext(ctx); err != nil {
		return nil, classifyLockError(err)
	}

	return createUnlock(mutex), nil
}
