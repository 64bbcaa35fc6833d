package lock

import (
	"context"
	"time"
)

// UnlockFunc releases a held lock. Calling it more than once is safe; only
// the first call does anything.
type UnlockFunc func(context.Context) error

type Lock interface {
	// Lock blocks until key is held, the retries are exhausted or ctx is done.
	Lock(ctx context.Context, key string, opts ...LockOption) (UnlockFunc, error)
	// TryLock makes a single attempt and returns ErrLockNotAcquired when key
	// is already held.
	TryLock(ctx context.Context, key string, opts ...LockOption) (UnlockFunc, error)
}

type LockOptions struct {
	expiry     time.Duration
	retryDelay time.Duration
	retries    int
}

type LockOption func(*LockOptions)

func defaultLockOptions() *LockOptions {
	return &LockOptions{
		expiry:     8 * time.Second,
		retryDelay: 50 * time.Millisecond,
		retries:    32,
	}
}

func applyLockOptions(opts []LockOption) *LockOptions {
	options := defaultLockOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithExpiry bounds how long a redis lock survives a crashed holder. The
// local lock ignores it.
func WithExpiry(expiry time.Duration) LockOption {
	return func(o *LockOptions) {
		o.expiry = expiry
	}
}

func WithRetryDelay(retryDelay time.Duration) LockOption {
	return func(o *LockOptions) {
		o.retryDelay = retryDelay
	}
}

func WithRetries(retries int) LockOption {
	return func(o *LockOptions) {
		o.retries = retries
	}
}

func checkLockRequest(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidLockKey
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}
