package lock

import (
	"context"
	"sync"
)

type localLock struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
}

// NewLocalLock serializes callers inside one process. Waiting honours the
// context, so a cancelled request never stays parked behind a slow refresh.
func NewLocalLock() Lock {
	return &localLock{keys: make(map[string]chan struct{})}
}

func (l *localLock) sem(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.keys[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.keys[key] = sem
	}
	return sem
}

func release(sem chan struct{}) UnlockFunc {
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-sem })
		return nil
	}
}

func (l *localLock) Lock(ctx context.Context, key string, opts ...LockOption) (UnlockFunc, error) {
	if err := checkLockRequest(ctx, key); err != nil {
		return nil, err
	}

	sem := l.sem(key)
	select {
	case sem <- struct{}{}:
		return release(sem), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *localLock) TryLock(ctx context.Context, key string, opts ...LockOption) (UnlockFunc, error) {
	if err := checkLockRequest(ctx, key); err != nil {
		return nil, err
	}

	sem := l.sem(key)
	select {
	case sem <- struct{}{}:
		return release(sem), nil
	default:
		return nil, ErrLockNotAcquired
	}
}
