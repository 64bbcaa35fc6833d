package lock

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeInvalidLockKey = 18000 + iota
	ErrCodeLockNotAcquired
	ErrCodeUnlockFailed
	ErrCodeBackend
)

var (
	ErrInvalidLockKey  = errors.NewError(ErrCodeInvalidLockKey, "invalid lock key", nil)
	ErrLockNotAcquired = errors.NewError(ErrCodeLockNotAcquired, "lock not acquired", nil)
	ErrUnlockFailed    = errors.NewError(ErrCodeUnlockFailed, "failed to unlock", nil)
	ErrBackend         = errors.NewError(ErrCodeBackend, "lock backend failure", nil)
)
