package snapshot

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeSnapshotNotFound = 14000 + iota
	ErrCodeSnapshotCorrupt
	ErrCodeStorage
	ErrCodeRefreshLock
)

var (
	ErrSnapshotNotFound = errors.NewError(ErrCodeSnapshotNotFound, "persisted snapshot not found", nil)
	// ErrSnapshotCorrupt means something is stored but cannot be decoded or
	// breaks the snapshot invariants.
	ErrSnapshotCorrupt = errors.NewError(ErrCodeSnapshotCorrupt, "persisted snapshot unreadable", nil)
	ErrStorage         = errors.NewError(ErrCodeStorage, "snapshot storage failure", nil)
	ErrRefreshLock     = errors.NewError(ErrCodeRefreshLock, "failed to acquire refresh lock", nil)
)
