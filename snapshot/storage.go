package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/infigaming-com/currency-converter/cache"
	"github.com/infigaming-com/currency-converter/filestore"
)

// Storage persists a single snapshot document.
type Storage interface {
	// Load returns ErrSnapshotNotFound when nothing is stored and
	// ErrSnapshotCorrupt when the stored document cannot be used.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
	Exists(ctx context.Context) (bool, error)
}

func exists(ctx context.Context, storage Storage) (bool, error) {
	_, err := storage.Load(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrSnapshotNotFound):
		return false, nil
	case errors.Is(err, ErrSnapshotCorrupt):
		// present but unusable still counts as a persisted copy
		return true, nil
	default:
		return false, err
	}
}

type fileStorage struct {
	path string
}

// NewFileStorage keeps the snapshot in a local JSON file. Saves go through a
// temporary file and a rename, so readers never see half a document.
func NewFileStorage(path string) Storage {
	return &fileStorage{path: path}
}

func (f *fileStorage) Load(ctx context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrSnapshotNotFound.Wrapf("%s", f.path)
		}
		return nil, ErrSnapshotCorrupt.Wrap(err)
	}
	return decode(data)
}

func (f *fileStorage) Save(ctx context.Context, s *Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return ErrStorage.Wrap(err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ErrStorage.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ErrStorage.Wrap(err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return ErrStorage.Wrap(err)
	}
	return nil
}

func (f *fileStorage) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, ErrStorage.Wrap(err)
}

type cacheStorage struct {
	cache cache.Cache
	key   string
}

// NewCacheStorage keeps the snapshot under key in c. Backed by redis it is
// shared by every instance; backed by freecache it lives as long as the
// process.
func NewCacheStorage(c cache.Cache, key string) Storage {
	return &cacheStorage{cache: c, key: key}
}

func (c *cacheStorage) Load(ctx context.Context) (*Snapshot, error) {
	snapshot, err := cache.GetTyped[Snapshot](ctx, c.cache, c.key)
	if err != nil {
		switch {
		case errors.Is(err, cache.ErrKeyNotFound):
			return nil, ErrSnapshotNotFound.Wrap(err)
		case errors.Is(err, cache.ErrJsonUnmarshal):
			return nil, ErrSnapshotCorrupt.Wrap(err)
		default:
			return nil, ErrStorage.Wrap(err)
		}
	}
	return checked(&snapshot)
}

func (c *cacheStorage) Save(ctx context.Context, s *Snapshot) error {
	if err := cache.SetTyped(ctx, c.cache, c.key, s, 0); err != nil {
		return ErrStorage.Wrap(err)
	}
	return nil
}

func (c *cacheStorage) Exists(ctx context.Context) (bool, error) {
	return exists(ctx, c)
}

type objectStorage struct {
	store filestore.FileStore
	key   string
}

// NewObjectStorage keeps the snapshot as one object in an S3 compatible
// bucket.
func NewObjectStorage(store filestore.FileStore, key string) Storage {
	return &objectStorage{store: store, key: key}
}

func (o *objectStorage) Load(ctx context.Context) (*Snapshot, error) {
	data, err := o.store.DownloadFileData(ctx, o.key)
	if err != nil {
		if errors.Is(err, filestore.ErrFileNotFound) {
			return nil, ErrSnapshotNotFound.Wrap(err)
		}
		return nil, ErrStorage.Wrap(err)
	}
	return decode(data)
}

func (o *objectStorage) Save(ctx context.Context, s *Snapshot) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := o.store.UploadFileData(ctx, o.key, data, "application/json"); err != nil {
		return ErrStorage.Wrap(err)
	}
	return nil
}

func (o *objectStorage) Exists(ctx context.Context) (bool, error) {
	return exists(ctx, o)
}
