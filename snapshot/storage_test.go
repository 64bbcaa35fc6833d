package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coocood/freecache"
	"github.com/infigaming-com/currency-converter/cache"
	"github.com/infigaming-com/currency-converter/filestore"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryFileStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryFileStore() *memoryFileStore {
	return &memoryFileStore{objects: map[string][]byte{}}
}

func (m *memoryFileStore) UploadFileData(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryFileStore) DownloadFileData(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, filestore.ErrFileNotFound
	}
	return data, nil
}

func sampleSnapshot() *Snapshot {
	at := time.Date(2024, time.May, 10, 17, 0, 0, 0, time.UTC)
	return &Snapshot{
		FetchedAt: &at,
		Base:      BaseCurrency,
		Rates: map[string]decimal.Decimal{
			"EUR": decimal.NewFromInt(1),
			"USD": decimal.RequireFromString("1.0772"),
			"GBP": decimal.RequireFromString("0.86013"),
		},
	}
}

func storages(t *testing.T) map[string]Storage {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Storage{
		"file":      NewFileStorage(filepath.Join(t.TempDir(), "rates.json")),
		"freecache": NewCacheStorage(cache.NewFreeCache(freecache.NewCache(1024*1024)), "rates"),
		"redis":     NewCacheStorage(cache.NewRedisCache(zap.NewNop(), client), "rates"),
		"object":    NewObjectStorage(newMemoryFileStore(), "snapshots/rates.json"),
	}
}

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			_, err := storage.Load(ctx)
			assert.ErrorIs(t, err, ErrSnapshotNotFound)

			exists, err := storage.Exists(ctx)
			require.NoError(t, err)
			assert.False(t, exists)

			expect := sampleSnapshot()
			require.NoError(t, storage.Save(ctx, expect))

			exists, err = storage.Exists(ctx)
			require.NoError(t, err)
			assert.True(t, exists)

			loaded, err := storage.Load(ctx)
			require.NoError(t, err)
			assert.True(t, expect.FetchedAt.Equal(*loaded.FetchedAt))
			assert.Equal(t, expect.Base, loaded.Base)
			assert.Equal(t, expect.Currencies(), loaded.Currencies())
			for currency, value := range expect.Rates {
				assert.True(t, value.Equal(loaded.Rates[currency]), currency)
			}
		})
	}
}

func TestStorage_EmptySnapshotRoundTrip(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "rates.json"))
	require.NoError(t, storage.Save(context.Background(), Empty()))

	loaded, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
	assert.Empty(t, loaded.Currencies())
}

func TestFileStorage_Corrupt(t *testing.T) {
	tcs := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "garbage"},
		{name: "missing base rate", content: `{"fetched_at":"2024-05-10T17:00:00Z","base":"EUR","rates":{"USD":"1.07"}}`},
		{name: "no rates", content: `{"fetched_at":"2024-05-10T17:00:00Z","base":"EUR","rates":{}}`},
		{name: "other base", content: `{"fetched_at":"2024-05-10T17:00:00Z","base":"USD","rates":{"USD":"1"}}`},
		{name: "negative rate", content: `{"fetched_at":"2024-05-10T17:00:00Z","base":"EUR","rates":{"EUR":"1","USD":"-1"}}`},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rates.json")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := NewFileStorage(path).Load(context.Background())
			assert.ErrorIs(t, err, ErrSnapshotCorrupt)
		})
	}
}

func TestFileStorage_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	storage := NewFileStorage(filepath.Join(dir, "rates.json"))
	require.NoError(t, storage.Save(context.Background(), sampleSnapshot()))
	require.NoError(t, storage.Save(context.Background(), sampleSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "rates.json", entries[0].Name())
}

func TestFileStorage_SaveToMissingDirectory(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "missing", "rates.json"))
	err := storage.Save(context.Background(), sampleSnapshot())
	assert.ErrorIs(t, err, ErrStorage)
}

func TestCacheStorage_Document(t *testing.T) {
	ctx := context.Background()
	c := cache.NewFreeCache(freecache.NewCache(1024 * 1024))
	storage := NewCacheStorage(c, "rates")
	require.NoError(t, storage.Save(ctx, sampleSnapshot()))

	raw, err := c.Get(ctx, "rates")
	require.NoError(t, err)
	assert.JSONEq(t, `{"fetched_at":"2024-05-10T17:00:00Z","base":"EUR","rates":{"EUR":"1","USD":"1.0772","GBP":"0.86013"}}`, raw)
}

func TestCacheStorage_Corrupt(t *testing.T) {
	tcs := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "garbage"},
		{name: "missing base rate", content: `{"fetched_at":"2024-05-10T17:00:00Z","base":"EUR","rates":{"USD":"1.07"}}`},
		{name: "other base", content: `{"fetched_at":"2024-05-10T17:00:00Z","base":"USD","rates":{"USD":"1"}}`},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			c := cache.NewFreeCache(freecache.NewCache(1024 * 1024))
			require.NoError(t, c.Set(ctx, "rates", tc.content, 0))
			storage := NewCacheStorage(c, "rates")

			_, err := storage.Load(ctx)
			assert.ErrorIs(t, err, ErrSnapshotCorrupt)

			persisted, err := storage.Exists(ctx)
			require.NoError(t, err)
			assert.True(t, persisted)
		})
	}
}

func TestCacheStorage_BackendDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	storage := NewCacheStorage(cache.NewRedisCache(zap.NewNop(), client), "rates")
	mr.Close()

	_, err := storage.Load(context.Background())
	assert.ErrorIs(t, err, ErrStorage)

	_, err = storage.Exists(context.Background())
	assert.Error(t, err)
}

func TestSnapshot_Helpers(t *testing.T) {
	s := sampleSnapshot()
	assert.False(t, s.IsEmpty())
	assert.Equal(t, []string{"EUR", "GBP", "USD"}, s.Currencies())

	value, ok := s.Rate("USD")
	assert.True(t, ok)
	assert.True(t, decimal.RequireFromString("1.0772").Equal(value))

	_, ok = s.Rate("JPY")
	assert.False(t, ok)

	assert.True(t, Empty().IsEmpty())
	assert.True(t, s.newer(Empty()))
	assert.False(t, Empty().newer(s))
}
