package filestore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noSuchKeyBody = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

type fakeS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = data
		f.contentTypes[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(noSuchKeyBody))
			return
		}
		w.Header().Set("Content-Type", f.contentTypes[r.URL.Path])
		_, _ = w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func setupFakeS3(t *testing.T) (*fakeS3, FileStore) {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	fake := &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := NewS3FileStore(context.Background(), S3Config{
		Endpoint:        server.URL,
		Region:          "us-east-1",
		Bucket:          "rates",
		AccessKeyId:     "test-access-key",
		SecretAccessKey: "test-secret",
	})
	require.NoError(t, err)
	return fake, store
}

func TestS3FileStore_UploadAndDownload(t *testing.T) {
	fake, store := setupFakeS3(t)
	ctx := context.Background()

	data := []byte(`{"base":"EUR"}`)
	require.NoError(t, store.UploadFileData(ctx, "snapshots/rates.json", data, "application/json"))

	fake.mu.Lock()
	assert.Equal(t, data, fake.objects["/rates/snapshots/rates.json"])
	assert.Equal(t, "application/json", fake.contentTypes["/rates/snapshots/rates.json"])
	fake.mu.Unlock()

	downloaded, err := store.DownloadFileData(ctx, "snapshots/rates.json")
	require.NoError(t, err)
	assert.Equal(t, data, downloaded)
}

func TestS3FileStore_DownloadMissing(t *testing.T) {
	_, store := setupFakeS3(t)

	_, err := store.DownloadFileData(context.Background(), "missing.json")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestS3FileStore_Unreachable(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	store, err := NewS3FileStore(context.Background(), S3Config{
		Endpoint:        endpoint,
		Region:          "us-east-1",
		Bucket:          "rates",
		AccessKeyId:     "k",
		SecretAccessKey: "s",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.DownloadFileData(ctx, "rates.json")
	assert.ErrorIs(t, err, ErrDownload)
	assert.NotErrorIs(t, err, ErrFileNotFound)
}

func TestNewS3FileStore_RequiresBucket(t *testing.T) {
	_, err := NewS3FileStore(context.Background(), S3Config{Region: "auto"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestR2Endpoint(t *testing.T) {
	assert.Equal(t, "https://acc.r2.cloudflarestorage.com", R2Endpoint("acc"))
}
