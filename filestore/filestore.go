package filestore

import (
	"context"
)

// FileStore keeps whole objects under string keys.
type FileStore interface {
	UploadFileData(ctx context.Context, key string, data []byte, contentType string) error
	// DownloadFileData returns ErrFileNotFound when key does not exist.
	DownloadFileData(ctx context.Context, key string) ([]byte, error)
}
