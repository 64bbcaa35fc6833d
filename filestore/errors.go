package filestore

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeFileNotFound = 17000 + iota
	ErrCodeInvalidConfig
	ErrCodeUpload
	ErrCodeDownload
)

var (
	ErrFileNotFound  = errors.NewError(ErrCodeFileNotFound, "file not found", nil)
	ErrInvalidConfig = errors.NewError(ErrCodeInvalidConfig, "invalid file store config", nil)
	ErrUpload        = errors.NewError(ErrCodeUpload, "failed to upload file", nil)
	ErrDownload      = errors.NewError(ErrCodeDownload, "failed to download file", nil)
)
