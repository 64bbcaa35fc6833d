package cache

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeKeyNotFound = 16000 + iota
	ErrCodeJsonMarshal
	ErrCodeJsonUnmarshal
	ErrCodeBackend
)

var (
	ErrKeyNotFound   = errors.NewError(ErrCodeKeyNotFound, "key not found", nil)
	ErrJsonMarshal   = errors.NewError(ErrCodeJsonMarshal, "failed to marshal value to json", nil)
	ErrJsonUnmarshal = errors.NewError(ErrCodeJsonUnmarshal, "failed to unmarshal value from json", nil)
	ErrBackend       = errors.NewError(ErrCodeBackend, "cache backend failure", nil)
)
