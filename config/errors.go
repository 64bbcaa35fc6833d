package config

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeInvalidValue = 19000 + iota
	ErrCodeMissingValue
)

var (
	ErrInvalidValue = errors.NewError(ErrCodeInvalidValue, "invalid configuration value", nil)
	ErrMissingValue = errors.NewError(ErrCodeMissingValue, "missing configuration value", nil)
)
