package util

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeValueNotFoundInContext = 10000 + iota
	ErrCodeInvalidValueInContext
	ErrCodeNotNumeric
)

var (
	ErrValueNotFoundInContext = errors.NewError(ErrCodeValueNotFoundInContext, "value not found in context", nil)
	ErrInvalidValueInContext  = errors.NewError(ErrCodeInvalidValueInContext, "invalid value in context", nil)
	ErrNotNumeric             = errors.NewError(ErrCodeNotNumeric, "value is not numeric", nil)
)
