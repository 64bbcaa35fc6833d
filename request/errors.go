package request

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeInvalidSlowRequestThreshold = 11000 + iota
	ErrCodeFailedToCreateRequest
	ErrCodeTransport
	ErrCodeFailedToReadResponseBody
)

var (
	ErrInvalidSlowRequestThreshold = errors.NewError(ErrCodeInvalidSlowRequestThreshold, "invalid slow request threshold", nil)
	ErrFailedToCreateRequest       = errors.NewError(ErrCodeFailedToCreateRequest, "failed to create request", nil)
	// ErrTransport covers every failure to obtain a response: dial errors,
	// timeouts and cancellations.
	ErrTransport                = errors.NewError(ErrCodeTransport, "failed to send request", nil)
	ErrFailedToReadResponseBody = errors.NewError(ErrCodeFailedToReadResponseBody, "failed to read response body", nil)
)
