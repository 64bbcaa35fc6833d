package rate

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeProvider = 12000 + iota
	ErrCodeConnection
)

var (
	// ErrProvider means the provider answered with something that is not a
	// usable rate table: an HTML page, a non-JSON body, an unsuccessful
	// payload or a non-2xx status.
	ErrProvider = errors.NewError(ErrCodeProvider, "rate provider returned an unusable response", nil)
	// ErrConnection means the provider could not be reached at all.
	ErrConnection = errors.NewError(ErrCodeConnection, "rate provider unreachable", nil)
)
