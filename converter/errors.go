package converter

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeInvalidAmount = 15000 + iota
)

var (
	ErrInvalidAmount = errors.NewError(ErrCodeInvalidAmount, "amount is not a number", nil)
)
