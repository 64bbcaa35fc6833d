package currency

import "github.com/infigaming-com/currency-converter/errors"

const (
	ErrCodeUnknownCurrency = 13000 + iota
	ErrCodeAmbiguousSymbol
	ErrCodeNoCurrencies
	ErrCodeSymbolFormat
)

var (
	ErrUnknownCurrency = errors.NewError(ErrCodeUnknownCurrency, "unknown currency", nil)
	ErrAmbiguousSymbol = errors.NewError(ErrCodeAmbiguousSymbol, "symbol maps to more than one currency", nil)
	// ErrNoCurrencies means no rates were ever obtained, which in practice is
	// a connectivity failure.
	ErrNoCurrencies = errors.NewError(ErrCodeNoCurrencies, "no currencies available", nil)
	ErrSymbolFormat = errors.NewError(ErrCodeSymbolFormat, "malformed symbol record", nil)
)
