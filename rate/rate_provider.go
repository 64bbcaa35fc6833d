package rate

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// RateTable holds the rates of every currency against Base: one unit of Base
// buys Rates[code] units of code.
type RateTable struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date,omitempty"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (t *RateTable) Currencies() []string {
	currencies := make([]string, 0, len(t.Rates))
	for currency := range t.Rates {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	return currencies
}

type RateProvider interface {
	// GetRates returns the latest rates for base. Errors match ErrProvider
	// or ErrConnection.
	GetRates(ctx context.Context, base string) (*RateTable, error)
}
