package converter

import (
	"github.com/infigaming-com/currency-converter/currency"
	"github.com/infigaming-com/currency-converter/snapshot"
	"github.com/infigaming-com/currency-converter/util"
	"github.com/shopspring/decimal"
)

const (
	RatePlaces   = 5
	AmountPlaces = 2
)

// Rate returns how many units of out one unit of in buys. Cross rates are
// triangulated through the snapshot base and rounded half up to RatePlaces.
func Rate(s *snapshot.Snapshot, in, out string) (decimal.Decimal, error) {
	if in == out {
		return decimal.NewFromInt(1), nil
	}

	outRate, ok := s.Rate(out)
	if !ok {
		return decimal.Zero, currency.ErrUnknownCurrency.Wrapf("no rate for %s", out)
	}
	if in == s.Base {
		return outRate, nil
	}

	inRate, ok := s.Rate(in)
	if !ok {
		return decimal.Zero, currency.ErrUnknownCurrency.Wrapf("no rate for %s", in)
	}
	return outRate.DivRound(inRate, RatePlaces), nil
}

// Apply converts amount at rate, rounded half up to AmountPlaces.
func Apply(amount, rate decimal.Decimal) decimal.Decimal {
	return util.RoundHalfUp(amount.Mul(rate), AmountPlaces)
}
