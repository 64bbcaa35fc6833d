package util

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// NewDecimal converts a numeric Go value into a decimal. Integer and float
// kinds, decimals and json.Number are accepted. Strings, booleans, nil and
// non-finite floats are rejected with ErrNotNumeric: callers that hold text
// must parse it themselves.
func NewDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, ErrNotNumeric.Wrapf("nil decimal")
		}
		return *v, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, ErrNotNumeric.Wrap(err)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint64:
		return decimal.NewFromUint64(v), nil
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return decimal.Zero, ErrNotNumeric.Wrapf("non-finite float %v", v)
		}
		return decimal.NewFromFloat32(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, ErrNotNumeric.Wrapf("non-finite float %v", v)
		}
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, ErrNotNumeric.Wrap(fmt.Errorf("unsupported type %T", value))
	}
}

// RoundHalfUp rounds d to places decimal places, halves away from zero.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}
