package converter

import (
	"encoding/json"
	"fmt"

	"github.com/infigaming-com/currency-converter/util"
	"github.com/shopspring/decimal"
)

// Kind classifies a failed conversion. Each kind has one fixed message.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidAmount
	KindUnknownCurrency
	KindAmbiguousSymbol
	KindConnection
)

var kindMessages = map[Kind]string{
	KindInvalidAmount:   "Conversion error, check the input parameters",
	KindUnknownCurrency: "Conversion error, the currency can't be recognized",
	KindAmbiguousSymbol: "Conversion error, the input symbol represents more than one currency, try to use 3-letter currency code",
	KindConnection:      "Connection error!",
}

var kindNames = map[Kind]string{
	KindNone:            "ok",
	KindInvalidAmount:   "invalid_amount",
	KindUnknownCurrency: "unknown_currency",
	KindAmbiguousSymbol: "ambiguous_symbol",
	KindConnection:      "connection",
}

// Message is the user facing text of k, empty for KindNone.
func (k Kind) Message() string {
	return kindMessages[k]
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

type Input struct {
	Amount   any    `json:"amount"`
	Currency string `json:"currency"`
}

func (i Input) MarshalJSON() ([]byte, error) {
	type input struct {
		Amount   any    `json:"amount"`
		Currency string `json:"currency"`
	}
	amount := i.Amount
	switch i.Amount.(type) {
	case decimal.Decimal, *decimal.Decimal:
		if d, err := util.NewDecimal(i.Amount); err == nil {
			amount = json.Number(d.String())
		}
	}
	data, err := json.Marshal(input{Amount: amount, Currency: i.Currency})
	if err != nil {
		// NaN, channels and the like are echoed as text
		return json.Marshal(input{Amount: fmt.Sprint(i.Amount), Currency: i.Currency})
	}
	return data, nil
}

// Output holds either the converted amounts or the failure message.
type Output struct {
	Amounts map[string]decimal.Decimal
	Error   string
}

func (o Output) MarshalJSON() ([]byte, error) {
	if o.Error != "" {
		return json.Marshal(map[string]string{"error": o.Error})
	}
	amounts := make(map[string]json.Number, len(o.Amounts))
	for currency, amount := range o.Amounts {
		amounts[currency] = json.Number(amount.String())
	}
	return json.Marshal(amounts)
}

type Result struct {
	Input   Input  `json:"input"`
	Output  Output `json:"output"`
	Failure Kind   `json:"-"`
}

func (r *Result) Failed() bool {
	return r.Failure != KindNone
}

func (r *Result) fail(kind Kind) *Result {
	r.Failure = kind
	r.Output = Output{Error: kind.Message()}
	return r
}

// Stringify renders r as indented JSON with sorted keys.
func (r *Result) Stringify() string {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
