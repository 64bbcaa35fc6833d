package currency

import (
	"sort"
	"strings"

	"github.com/infigaming-com/currency-converter/util"
)

// Available lists the currency codes that currently have a rate.
type Available interface {
	AvailableCurrencies() []string
}

// Resolver turns user supplied currency tokens into known codes. Input
// symbols must be unambiguous; output symbols fan out to every code they
// stand for.
type Resolver struct {
	symbols   *SymbolTable
	available Available
}

func NewResolver(symbols *SymbolTable, available Available) *Resolver {
	if symbols == nil {
		symbols = NewSymbolTable()
	}
	return &Resolver{
		symbols:   symbols,
		available: available,
	}
}

func (r *Resolver) known() (map[string]struct{}, []string) {
	currencies := r.available.AvailableCurrencies()
	set := make(map[string]struct{}, len(currencies))
	for _, currency := range currencies {
		set[currency] = struct{}{}
	}
	return set, currencies
}

// ResolveInput returns the single code raw denotes.
func (r *Resolver) ResolveInput(raw string) (string, error) {
	known, _ := r.known()
	if len(known) == 0 {
		return "", ErrNoCurrencies
	}

	token := strings.TrimSpace(raw)
	if codes, ok := r.symbols.Lookup(token); ok {
		if len(codes) > 1 {
			return "", ErrAmbiguousSymbol.Wrapf("%q: %s", token, strings.Join(codes, ", "))
		}
		if len(codes) == 0 {
			return "", ErrUnknownCurrency.Wrapf("%q", token)
		}
		if _, ok := known[codes[0]]; !ok {
			return "", ErrUnknownCurrency.Wrapf("%q maps to unavailable %s", token, codes[0])
		}
		return codes[0], nil
	}

	code := util.NormalizeCurrencyCode(token)
	if _, ok := known[code]; ok {
		return code, nil
	}
	return "", ErrUnknownCurrency.Wrapf("%q", token)
}

// ResolveOutputs returns the target codes for an already resolved input. A
// nil raw means every available code except input.
func (r *Resolver) ResolveOutputs(input string, raw *string) ([]string, error) {
	known, currencies := r.known()

	if raw == nil {
		outputs := make([]string, 0, len(currencies))
		for _, currency := range currencies {
			if currency != input {
				outputs = append(outputs, currency)
			}
		}
		sort.Strings(outputs)
		return outputs, nil
	}

	token := strings.TrimSpace(*raw)
	if codes, ok := r.symbols.Lookup(token); ok {
		outputs := make([]string, 0, len(codes))
		for _, code := range codes {
			if code == input {
				continue
			}
			if _, ok := known[code]; ok {
				outputs = append(outputs, code)
			}
		}
		return outputs, nil
	}

	code := util.NormalizeCurrencyCode(token)
	if _, ok := known[code]; ok {
		return []string{code}, nil
	}
	return nil, ErrUnknownCurrency.Wrapf("%q", token)
}
