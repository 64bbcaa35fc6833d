package snapshot

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/infigaming-com/currency-converter/rate"
	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency every stored rate is quoted against.
const BaseCurrency = "EUR"

// Snapshot is one rate table as fetched from the provider. A snapshot is
// never mutated once built; refreshes replace it wholesale.
type Snapshot struct {
	FetchedAt *time.Time                 `json:"fetched_at"`
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

// Empty is the snapshot of a converter that never obtained rates.
func Empty() *Snapshot {
	return &Snapshot{
		Base:  BaseCurrency,
		Rates: map[string]decimal.Decimal{},
	}
}

func fromRateTable(table *rate.RateTable, fetchedAt time.Time) *Snapshot {
	rates := make(map[string]decimal.Decimal, len(table.Rates)+1)
	for currency, value := range table.Rates {
		rates[currency] = value
	}
	rates[BaseCurrency] = decimal.NewFromInt(1)
	return &Snapshot{
		FetchedAt: &fetchedAt,
		Base:      BaseCurrency,
		Rates:     rates,
	}
}

func (s *Snapshot) IsEmpty() bool {
	return s == nil || s.FetchedAt == nil || len(s.Rates) == 0
}

// Currencies returns the sorted codes the snapshot has a rate for.
func (s *Snapshot) Currencies() []string {
	if s == nil {
		return []string{}
	}
	currencies := make([]string, 0, len(s.Rates))
	for currency := range s.Rates {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	return currencies
}

func (s *Snapshot) Rate(currency string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	value, ok := s.Rates[currency]
	return value, ok
}

// newer reports whether s was fetched after other.
func (s *Snapshot) newer(other *Snapshot) bool {
	if s.IsEmpty() {
		return false
	}
	if other.IsEmpty() {
		return true
	}
	return s.FetchedAt.After(*other.FetchedAt)
}

func (s *Snapshot) validate() error {
	if s.Base != BaseCurrency {
		return ErrSnapshotCorrupt.Wrapf("base %q, want %s", s.Base, BaseCurrency)
	}
	if s.FetchedAt == nil {
		return nil
	}
	if len(s.Rates) == 0 {
		return ErrSnapshotCorrupt.Wrapf("fetched snapshot without rates")
	}
	if _, ok := s.Rates[BaseCurrency]; !ok {
		return ErrSnapshotCorrupt.Wrapf("base currency missing from rates")
	}
	for currency, value := range s.Rates {
		if !value.IsPositive() {
			return ErrSnapshotCorrupt.Wrapf("non-positive rate for %s", currency)
		}
	}
	return nil
}

func decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, ErrSnapshotCorrupt.Wrap(err)
	}
	return checked(&s)
}

// checked validates a freshly unmarshalled snapshot.
func checked(s *Snapshot) (*Snapshot, error) {
	if s.Rates == nil {
		s.Rates = map[string]decimal.Decimal{}
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func encode(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, ErrStorage.Wrap(err)
	}
	return data, nil
}
