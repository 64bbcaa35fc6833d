package converter

import (
	"context"
	"errors"
	"time"

	"github.com/infigaming-com/currency-converter/currency"
	"github.com/infigaming-com/currency-converter/observability/metrics"
	"github.com/infigaming-com/currency-converter/snapshot"
	"github.com/infigaming-com/currency-converter/util"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateStore is the part of snapshot.Store the converter needs.
type RateStore interface {
	currency.Available
	Current() *snapshot.Snapshot
	RefreshIfStale(ctx context.Context, now time.Time) error
}

// Request is one conversion. A nil OutputCurrency converts into every
// available currency.
type Request struct {
	Amount         any
	InputCurrency  string
	OutputCurrency *string
}

type Converter struct {
	lg       *zap.Logger
	store    RateStore
	resolver *currency.Resolver
	clock    func() time.Time
	recorder metrics.Recorder
}

type Option func(*Converter)

func WithClock(clock func() time.Time) Option {
	return func(c *Converter) {
		c.clock = clock
	}
}

func WithRecorder(recorder metrics.Recorder) Option {
	return func(c *Converter) {
		c.recorder = recorder
	}
}

func New(lg *zap.Logger, store RateStore, symbols *currency.SymbolTable, opts ...Option) *Converter {
	c := &Converter{
		lg:       lg,
		store:    store,
		resolver: currency.NewResolver(symbols, store),
		clock:    time.Now,
		recorder: metrics.NewNopRecorder(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert never returns an error: failures are reported in the result's
// output node with a fixed message.
func (c *Converter) Convert(ctx context.Context, req Request) *Result {
	result := c.convert(ctx, req)
	c.recorder.RecordConversion(ctx, result.Failure.String())
	return result
}

func (c *Converter) convert(ctx context.Context, req Request) *Result {
	result := &Result{
		Input: Input{Amount: req.Amount, Currency: req.InputCurrency},
	}

	input, err := c.resolver.ResolveInput(req.InputCurrency)
	if err != nil {
		return c.fail(result, err)
	}
	result.Input.Currency = input

	outputs, err := c.resolver.ResolveOutputs(input, req.OutputCurrency)
	if err != nil {
		return c.fail(result, err)
	}

	amount, err := util.NewDecimal(req.Amount)
	if err != nil {
		return c.fail(result, ErrInvalidAmount.Wrap(err))
	}

	if err := c.store.RefreshIfStale(ctx, c.clock()); err != nil {
		return c.fail(result, err)
	}
	// the refresh may have changed the available currencies
	outputs, err = c.resolver.ResolveOutputs(input, req.OutputCurrency)
	if err != nil {
		return c.fail(result, err)
	}

	current := c.store.Current()
	amounts := make(map[string]decimal.Decimal, len(outputs))
	for _, output := range outputs {
		rate, err := Rate(current, input, output)
		if err != nil {
			return c.fail(result, err)
		}
		amounts[output] = Apply(amount, rate)
	}
	result.Output = Output{Amounts: amounts}

	return result
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, currency.ErrAmbiguousSymbol):
		return KindAmbiguousSymbol
	case errors.Is(err, currency.ErrUnknownCurrency):
		return KindUnknownCurrency
	default:
		// no currencies, unreachable provider, refresh lock failures
		return KindConnection
	}
}

func (c *Converter) fail(result *Result, err error) *Result {
	kind := classify(err)
	if kind == KindConnection {
		c.lg.Warn("conversion failed", zap.Stringer("kind", kind), zap.Error(err))
	} else {
		c.lg.Debug("conversion rejected", zap.Stringer("kind", kind), zap.Error(err))
	}
	return result.fail(kind)
}
