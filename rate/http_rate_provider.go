package rate

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/infigaming-com/currency-converter/request"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const latestPath = "/latest"

type httpRateProvider struct {
	lg             *zap.Logger
	baseUrl        string
	accessKey      string
	requestTimeout time.Duration
	maxRetries     int
	recorder       request.RequestRecorder
	requestOptions []request.Option
}

type Option func(*httpRateProvider)

func WithAccessKey(accessKey string) Option {
	return func(p *httpRateProvider) {
		p.accessKey = accessKey
	}
}

func WithRequestTimeout(requestTimeout time.Duration) Option {
	return func(p *httpRateProvider) {
		p.requestTimeout = requestTimeout
	}
}

func WithMaxRetries(maxRetries int) Option {
	return func(p *httpRateProvider) {
		p.maxRetries = maxRetries
	}
}

func WithRequestRecorder(recorder request.RequestRecorder) Option {
	return func(p *httpRateProvider) {
		p.recorder = recorder
	}
}

// WithRequestOptions appends raw request options, applied after the
// provider's own.
func WithRequestOptions(options ...request.Option) Option {
	return func(p *httpRateProvider) {
		p.requestOptions = append(p.requestOptions, options...)
	}
}

type latestRatesResponse struct {
	Success *bool                      `json:"success"`
	Base    string                     `json:"base"`
	Date    string                     `json:"date"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   json.RawMessage            `json:"error,omitempty"`
}

// NewHTTPRateProvider talks to a fixer.io style API:
// GET {baseUrl}/latest?base=EUR[&access_key=KEY].
func NewHTTPRateProvider(lg *zap.Logger, baseUrl string, opts ...Option) RateProvider {
	p := &httpRateProvider{
		lg:             lg,
		baseUrl:        strings.TrimRight(baseUrl, "/"),
		requestTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *httpRateProvider) GetRates(ctx context.Context, base string) (*RateTable, error) {
	queryParams := map[string]string{"base": base}
	if p.accessKey != "" {
		queryParams["access_key"] = p.accessKey
	}
	options := []request.Option{
		request.WithLogger(p.lg),
		request.WithQueryParams(queryParams),
		request.WithRequestHeaders(map[string]string{"Accept": "application/json"}),
		request.WithRequestTimeout(p.requestTimeout),
		request.WithRetry(p.maxRetries),
	}
	if p.recorder != nil {
		options = append(options, request.WithRequestRecorder(p.recorder))
	}
	options = append(options, p.requestOptions...)

	resp, err := request.Get(ctx, p.baseUrl+latestPath, options...)
	if err != nil {
		return nil, ErrConnection.Wrap(err)
	}

	if isHTML(resp.ContentType()) {
		return nil, ErrProvider.Wrapf("unexpected content type %q", resp.ContentType())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrProvider.Wrapf("status code: %d, response: %s", resp.StatusCode, truncate(resp.Body, 256))
	}

	var payload latestRatesResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, ErrProvider.Wrap(fmt.Errorf("failed to decode rates: %w", err))
	}
	if payload.Success != nil && !*payload.Success {
		return nil, ErrProvider.Wrapf("unsuccessful response: %s", string(payload.Error))
	}

	table := &RateTable{
		Base:  base,
		Date:  payload.Date,
		Rates: make(map[string]decimal.Decimal, len(payload.Rates)),
	}
	if payload.Base != "" && payload.Base != base {
		return nil, ErrProvider.Wrapf("rates quoted against %s, want %s", payload.Base, base)
	}
	for currency, value := range payload.Rates {
		if !value.IsPositive() {
			p.lg.Warn("skipping non-positive rate", zap.String("currency", currency), zap.Stringer("rate", value))
			continue
		}
		table.Rates[currency] = value
	}
	if len(table.Rates) == 0 {
		return nil, ErrProvider.Wrapf("no rates in response")
	}

	return table, nil
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/html")
	}
	return mediaType == "text/html"
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
