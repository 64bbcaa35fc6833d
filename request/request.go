package request

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/infigaming-com/currency-converter/util"
	"go.uber.org/zap"
)

var (
	httpClient *http.Client
	once       sync.Once
)

// Response is what a successful round trip produced. Non-2xx status codes are
// not errors at this layer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// DefaultRetryBackoff is the base delay between retry attempts.
const DefaultRetryBackoff = time.Second

type requestOption struct {
	lg                   *zap.Logger
	debugEnabled         bool
	client               *http.Client
	queryParams          map[string]string
	requestHeaders       map[string]string
	recorder             RequestRecorder
	correlationIdKey     string
	correlationId        string
	requestTimeout       time.Duration
	slowRequestThreshold time.Duration
	maxRetries           int
	retryBackoff         time.Duration
}

type Option interface {
	apply(option *requestOption) error
}

type optionFunc func(option *requestOption) error

func (f optionFunc) apply(option *requestOption) error {
	return f(option)
}

func defaultRequestOption() *requestOption {
	return &requestOption{
		lg:                   zap.L(),
		debugEnabled:         false,
		queryParams:          make(map[string]string),
		requestHeaders:       make(map[string]string),
		recorder:             nil,
		correlationIdKey:     "X-Correlation-ID",
		correlationId:        "",
		requestTimeout:       3 * time.Second,
		slowRequestThreshold: 5 * time.Second,
		retryBackoff:         DefaultRetryBackoff,
	}
}

func WithLogger(lg *zap.Logger) Option {
	return optionFunc(func(option *requestOption) error {
		option.lg = lg
		return nil
	})
}

func WithDebugEnabled(debugEnabled bool) Option {
	return optionFunc(func(option *requestOption) error {
		option.debugEnabled = debugEnabled
		return nil
	})
}

// WithHttpClient replaces the shared client, mostly for tests.
func WithHttpClient(client *http.Client) Option {
	return optionFunc(func(option *requestOption) error {
		option.client = client
		return nil
	})
}

func WithQueryParams(queryParams map[string]string) Option {
	return optionFunc(func(option *requestOption) error {
		maps.Copy(option.queryParams, queryParams)
		return nil
	})
}

func WithRequestHeaders(requestHeaders map[string]string) Option {
	return optionFunc(func(option *requestOption) error {
		maps.Copy(option.requestHeaders, requestHeaders)
		return nil
	})
}

func WithCorrelationId(correlationIdKey, correlationId string) Option {
	return optionFunc(func(option *requestOption) error {
		option.correlationIdKey = correlationIdKey
		option.correlationId = correlationId
		return nil
	})
}

func WithRequestRecorder(requestRecorder RequestRecorder) Option {
	return optionFunc(func(option *requestOption) error {
		option.recorder = requestRecorder
		return nil
	})
}

func WithRequestTimeout(requestTimeout time.Duration) Option {
	return optionFunc(func(option *requestOption) error {
		if requestTimeout > 0 {
			option.requestTimeout = requestTimeout
		}
		return nil
	})
}

func WithSlowRequestThreshold(slowRequestThreshold time.Duration) Option {
	return optionFunc(func(option *requestOption) error {
		if slowRequestThreshold <= 0 {
			return ErrInvalidSlowRequestThreshold.Wrapf("%v", slowRequestThreshold)
		}
		option.slowRequestThreshold = slowRequestThreshold
		return nil
	})
}

// WithRetry enables up to maxRetries extra attempts on transport errors.
// HTTP responses are never retried, whatever their status.
func WithRetry(maxRetries int) Option {
	return optionFunc(func(option *requestOption) error {
		if maxRetries < 0 {
			maxRetries = 0
		}
		option.maxRetries = maxRetries
		return nil
	})
}

// WithRetryBackoff sets the base delay between attempts; attempt n waits
// (n-1) times the base.
func WithRetryBackoff(retryBackoff time.Duration) Option {
	return optionFunc(func(option *requestOption) error {
		if retryBackoff >= 0 {
			option.retryBackoff = retryBackoff
		}
		return nil
	})
}

func getHttpClient() *http.Client {
	once.Do(func() {
		httpClient = &http.Client{
			Timeout: 0,
		}
	})
	return httpClient
}

func (o *requestOption) httpClient() *http.Client {
	if o.client != nil {
		return o.client
	}
	return getHttpClient()
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func Request(ctx context.Context, method string, requestUrl string, options ...Option) (resp *Response, err error) {
	start := time.Now()

	option := defaultRequestOption()
	for _, opt := range options {
		if err := opt.apply(option); err != nil {
			return nil, err
		}
	}

	defer func() {
		httpStatusCode := 0
		var contentType string
		var responseBody []byte
		if resp != nil {
			httpStatusCode = resp.StatusCode
			contentType = resp.ContentType()
			responseBody = resp.Body
		}

		if option.recorder != nil {
			queryParams, _ := json.Marshal(option.queryParams)
			requestHeaders, _ := json.Marshal(option.requestHeaders)
			errorStr := ""
			if err != nil {
				errorStr = err.Error()
			}
			option.recorder(&RequestRecordData{
				Method:         method,
				Url:            requestUrl,
				QueryParams:    string(queryParams),
				RequestHeaders: string(requestHeaders),
				HttpStatusCode: httpStatusCode,
				ContentType:    contentType,
				ResponseBody:   string(responseBody),
				Error:          errorStr,
				Duration:       time.Since(start).Milliseconds(),
			})
		}

		if err != nil {
			option.lg.Error("[HTTP-REQUEST-ERROR]",
				zap.Error(err),
				zap.String("method", method),
				zap.String("url", requestUrl),
				zap.Any("queryParams", option.queryParams),
				zap.Duration("duration", time.Since(start)),
			)
			return
		}

		if option.debugEnabled {
			option.lg.Debug("[HTTP-REQUEST-DEBUG]",
				zap.String("method", method),
				zap.String("url", requestUrl),
				zap.Any("queryParams", option.queryParams),
				zap.Any("requestHeaders", option.requestHeaders),
				zap.Int("httpStatusCode", httpStatusCode),
				zap.String("contentType", contentType),
				zap.ByteString("responseBody", responseBody),
				zap.Duration("duration", time.Since(start)),
			)
		}
	}()

	maxAttempts := option.maxRetries + 1
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt-1) * option.retryBackoff
			option.lg.Info("[HTTP-REQUEST-RETRY]",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
				zap.Duration("backoff", backoff),
				zap.String("method", method),
				zap.String("url", requestUrl),
			)

			select {
			case <-ctx.Done():
				return nil, ErrTransport.Wrap(ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err = doRequest(ctx, method, requestUrl, option)
		if err == nil {
			return resp, nil
		}

		if !isRetryableError(err) || attempt == maxAttempts {
			break
		}

		option.lg.Warn("[HTTP-REQUEST-RETRYABLE-ERROR]",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
			zap.String("method", method),
			zap.String("url", requestUrl),
		)
	}

	return nil, err
}

func doRequest(ctx context.Context, method string, requestUrl string, option *requestOption) (*Response, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, option.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, method, requestUrl, nil)
	if err != nil {
		return nil, ErrFailedToCreateRequest.Wrap(err)
	}

	query := req.URL.Query()
	for k, v := range option.queryParams {
		query.Add(k, v)
	}
	req.URL.RawQuery = query.Encode()

	if option.correlationIdKey != "" {
		correlationId := option.correlationId
		if correlationId == "" {
			correlationId = util.CorrelationIdFromCtxOrNew(ctx)
		}
		req.Header.Add(option.correlationIdKey, correlationId)
	}

	for k, v := range option.requestHeaders {
		req.Header.Add(k, v)
	}

	requestStart := time.Now()
	httpResp, err := option.httpClient().Do(req)
	if err != nil {
		return nil, ErrTransport.Wrap(err)
	}
	defer httpResp.Body.Close()

	responseBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, ErrFailedToReadResponseBody.Wrap(err)
	}
	requestDuration := time.Since(requestStart)

	if requestDuration > option.slowRequestThreshold {
		option.lg.Warn("[HTTP-REQUEST-SLOW]",
			zap.String("method", method),
			zap.String("url", requestUrl),
			zap.Any("queryParams", option.queryParams),
			zap.Int("httpStatusCode", httpResp.StatusCode),
			zap.Duration("duration", requestDuration),
		)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       responseBody,
	}, nil
}

func Get(ctx context.Context, requestUrl string, options ...Option) (*Response, error) {
	return Request(ctx, http.MethodGet, requestUrl, options...)
}
