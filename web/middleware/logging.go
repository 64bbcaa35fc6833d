package middleware

import (
	"bytes"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/infigaming-com/currency-converter/util"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type loggingMiddlewareOptions struct {
	lg           *zap.Logger
	debugEnabled bool
	excludePaths []string
	bodyLimit    int
}

type LoggingMiddlewareOption func(*loggingMiddlewareOptions)

func WithLogger(lg *zap.Logger) LoggingMiddlewareOption {
	return func(o *loggingMiddlewareOptions) {
		o.lg = lg
	}
}

// WithDebugEnabled adds headers and the response body to each access log.
func WithDebugEnabled(debugEnabled bool) LoggingMiddlewareOption {
	return func(o *loggingMiddlewareOptions) {
		o.debugEnabled = debugEnabled
	}
}

func WithExcludePaths(excludePaths []string) LoggingMiddlewareOption {
	return func(o *loggingMiddlewareOptions) {
		o.excludePaths = excludePaths
	}
}

func WithBodyLimit(limit int) LoggingMiddlewareOption {
	return func(o *loggingMiddlewareOptions) {
		o.bodyLimit = limit
	}
}

func defaultLoggingMiddlewareOptions() *loggingMiddlewareOptions {
	return &loggingMiddlewareOptions{
		lg:           zap.L(),
		debugEnabled: false,
		excludePaths: []string{"/", "/healthcheck"},
		bodyLimit:    1024,
	}
}

// LoggingMiddleware writes one access log per request. It must run after
// CorrelationIdMiddleware to log the request's correlation id.
func LoggingMiddleware(opts ...LoggingMiddlewareOption) gin.HandlerFunc {
	cfg := defaultLoggingMiddlewareOptions()

	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		if lo.Contains(cfg.excludePaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		correlationId := util.CorrelationIdFromCtxOrNew(c.Request.Context())
		startTime := time.Now()

		var rw *responseWriter
		if cfg.debugEnabled {
			rw = &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}, limit: cfg.bodyLimit}
			c.Writer = rw
		}

		c.Next()

		fields := []zap.Field{
			zap.String("correlationId", correlationId),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Any("queryParams", c.Request.URL.Query()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startTime)),
		}
		if rw != nil {
			fields = append(fields,
				zap.Any("requestHeaders", c.Request.Header),
				zap.ByteString("responseBody", rw.body.Bytes()),
			)
		}
		cfg.lg.Info("[HTTP-ACCESS]", fields...)
	}
}
