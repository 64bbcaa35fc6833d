package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	ConversionsMetric        = "currency_converter.conversions"
	RefreshDurationMetric    = "currency_converter.refresh.duration"
	ProviderRequestsMetric   = "currency_converter.provider.requests"
	ProviderRequestLatMetric = "currency_converter.provider.request.duration"
)

// Refresh results.
const (
	RefreshFetched  = "fetched"
	RefreshAdopted  = "adopted"
	RefreshFallback = "fallback"
	RefreshFailed   = "failed"
)

// Recorder receives the converter's domain events. Implementations must be
// safe for concurrent use.
type Recorder interface {
	// RecordConversion counts one Convert call; outcome is "ok" or the
	// failure kind.
	RecordConversion(ctx context.Context, outcome string)
	RecordRefresh(ctx context.Context, result string, duration time.Duration)
	// RecordProviderRequest counts one provider round trip. statusCode is
	// zero when no response arrived.
	RecordProviderRequest(ctx context.Context, statusCode int, duration time.Duration)
}

type nopRecorder struct{}

func NewNopRecorder() Recorder {
	return nopRecorder{}
}

func (nopRecorder) RecordConversion(context.Context, string) {}

func (nopRecorder) RecordRefresh(context.Context, string, time.Duration) {}

func (nopRecorder) RecordProviderRequest(context.Context, int, time.Duration) {}

type otelRecorder struct {
	conversions      metric.Int64Counter
	refreshDuration  metric.Float64Histogram
	providerRequests metric.Int64Counter
	providerLatency  metric.Float64Histogram
}

func NewRecorder(meter metric.Meter) (Recorder, error) {
	conversions, err := meter.Int64Counter(ConversionsMetric,
		metric.WithDescription("Conversion requests by outcome"),
		metric.WithUnit("{conversion}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	refreshDuration, err := meter.Float64Histogram(RefreshDurationMetric,
		metric.WithDescription("Time spent refreshing the rate snapshot"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}
	providerRequests, err := meter.Int64Counter(ProviderRequestsMetric,
		metric.WithDescription("Requests sent to the rate provider"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	providerLatency, err := meter.Float64Histogram(ProviderRequestLatMetric,
		metric.WithDescription("Rate provider round trip time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}

	return &otelRecorder{
		conversions:      conversions,
		refreshDuration:  refreshDuration,
		providerRequests: providerRequests,
		providerLatency:  providerLatency,
	}, nil
}

func (r *otelRecorder) RecordConversion(ctx context.Context, outcome string) {
	r.conversions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (r *otelRecorder) RecordRefresh(ctx context.Context, result string, duration time.Duration) {
	r.refreshDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("result", result)))
}

func (r *otelRecorder) RecordProviderRequest(ctx context.Context, statusCode int, duration time.Duration) {
	status := "error"
	if statusCode != 0 {
		status = strconv.Itoa(statusCode)
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	r.providerRequests.Add(ctx, 1, attrs)
	r.providerLatency.Record(ctx, duration.Seconds(), attrs)
}
