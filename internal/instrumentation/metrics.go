package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrService   = "service"
	attrOperation = "operation"
	attrResult    = "result"
	attrOutcome   = "outcome"
)

// Metrics provides methods for recording observability metrics. The
// zero value is a no-op recorder.
type Metrics struct {
	// HTTP boundary metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Remote provider metrics (Google Calendar, Todoist)
	providerOpsTotal   metric.Int64Counter
	providerOpDuration metric.Float64Histogram

	// OAuth metrics
	oauthAuthTotal    metric.Int64Counter
	tokenRefreshTotal metric.Int64Counter

	// Scheduling orchestration metrics
	scheduleOpsTotal metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments
// registered on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.providerOpsTotal, err = meter.Int64Counter(
		"provider_operations_total",
		metric.WithDescription("Total number of remote provider operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider_operations_total counter: %w", err)
	}

	m.providerOpDuration, err = meter.Float64Histogram(
		"provider_operation_duration_seconds",
		metric.WithDescription("Remote provider operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider_operation_duration_seconds histogram: %w", err)
	}

	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of OAuth authorization attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	m.tokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of silently rotated access tokens persisted"),
		metric.WithUnit("{rotation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	m.scheduleOpsTotal, err = meter.Int64Counter(
		"schedule_operations_total",
		metric.WithDescription("Total number of scheduling gestures by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule_operations_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, route
// pattern, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordProviderOperation records a remote provider call.
//
// service is the provider name ("google_calendar", "todoist"),
// operation the call type (list, get, create, update), status one of
// "success" or "error".
func (m *Metrics) RecordProviderOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m == nil || m.providerOpsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.providerOpsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.providerOpDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordOAuthAuth records an OAuth authorization attempt.
// Result should be one of: "success", "failure".
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m == nil || m.oauthAuthTotal == nil {
		return
	}

	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordTokenRefresh records a silently rotated access token being
// persisted. Result should be one of: "success", "failure".
func (m *Metrics) RecordTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.tokenRefreshTotal == nil {
		return
	}

	m.tokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordScheduleOperation records a scheduling gesture with its final
// outcome. Outcome is "settled" or "rolled_back".
func (m *Metrics) RecordScheduleOperation(ctx context.Context, operation, outcome string) {
	if m == nil || m.scheduleOpsTotal == nil {
		return
	}

	m.scheduleOpsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrOutcome, outcome),
	))
}
