package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod      = "method"
	attrPath        = "path"
	attrStatus      = "status"
	attrOperation   = "operation"
	attrStatusClass = "status_class"
	attrStatusCode  = "status_code"
	attrResult      = "result"
	attrTool        = "tool"
)

// Metrics provides methods for recording observability metrics.
// A zero Metrics is a valid no-op recorder.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// LibCal API metrics
	apiRequestsTotal   metric.Int64Counter
	apiRequestDuration metric.Float64Histogram
	tokenRequestsTotal metric.Int64Counter
	apiRecordsReceived metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Digest metrics
	digestRunsTotal metric.Int64Counter
	digestDuration  metric.Float64Histogram

	// detailedLabels adds the exact status code to API metrics
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
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

	// LibCal API Metrics
	m.apiRequestsTotal, err = meter.Int64Counter(
		"libcal_api_requests_total",
		metric.WithDescription("Total number of LibCal API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create libcal_api_requests_total counter: %w", err)
	}

	m.apiRequestDuration, err = meter.Float64Histogram(
		"libcal_api_request_duration_seconds",
		metric.WithDescription("LibCal API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create libcal_api_request_duration_seconds histogram: %w", err)
	}

	m.tokenRequestsTotal, err = meter.Int64Counter(
		"libcal_token_requests_total",
		metric.WithDescription("Total number of client credentials token requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create libcal_token_requests_total counter: %w", err)
	}

	m.apiRecordsReceived, err = meter.Int64Counter(
		"libcal_api_records_total",
		metric.WithDescription("Total number of records decoded from LibCal responses"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create libcal_api_records_total counter: %w", err)
	}

	// MCP Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	// Digest Metrics
	m.digestRunsTotal, err = meter.Int64Counter(
		"digest_runs_total",
		metric.WithDescription("Total number of digest runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest_runs_total counter: %w", err)
	}

	m.digestDuration, err = meter.Float64Histogram(
		"digest_duration_seconds",
		metric.WithDescription("Digest run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAPIOperation records one LibCal API request.
//
// Parameters:
//   - operation: upstream operation (events, bookings, spaces)
//   - statusCode: HTTP status code of the response, 0 when no response arrived
//   - records: number of records decoded from the response
//   - duration: time taken for the request
func (m *Metrics) RecordAPIOperation(ctx context.Context, operation string, statusCode, records int, duration time.Duration) {
	if m == nil || m.apiRequestsTotal == nil || m.apiRequestDuration == nil {
		return // Instrumentation not initialized
	}

	status := StatusSuccess
	if statusCode < 200 || statusCode > 299 {
		status = StatusError
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
		attribute.String(attrStatusClass, StatusClass(statusCode)),
	}
	if m.detailedLabels && statusCode != 0 {
		attrs = append(attrs, attribute.Int(attrStatusCode, statusCode))
	}

	m.apiRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.apiRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if records > 0 && m.apiRecordsReceived != nil {
		m.apiRecordsReceived.Add(ctx, int64(records),
			metric.WithAttributes(attribute.String(attrOperation, operation)))
	}
}

// RecordTokenRequest records a client credentials token request.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordTokenRequest(ctx context.Context, result string) {
	if m == nil || m.tokenRequestsTotal == nil {
		return // Instrumentation not initialized
	}

	m.tokenRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "libcal_find_events")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordDigestRun records a completed digest run.
func (m *Metrics) RecordDigestRun(ctx context.Context, status string, duration time.Duration) {
	if m == nil || m.digestRunsTotal == nil || m.digestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, status))
	m.digestRunsTotal.Add(ctx, 1, attrs)
	m.digestDuration.Record(ctx, duration.Seconds(), attrs)
}
