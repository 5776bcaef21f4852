// Package instrumentation provides OpenTelemetry instrumentation for libfinder.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// LibCal API Metrics:
//   - libcal_api_requests_total: Counter of API requests by operation, status and status class
//   - libcal_api_request_duration_seconds: Histogram of API request durations
//   - libcal_api_records_total: Counter of decoded records by operation
//   - libcal_token_requests_total: Counter of client credentials token requests by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// Digest Metrics:
//   - digest_runs_total: Counter of scheduled digest runs by status
//   - digest_duration_seconds: Histogram of digest run durations
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and for every LibCal
// request (libcal.<operation>).
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: libfinder)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordAPIOperation(ctx, instrumentation.OperationEvents, 200, 12, time.Since(start))
package instrumentation
