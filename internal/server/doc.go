// Package server holds the shared MCP server context and the HTTP side of the
// streamable-http transport.
//
// ServerContext carries the finder and the optional instrumentation to every tool
// handler. It is read-only after construction apart from its shutdown flag.
//
// The HTTP transport is a gorilla/mux router with:
//   - /mcp, the MCP streamable HTTP endpoint
//   - /healthz, /readyz and /healthz/detailed for probes
//
// Prometheus metrics are served by MetricsServer on a separate listener.
package server
