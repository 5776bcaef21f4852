// Package common provides shared utilities for MCP tool implementations:
// argument extraction and the instrumentation wrapper every tool is registered with.
package common
