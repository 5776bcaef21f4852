// Package logging provides structured logging utilities for the libfinder application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Consistent attribute naming across the codebase
//   - Token masking for credentials
//   - An adapter that routes cron scheduler output through slog
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "finder.fetch_events")
//	logger.Info("events fetched",
//	    logging.Library(9404),
//	    logging.Status("success"))
//
// Never log credentials directly:
//
//	logger.Debug("token acquired", "token", logging.SanitizeToken(tok.AccessToken))
package logging
