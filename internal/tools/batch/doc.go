// Package batch runs a tool operation over several libraries and reports the
// outcome of each one.
//
// This package includes helpers for:
//   - Parsing parameters that accept both a single value and an array
//   - Processing items in order, recording recoverable failures as skipped
//   - Formatting the per-item results as a JSON summary
//
// A fatal error stops the batch; results gathered so far are discarded.
package batch
