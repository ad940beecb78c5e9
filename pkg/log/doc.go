// Package log provides structured lifecycle logging for feedmux.
//
// This package defines the Logger interface and the Event type for
// capturing registry lifecycle events: observer attach/detach,
// subscription start, teardown, and global clears. It is separate from
// operational logging (slog) - lifecycle capture provides a complete
// machine-readable trace of every ref-count transition for debugging
// leak and double-teardown reports.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary capture file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/feedmux/registry.flog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/feedmux/registry.flog"),
//	)
//
// # Event Types
//
// Every event carries the registry ID, the subscription key, the
// operation (attach, start, detach, teardown, clear) and the observer
// count after the operation. Start failures carry the error text.
//
// # File Format
//
// Capture files use CBOR encoding with .flog extension. Reader provides
// streaming access with filtering by key, operation, and time range.
package log
