// Package logging provides structured logging utilities for gqlstack components.
//
// # Overview
//
// This package wraps the standard library slog package with defaults shared by
// the compiler and CLI: JSON output to stderr, LOG_LEVEL based level selection,
// module/version attributes on every record, and source locations for debug logs.
//
// # Usage
//
// Set the default logger early in main and use slog everywhere else:
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("gqlstack", version)
//	    slog.Info("compiling api", "api", apiName)
//	}
//
// An explicit level wins over LOG_LEVEL:
//
//	logging.SetDefaultStructuredLoggerWithLevel("gqlstack", version, "debug")
//
// Supported levels (case-insensitive): debug, info (default), warn/warning, error.
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "bundle written",
//	    "module": "gqlstack",
//	    "version": "v1.0.0",
//	    "files": 12
//	}
//
// This package is used by pkg/cli, pkg/stack, pkg/override, pkg/merge and
// pkg/mapping.
package logging
