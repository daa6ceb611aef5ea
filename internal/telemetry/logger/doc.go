// Package logger provides structured logging for projconf.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, text and JSON handlers, dynamic level
//   - context.go: context propagation of the logger and resolution IDs
//   - redact.go: masking of secrets that turn up in configuration values
//
// Configuration values are logged at debug level only, and always pass
// through redaction first.
package logger
