// Package domain defines the core domain models for projconf.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
// Codes have the form PC-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "PC-LOAD-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Loader Errors (LOAD)
// ============================================================================

var (
	// ErrConfigFileNotFound indicates an explicitly named config file does not exist.
	ErrConfigFileNotFound = NewDomainError("PC-LOAD-4040", "config file not found")

	// ErrConfigFileRead indicates a config file exists but could not be read.
	ErrConfigFileRead = NewDomainError("PC-LOAD-5001", "config file read failed")

	// ErrConfigFileParse indicates a config file could not be parsed.
	ErrConfigFileParse = NewDomainError("PC-LOAD-4001", "config file parse failed")

	// ErrEnvLoad indicates environment overrides could not be loaded.
	ErrEnvLoad = NewDomainError("PC-LOAD-5002", "environment load failed")
)

// ============================================================================
// Glob Errors (GLOB)
// ============================================================================

var (
	// ErrInvalidPattern indicates a wildcard level pattern is not supported.
	ErrInvalidPattern = NewDomainError("PC-GLOB-4000", "invalid wildcard pattern")

	// ErrGlobFailed indicates directory listing failed during wildcard expansion.
	ErrGlobFailed = NewDomainError("PC-GLOB-5000", "wildcard expansion failed")
)

// ============================================================================
// Option Errors (OPTS)
// ============================================================================

var (
	// ErrInvalidOptions indicates the resolver options failed validation.
	ErrInvalidOptions = NewDomainError("PC-OPTS-4000", "invalid options")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("PC-OPTS-4001", "invalid argument")
)
