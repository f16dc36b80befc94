// Package errors provides domain-specific errors for the syncdeck client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotRetryable       = errors.New("session is not retryable")
	ErrAlreadyRetried     = errors.New("session has already been retried")
	ErrSyncInFlight       = errors.New("a sync is already in flight for this target")
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrBackendUnreachable = errors.New("backend unreachable")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation  ErrorCode = "VALIDATION"  // Rejected before any bridge call
	CodeNotFound    ErrorCode = "NOT_FOUND"   // Identity did not resolve
	CodeEligibility ErrorCode = "ELIGIBILITY" // Domain-invariant violation (e.g. retry gate)
	CodeBridge      ErrorCode = "BRIDGE"      // Transport failure from the RPC bridge
	CodeConfig      ErrorCode = "CONFIG"      // Configuration problem
)

// SyncdeckError wraps errors with a code and message for handling at the
// presentation layer. Nothing at this layer is fatal: every error reduces
// to a user-visible message or a disabled control.
type SyncdeckError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns a formatted error string including code, message, and
// cause if present.
func (e *SyncdeckError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *SyncdeckError) Unwrap() error {
	return e.Cause
}

// NewError creates a new SyncdeckError with the given code, message, and
// optional cause.
func NewError(code ErrorCode, message string, cause error) *SyncdeckError {
	return &SyncdeckError{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the ErrorCode from err, or empty when err carries none.
func CodeOf(err error) ErrorCode {
	var se *SyncdeckError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// Is reports whether err matches target using errors.Is semantics.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
