// Package errors defines the structured error type shared by the engine.
//
// Configuration failures are returned from constructors. Validation failures
// (unauthorized actions, readiness misses) travel as structured outcomes and
// only become *Error values when a caller asks for one. Remote failures are
// returned from proposals made against a remote authority.
package errors

import (
	"errors"
	"fmt"
)

// Re-exported so callers can import a single errors package.
var (
	Is = errors.Is
	As = errors.As
)

// Code classifies an engine error.
type Code string

const (
	CodeConfiguration       Code = "CONFIGURATION"
	CodeUnauthorizedAction  Code = "UNAUTHORIZED_ACTION"
	CodeReadinessValidation Code = "READINESS_VALIDATION"
	CodeStaleRemoteEvent    Code = "STALE_REMOTE_EVENT"
	CodeRemoteTimeout       Code = "REMOTE_TIMEOUT"
	CodeRemoteRejected      Code = "REMOTE_REJECTED"
	CodeTransport           Code = "TRANSPORT"
	CodeUnknownParticipant  Code = "UNKNOWN_PARTICIPANT"
)

// Error is the engine error type with structured metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithMetadata creates an error carrying metadata for user-facing messages.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates an error that wraps cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	c, ok := CodeOf(err)
	return ok && (c == CodeRemoteTimeout || c == CodeTransport)
}
