// Package ucierrs provides the error handling framework for the UCI adapter.
// It defines error categories, codes and typed errors so callers can tell a
// launch failure from a busy session or a malformed request without string
// matching.
package ucierrs

import "errors"

// ErrorCategory represents different categories of errors that can occur
// while driving an engine.
type ErrorCategory string

const (
	// CategorySession represents misuse of a session (busy, closed).
	CategorySession ErrorCategory = "session"
	// CategoryProtocol represents protocol-level errors.
	CategoryProtocol ErrorCategory = "protocol"
	// CategoryTransport represents transport-level errors.
	CategoryTransport ErrorCategory = "transport"
	// CategoryProcess represents engine process errors.
	CategoryProcess ErrorCategory = "process"
	// CategoryValidation represents request validation errors.
	CategoryValidation ErrorCategory = "validation"
)

// ErrorCode represents specific error codes within each category.
type ErrorCode string

// Session error codes.
const (
	ErrCodeSessionBusy   ErrorCode = "session_busy"
	ErrCodeSessionClosed ErrorCode = "session_closed"
)

// Protocol error codes.
const (
	ErrCodeLineTooLong ErrorCode = "line_too_long"
)

// Transport error codes.
const (
	ErrCodeNotConnected ErrorCode = "not_connected"
	ErrCodeReadFailed   ErrorCode = "read_failed"
	ErrCodeWriteFailed  ErrorCode = "write_failed"
	ErrCodePipeFailed   ErrorCode = "pipe_failed"
)

// Process error codes.
const (
	ErrCodeProcessNotFound    ErrorCode = "process_not_found"
	ErrCodeProcessSpawnFailed ErrorCode = "process_spawn_failed"
	ErrCodeProcessExited      ErrorCode = "process_exited"
)

// Validation error codes.
const (
	ErrCodeRangeViolation ErrorCode = "range_violation"
	ErrCodeInvalidFormat  ErrorCode = "invalid_format"
)

// Log field names. Errors write these through MarshalZerologObject and the
// session logger uses the same names, so one query finds both.
const (
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldMode      = "mode"
	FieldCategory  = "category"
	FieldCode      = "code"
)

// Sentinel errors for errors.Is checks. Typed errors carry one of these as
// their cause where it applies.
var (
	ErrBusy          = errors.New("session has a request in flight")
	ErrClosed        = errors.New("session closed")
	ErrNotConnected  = errors.New("transport not connected")
	ErrProcessExited = errors.New("engine process exited")
)
