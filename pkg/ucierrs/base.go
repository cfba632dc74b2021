package ucierrs

import "github.com/rs/zerolog"

// UCIError is implemented by every typed error in this package. Each one
// can be embedded in a log event with zerolog's EmbedObject.
type UCIError interface {
	error
	zerolog.LogObjectMarshaler
	Code() ErrorCode
	Category() ErrorCategory
	// SessionID is the session the error belongs to, empty when the error
	// was raised below the session (transport, validation).
	SessionID() string
	Unwrap() error
}

// BaseError holds what all typed errors share. It is embedded by value.
type BaseError struct {
	category  ErrorCategory
	code      ErrorCode
	message   string
	cause     error
	sessionID string
}

func newBase(category ErrorCategory, code ErrorCode, message string, cause error) BaseError {
	return BaseError{
		category: category,
		code:     code,
		message:  message,
		cause:    cause,
	}
}

// Error renders "category: message[: cause]".
func (e *BaseError) Error() string {
	msg := string(e.category) + ": " + e.message
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}

	return msg
}

// Code returns the error code.
func (e *BaseError) Code() ErrorCode {
	return e.code
}

// Category returns the error category.
func (e *BaseError) Category() ErrorCategory {
	return e.category
}

// SessionID returns the owning session, if known.
func (e *BaseError) SessionID() string {
	return e.sessionID
}

// Unwrap returns the cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// MarshalZerologObject writes the category, code and session.
func (e *BaseError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str(FieldCategory, string(e.category)).Str(FieldCode, string(e.code))
	if e.sessionID != "" {
		ev.Str(FieldSessionID, e.sessionID)
	}
}
