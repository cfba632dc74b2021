package ucierrs

import "github.com/rs/zerolog"

// ValidationError reports a request or setting rejected before anything
// was sent to the engine.
type ValidationError struct {
	BaseError
	field string
	value any
}

// NewValidationError creates a validation error for field.
func NewValidationError(
	code ErrorCode,
	message string,
	cause error,
	field string,
	value any,
) *ValidationError {
	return &ValidationError{
		BaseError: newBase(CategoryValidation, code, message, cause),
		field:     field,
		value:     value,
	}
}

// Field returns the rejected field name.
func (e *ValidationError) Field() string {
	return e.field
}

// Value returns the rejected value.
func (e *ValidationError) Value() any {
	return e.value
}

// MarshalZerologObject adds the field and value.
func (e *ValidationError) MarshalZerologObject(ev *zerolog.Event) {
	e.BaseError.MarshalZerologObject(ev)
	ev.Str("field", e.field).Interface("value", e.value)
}
