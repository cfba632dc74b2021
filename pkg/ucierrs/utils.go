package ucierrs

import "errors"

// AsUCIError extracts a UCIError from the error chain.
func AsUCIError(err error) (UCIError, bool) {
	var uciErr UCIError
	if errors.As(err, &uciErr) {
		return uciErr, true
	}

	return nil, false
}

func hasCategory(err error, category ErrorCategory) bool {
	if uciErr, ok := AsUCIError(err); ok {
		return uciErr.Category() == category
	}

	return false
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code ErrorCode) bool {
	if uciErr, ok := AsUCIError(err); ok {
		return uciErr.Code() == code
	}

	return false
}

// IsSessionError checks if the error is a session error.
func IsSessionError(err error) bool {
	return hasCategory(err, CategorySession)
}

// IsTransportError checks if the error is a transport error.
func IsTransportError(err error) bool {
	return hasCategory(err, CategoryTransport)
}

// IsProcessError checks if the error is a process error.
func IsProcessError(err error) bool {
	return hasCategory(err, CategoryProcess)
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	return hasCategory(err, CategoryValidation)
}

// IsBusy reports whether err was caused by a request issued while another
// one was still in flight.
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}
