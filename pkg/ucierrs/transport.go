package ucierrs

// TransportError reports a failed read or write on the engine pipes.
type TransportError struct {
	BaseError
}

// NewTransportError creates a transport error.
func NewTransportError(code ErrorCode, message string, cause error) *TransportError {
	return &TransportError{BaseError: newBase(CategoryTransport, code, message, cause)}
}
