package ucierrs

import "github.com/rs/zerolog"

// SessionError reports a request the session refused.
type SessionError struct {
	BaseError
	mode string
}

// NewSessionError creates a session error.
func NewSessionError(code ErrorCode, message string, cause error) *SessionError {
	return &SessionError{BaseError: newBase(CategorySession, code, message, cause)}
}

// WithSessionID sets the owning session.
func (e *SessionError) WithSessionID(sessionID string) *SessionError {
	e.sessionID = sessionID

	return e
}

// WithMode records the mode the session was in when it refused.
func (e *SessionError) WithMode(mode string) *SessionError {
	e.mode = mode

	return e
}

// Mode returns the recorded session mode.
func (e *SessionError) Mode() string {
	return e.mode
}

// MarshalZerologObject adds the mode to the base fields.
func (e *SessionError) MarshalZerologObject(ev *zerolog.Event) {
	e.BaseError.MarshalZerologObject(ev)
	if e.mode != "" {
		ev.Str(FieldMode, e.mode)
	}
}

// ProtocolError reports engine output the session had to discard.
type ProtocolError struct {
	BaseError
	limit   int
	dropped int
}

// NewLineTooLongError reports dropped lines longer than limit bytes.
func NewLineTooLongError(limit, dropped int) *ProtocolError {
	return &ProtocolError{
		BaseError: newBase(CategoryProtocol, ErrCodeLineTooLong, "engine line exceeds limit", nil),
		limit:     limit,
		dropped:   dropped,
	}
}

// Limit returns the line length limit in bytes.
func (e *ProtocolError) Limit() int {
	return e.limit
}

// Dropped returns how many lines were discarded.
func (e *ProtocolError) Dropped() int {
	return e.dropped
}

// MarshalZerologObject adds the limit and drop count to the base fields.
func (e *ProtocolError) MarshalZerologObject(ev *zerolog.Event) {
	e.BaseError.MarshalZerologObject(ev)
	ev.Int("limit", e.limit).Int("dropped", e.dropped)
}
