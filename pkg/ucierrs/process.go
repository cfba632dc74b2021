package ucierrs

import (
	"strings"

	"github.com/rs/zerolog"
)

// ProcessError reports an engine that could not be found, started or kept
// running.
type ProcessError struct {
	BaseError
	command  string
	args     []string
	exitCode int
	stderr   string
}

// NewProcessError creates a process error with an unknown exit code.
func NewProcessError(code ErrorCode, message string, cause error) *ProcessError {
	return &ProcessError{
		BaseError: newBase(CategoryProcess, code, message, cause),
		exitCode:  -1,
	}
}

// WithCommand records the engine executable and its arguments.
func (e *ProcessError) WithCommand(path string, args []string) *ProcessError {
	e.command = path
	e.args = args

	return e
}

// WithExit records how the process ended and the last stderr lines.
func (e *ProcessError) WithExit(exitCode int, stderrTail string) *ProcessError {
	e.exitCode = exitCode
	e.stderr = stderrTail

	return e
}

// WithSessionID sets the owning session.
func (e *ProcessError) WithSessionID(sessionID string) *ProcessError {
	e.sessionID = sessionID

	return e
}

// Command returns the engine executable.
func (e *ProcessError) Command() string {
	return e.command
}

// Args returns the engine arguments.
func (e *ProcessError) Args() []string {
	return e.args
}

// ExitCode returns the exit status, or -1 when unknown.
func (e *ProcessError) ExitCode() int {
	return e.exitCode
}

// Stderr returns the tail of the engine's stderr.
func (e *ProcessError) Stderr() string {
	return e.stderr
}

// MarshalZerologObject adds the command line and exit details.
func (e *ProcessError) MarshalZerologObject(ev *zerolog.Event) {
	e.BaseError.MarshalZerologObject(ev)
	if e.command != "" {
		ev.Str("command", strings.TrimSpace(e.command+" "+strings.Join(e.args, " ")))
	}
	ev.Int("exit_code", e.exitCode)
	if e.stderr != "" {
		ev.Str("stderr", e.stderr)
	}
}
