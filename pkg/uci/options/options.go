// Package options holds the configuration surface of an engine session.
package options

import (
	"github.com/rs/zerolog"

	"github.com/conneroisu/uci/pkg/uci/protocol"
)

// DefaultEngine is the executable looked up on PATH when no path is set.
const DefaultEngine = "stockfish"

// SessionOptions configures an engine session.
// This combines engine settings and process settings.
type SessionOptions struct {
	// === Engine Settings (sent as setoption at startup) ===

	// Threads sets the engine thread count (optional)
	Threads *int

	// HashMB sets the hash table size in MB (optional)
	HashMB *int

	// MultiPV overrides the number of reported candidates (optional)
	MultiPV *int

	// EngineOptions passes additional setoption pairs
	EngineOptions map[string]string

	// === Parsing ===

	// Schema selects how info lines are decoded
	Schema protocol.LineSchema

	// MaxLineBytes bounds a single engine output line (optional)
	MaxLineBytes *int

	// === Process Settings (how to launch the engine) ===

	// Path is the engine executable; DefaultEngine is used when empty
	Path string

	// Args passes command line arguments to the engine
	Args []string

	// Env sets additional environment variables
	Env map[string]string

	// Dir sets the working directory (optional)
	Dir *string

	// === Diagnostics ===

	// Verbose echoes every inbound line through the logger
	Verbose bool

	// Stderr is called with each engine stderr line, verbatim.
	// Lines are written to os.Stderr when nil.
	Stderr func(string)

	// OnProgress is called whenever a deeper search depth is reported
	OnProgress func(depth int)

	// Logger receives session diagnostics; logging is disabled when nil
	Logger *zerolog.Logger
}

// EnginePath returns the configured executable or DefaultEngine.
func (o *SessionOptions) EnginePath() string {
	if o == nil || o.Path == "" {
		return DefaultEngine
	}

	return o.Path
}

// Startup returns the protocol startup settings derived from the options.
func (o *SessionOptions) Startup() protocol.StartupOptions {
	if o == nil {
		return protocol.StartupOptions{}
	}

	startup := protocol.StartupOptions{
		Threads: o.Threads,
		HashMB:  o.HashMB,
		Extra:   o.EngineOptions,
	}
	if o.MultiPV != nil {
		startup.MultiPV = *o.MultiPV
	}

	return startup
}

// Log returns the configured logger or a disabled one.
func (o *SessionOptions) Log() zerolog.Logger {
	if o == nil || o.Logger == nil {
		return zerolog.Nop()
	}

	return *o.Logger
}
