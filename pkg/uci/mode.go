package uci

import "strconv"

// Mode is the state of a session's request state machine.
type Mode int

const (
	// ModeIdle accepts new requests; engine output is discarded.
	ModeIdle Mode = iota
	// ModeAwaitingPosition waits for the position report.
	ModeAwaitingPosition
	// ModeAwaitingAnalysis aggregates evaluations until bestmove.
	ModeAwaitingAnalysis
	// ModeAwaitingReady waits for readyok.
	ModeAwaitingReady
)

// modes lists every mode; each must have a line handler.
var modes = []Mode{ModeIdle, ModeAwaitingPosition, ModeAwaitingAnalysis, ModeAwaitingReady}

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeAwaitingPosition:
		return "awaiting-position"
	case ModeAwaitingAnalysis:
		return "awaiting-analysis"
	case ModeAwaitingReady:
		return "awaiting-ready"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}
