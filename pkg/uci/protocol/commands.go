package protocol

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/conneroisu/uci/pkg/ucierrs"
)

// Command keywords.
const (
	CmdUCI            = "uci"
	CmdIsReady        = "isready"
	CmdNewGame        = "ucinewgame"
	CmdStop           = "stop"
	CmdQuit           = "quit"
	CmdPositionReport = "d"
)

// DefaultMultiPV asks the engine to report every root move.
const DefaultMultiPV = 500

var moveNotation = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// ValidMove reports whether s is well-formed long algebraic notation
// (source square, destination square, optional promotion piece). It does
// not check legality.
func ValidMove(s string) bool {
	return moveNotation.MatchString(s)
}

// SetOption builds a setoption command.
func SetOption(name, value string) string {
	return fmt.Sprintf("setoption name %s value %s", name, value)
}

// StartupOptions are the engine settings sent once per session.
type StartupOptions struct {
	MultiPV int
	Threads *int
	HashMB  *int
	// Extra holds additional engine options, sent in name order.
	Extra map[string]string
}

// Startup returns the configuration commands sent after launch.
func Startup(opts StartupOptions) ([]string, error) {
	multiPV := opts.MultiPV
	if multiPV <= 0 {
		multiPV = DefaultMultiPV
	}

	cmds := []string{SetOption("MultiPV", strconv.Itoa(multiPV))}
	if opts.Threads != nil {
		if *opts.Threads < 1 {
			return nil, ucierrs.NewValidationError(
				ucierrs.ErrCodeRangeViolation, "threads must be positive", nil,
				"threads", *opts.Threads,
			)
		}
		cmds = append(cmds, SetOption("Threads", strconv.Itoa(*opts.Threads)))
	}
	if opts.HashMB != nil {
		if *opts.HashMB < 1 {
			return nil, ucierrs.NewValidationError(
				ucierrs.ErrCodeRangeViolation, "hash size must be positive", nil,
				"hash", *opts.HashMB,
			)
		}
		cmds = append(cmds, SetOption("Hash", strconv.Itoa(*opts.HashMB)))
	}
	cmds = append(cmds, SetOption("UCI_ShowWDL", "true"))

	names := make([]string, 0, len(opts.Extra))
	for name := range opts.Extra {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		value := opts.Extra[name]
		if hasLineBreak(name) || hasLineBreak(value) {
			return nil, ucierrs.NewValidationError(
				ucierrs.ErrCodeInvalidFormat, "engine option contains a line break", nil,
				"engine_options", name,
			)
		}
		cmds = append(cmds, SetOption(name, value))
	}

	return cmds, nil
}

// Position builds the position command. An empty fen selects the start
// position.
func Position(fen string, moves []string) (string, error) {
	if hasLineBreak(fen) {
		return "", ucierrs.NewValidationError(
			ucierrs.ErrCodeInvalidFormat, "position contains a line break", nil,
			"fen", fen,
		)
	}
	for _, m := range moves {
		if !ValidMove(m) {
			return "", ucierrs.NewValidationError(
				ucierrs.ErrCodeInvalidFormat, "malformed move notation", nil,
				"moves", m,
			)
		}
	}

	var b strings.Builder
	fen = strings.TrimSpace(fen)
	if fen == "" {
		b.WriteString("position startpos")
	} else {
		b.WriteString("position fen ")
		b.WriteString(fen)
	}
	if len(moves) > 0 {
		b.WriteString(" moves ")
		b.WriteString(strings.Join(moves, " "))
	}

	return b.String(), nil
}

// GoDepth builds the search-start command for a fixed ply depth.
func GoDepth(depth int) (string, error) {
	if depth < 1 {
		return "", ucierrs.NewValidationError(
			ucierrs.ErrCodeRangeViolation, "depth must be at least 1", nil,
			"depth", depth,
		)
	}

	return "go depth " + strconv.Itoa(depth), nil
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}
