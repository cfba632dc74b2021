package protocol

import (
	"strconv"
	"strings"
)

// Line markers.
const (
	MarkerPositionReport = "Fen:"
	MarkerInfo           = "info"
	MarkerDepth          = "depth"
	MarkerBestMove       = "bestmove"
	MarkerReadyOK        = "readyok"
	MarkerUCIOK          = "uciok"
)

// MateScore is the magnitude a mate-in-N score is encoded against: mate in
// N for the side to move scores MateScore-N, being mated in N scores
// -MateScore+N.
const MateScore = 100000

// mateWindow bounds how far from MateScore a score still reads as a mate.
const mateWindow = 1000

// LineSchema selects how info lines are decoded.
type LineSchema int

const (
	// SchemaKeyed locates each field by its keyword.
	SchemaKeyed LineSchema = iota
	// SchemaFixed reads fields at fixed token offsets.
	SchemaFixed
)

// String returns the schema name.
func (s LineSchema) String() string {
	switch s {
	case SchemaKeyed:
		return "keyed"
	case SchemaFixed:
		return "fixed"
	default:
		return "schema(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSchema maps a schema name back to its value.
func ParseSchema(name string) (LineSchema, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "keyed":
		return SchemaKeyed, true
	case "fixed":
		return SchemaFixed, true
	default:
		return SchemaKeyed, false
	}
}

// Fixed token offsets of SchemaFixed.
const (
	fixedDepth     = 2
	fixedScoreKind = 8
	fixedScore     = 9
	fixedWin       = 11
	fixedDraw      = 12
	fixedLoss      = 13
	fixedMove      = 25
)

// Info is one candidate evaluation decoded from an info line.
type Info struct {
	Depth   int
	MultiPV int
	// Score is in centipawns, or a mate score encoded with EncodeMate.
	Score int
	// Mate is the signed mate distance in moves, zero when not a mate score.
	Mate  int
	Win   int
	Draw  int
	Loss  int
	Move  string
	Bound string
}

// EncodeMate converts a signed mate distance into a score.
func EncodeMate(n int) int {
	switch {
	case n > 0:
		return MateScore - n
	case n < 0:
		return -MateScore - n
	default:
		return 0
	}
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	if score < 0 {
		score = -score
	}

	return score > MateScore-mateWindow
}

// ParseInfo decodes a candidate-evaluation line. It reports false for any
// line that is not "info depth ..." or lacks one of depth, score, the
// win/draw/loss triple and the first principal-variation move.
func ParseInfo(line string, schema LineSchema) (Info, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 || tokens[0] != MarkerInfo || tokens[1] != MarkerDepth {
		return Info{}, false
	}

	if schema == SchemaFixed {
		return parseFixed(tokens)
	}

	return parseKeyed(tokens)
}

func parseFixed(tokens []string) (Info, bool) {
	if len(tokens) <= fixedMove {
		return Info{}, false
	}

	var info Info
	var ok bool
	if info.Depth, ok = intAt(tokens, fixedDepth); !ok {
		return Info{}, false
	}
	if info.Score, ok = intAt(tokens, fixedScore); !ok {
		return Info{}, false
	}
	if tokens[fixedScoreKind] == "mate" {
		info.Mate = info.Score
		info.Score = EncodeMate(info.Mate)
	}
	if info.Win, ok = intAt(tokens, fixedWin); !ok {
		return Info{}, false
	}
	if info.Draw, ok = intAt(tokens, fixedDraw); !ok {
		return Info{}, false
	}
	if info.Loss, ok = intAt(tokens, fixedLoss); !ok {
		return Info{}, false
	}
	info.Move = tokens[fixedMove]
	if !ValidMove(info.Move) {
		return Info{}, false
	}

	return info, true
}

func parseKeyed(tokens []string) (Info, bool) {
	var (
		info                          Info
		haveDepth, haveScore, haveWDL bool
	)

	for i := 1; i < len(tokens); i++ {
		switch tokens[i] {
		case "string":
			// The rest of the line is free text.
			return Info{}, false
		case "depth":
			v, ok := intAt(tokens, i+1)
			if !ok {
				return Info{}, false
			}
			info.Depth, haveDepth = v, true
			i++
		case "multipv":
			if v, ok := intAt(tokens, i+1); ok {
				info.MultiPV = v
				i++
			}
		case "score":
			if i+2 >= len(tokens) {
				return Info{}, false
			}
			v, ok := intAt(tokens, i+2)
			if !ok {
				return Info{}, false
			}
			switch tokens[i+1] {
			case "cp":
				info.Score = v
			case "mate":
				info.Mate = v
				info.Score = EncodeMate(v)
			default:
				return Info{}, false
			}
			haveScore = true
			i += 2
			if i+1 < len(tokens) && (tokens[i+1] == "lowerbound" || tokens[i+1] == "upperbound") {
				info.Bound = tokens[i+1]
				i++
			}
		case "wdl":
			w, okW := intAt(tokens, i+1)
			d, okD := intAt(tokens, i+2)
			l, okL := intAt(tokens, i+3)
			if !okW || !okD || !okL {
				return Info{}, false
			}
			info.Win, info.Draw, info.Loss = w, d, l
			haveWDL = true
			i += 3
		case "pv":
			if i+1 >= len(tokens) || !ValidMove(tokens[i+1]) {
				return Info{}, false
			}
			info.Move = tokens[i+1]
			if !haveDepth || !haveScore || !haveWDL {
				return Info{}, false
			}

			return info, true
		}
	}

	return Info{}, false
}

func intAt(tokens []string, i int) (int, bool) {
	if i < 0 || i >= len(tokens) {
		return 0, false
	}
	v, err := strconv.Atoi(tokens[i])
	if err != nil {
		return 0, false
	}

	return v, true
}

// ParsePositionReport extracts the position string from a report line.
func ParsePositionReport(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if first, _, _ := strings.Cut(trimmed, " "); first != MarkerPositionReport {
		return "", false
	}

	position := strings.TrimSpace(strings.TrimPrefix(trimmed, MarkerPositionReport))

	return position, position != ""
}

// ParseBestMove recognizes the end-of-analysis line. The move fields may be
// empty; the line ends the search regardless of its content.
func ParseBestMove(line string) (best, ponder string, ok bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 || tokens[0] != MarkerBestMove {
		return "", "", false
	}
	if len(tokens) > 1 {
		best = tokens[1]
	}
	if len(tokens) > 3 && tokens[2] == "ponder" {
		ponder = tokens[3]
	}

	return best, ponder, true
}

// IsReadyOK reports whether line answers an isready command.
func IsReadyOK(line string) bool {
	return strings.TrimSpace(line) == MarkerReadyOK
}
