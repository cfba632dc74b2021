// Package fakeuci implements a small, deterministic UCI engine for tests.
//
// It understands uci, isready, setoption, ucinewgame, position, d, go depth,
// stop and quit. Positions are resolved with github.com/notnil/chess, and a
// search reports one evaluation per legal root move per depth. Moves that
// deliver mate report "score mate 1".
package fakeuci

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// Config controls engine behavior.
type Config struct {
	// Name is reported by the uci command
	Name string

	// ChunkSize splits every output write into pieces of at most this many
	// bytes. Zero writes each batch of lines at once.
	ChunkSize int

	// WaitForStop holds bestmove back until a stop command arrives
	WaitForStop bool

	// Banner is written to the diagnostic stream on start (optional)
	Banner string
}

// Engine is a scripted UCI engine. It is driven by Serve and is not safe for
// concurrent use.
type Engine struct {
	cfg Config

	game      *chess.Game
	multiPV   int
	showWDL   bool
	options   map[string]string
	searching bool
	best      string

	out io.Writer
}

// New creates an engine at the start position.
func New(cfg Config) *Engine {
	if cfg.Name == "" {
		cfg.Name = "FakeUCI"
	}

	return &Engine{
		cfg:     cfg,
		game:    chess.NewGame(),
		multiPV: 1,
		options: make(map[string]string),
	}
}

// Option returns the last value set for an engine option.
func (e *Engine) Option(name string) (string, bool) {
	v, ok := e.options[name]

	return v, ok
}

// Serve reads commands from r and writes replies to w until quit or EOF.
// diag receives the banner and may be nil.
func (e *Engine) Serve(r io.Reader, w io.Writer, diag io.Writer) error {
	e.out = w
	if e.cfg.ChunkSize > 0 {
		e.out = &chunkWriter{w: w, size: e.cfg.ChunkSize}
	}
	if diag != nil && e.cfg.Banner != "" {
		if _, err := fmt.Fprintln(diag, e.cfg.Banner); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		quit, err := e.handle(strings.TrimSpace(scanner.Text()))
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}

	return scanner.Err()
}

func (e *Engine) handle(line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	fields := strings.Fields(line)

	switch fields[0] {
	case "uci":
		return false, e.emit(
			"id name "+e.cfg.Name,
			"id author uci",
			"option name MultiPV type spin default 1 min 1 max 500",
			"option name UCI_ShowWDL type check default false",
			"uciok",
		)
	case "isready":
		return false, e.emit("readyok")
	case "setoption":
		e.setOption(fields[1:])

		return false, nil
	case "ucinewgame":
		e.game = chess.NewGame()

		return false, nil
	case "position":
		e.setPosition(fields[1:])

		return false, nil
	case "d":
		return false, e.display()
	case "go":
		return false, e.search(fields[1:])
	case "stop":
		if e.searching {
			return false, e.finish()
		}

		return false, nil
	case "quit":
		return true, nil
	default:
		return false, e.emit(fmt.Sprintf("Unknown command: '%s'. Type help for more information.", line))
	}
}

func (e *Engine) setOption(fields []string) {
	// setoption name <name...> value <value...>
	if len(fields) < 2 || fields[0] != "name" {
		return
	}
	rest := strings.Join(fields[1:], " ")
	name, value, _ := strings.Cut(rest, " value ")
	e.options[name] = value

	switch name {
	case "MultiPV":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			e.multiPV = n
		}
	case "UCI_ShowWDL":
		e.showWDL = value == "true"
	}
}

func (e *Engine) setPosition(fields []string) {
	if len(fields) == 0 {
		return
	}

	var moves []string
	game := chess.NewGame()
	switch fields[0] {
	case "startpos":
		if len(fields) > 1 && fields[1] == "moves" {
			moves = fields[2:]
		}
	case "fen":
		end := len(fields)
		for i, f := range fields {
			if f == "moves" {
				end = i
				moves = fields[i+1:]

				break
			}
		}
		opt, err := chess.FEN(strings.Join(fields[1:end], " "))
		if err != nil {
			return
		}
		game = chess.NewGame(opt)
	default:
		return
	}

	notation := chess.UCINotation{}
	for _, s := range moves {
		m, err := notation.Decode(game.Position(), s)
		if err != nil {
			break
		}
		if err := game.Move(m); err != nil {
			break
		}
	}
	e.game = game
}

func (e *Engine) display() error {
	pos := e.game.Position()
	hash := pos.Hash()
	lines := []string{""}
	lines = append(lines, strings.Split(strings.TrimRight(pos.Board().Draw(), "\n"), "\n")...)
	lines = append(lines,
		"",
		"Fen: "+pos.String(),
		"Key: "+strings.ToUpper(hex.EncodeToString(hash[:8])),
		"Checkers:",
	)

	return e.emit(lines...)
}

func (e *Engine) search(fields []string) error {
	depth := 1
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "depth" {
			if n, err := strconv.Atoi(fields[i+1]); err == nil && n > 0 {
				depth = n
			}
		}
	}

	pos := e.game.Position()
	moves := pos.ValidMoves()
	e.searching = true
	e.best = ""

	if len(moves) == 0 {
		score := "cp 0"
		if pos.Status() == chess.Checkmate {
			score = "mate 0"
		}
		if err := e.emit("info depth 0 score " + score); err != nil {
			return err
		}

		return e.finish()
	}

	if e.cfg.WaitForStop {
		depth = 1
	}

	for d := 1; d <= depth; d++ {
		ranked := rank(pos, moves, d)
		limit := min(e.multiPV, len(ranked))
		lines := make([]string, 0, limit)
		for i := range limit {
			lines = append(lines, e.infoLine(d, i+1, ranked[i]))
		}
		if err := e.emit(lines...); err != nil {
			return err
		}
		e.best = ranked[0].move.String()
	}

	if e.cfg.WaitForStop {
		return nil
	}

	return e.finish()
}

func (e *Engine) finish() error {
	e.searching = false
	if e.best == "" {
		return e.emit("bestmove (none)")
	}
	return e.emit("bestmove " + e.best)
}

func (e *Engine) infoLine(depth, multiPV int, c candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d seldepth %d multipv %d ", depth, depth+2, multiPV)
	if c.mate != 0 {
		fmt.Fprintf(&b, "score mate %d", c.mate)
	} else {
		fmt.Fprintf(&b, "score cp %d", c.score)
	}
	if e.showWDL {
		w, d, l := wdl(c)
		fmt.Fprintf(&b, " wdl %d %d %d", w, d, l)
	}
	fmt.Fprintf(&b, " nodes %d nps 1000000 hashfull 0 tbhits 0 time %d pv %s",
		1000*depth, depth, c.move.String())

	return b.String()
}

// emit writes lines as one batch.
func (e *Engine) emit(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(e.out, strings.Join(lines, "\n")+"\n")

	return err
}

type chunkWriter struct {
	w    io.Writer
	size int
}

func (c *chunkWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		n := min(c.size, len(p))
		m, err := c.w.Write(p[:n])
		written += m
		if err != nil {
			return written, err
		}
		p = p[n:]
	}

	return written, nil
}
