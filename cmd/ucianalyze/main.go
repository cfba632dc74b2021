// Package main analyzes one chess position with a UCI engine and prints the
// ranked candidate moves.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/conneroisu/uci/internal/config"
	"github.com/conneroisu/uci/pkg/uci"
	"github.com/conneroisu/uci/pkg/uci/options"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

const defaultDepth = 12

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		engine     = flag.String("engine", "", "engine executable (default stockfish)")
		fen        = flag.String("fen", "", "position in FEN (default start position)")
		moves      = flag.String("moves", "", "moves in long algebraic notation, space or comma separated")
		depth      = flag.Int("depth", 0, "search depth in plies")
		threads    = flag.Int("threads", 0, "engine threads")
		hash       = flag.Int("hash", 0, "engine hash size in MB")
		top        = flag.Int("top", 0, "print only the best N moves")
		schema     = flag.String("schema", "", "info line layout: keyed or fixed")
		verbose    = flag.Bool("verbose", false, "echo engine output")
		noBoard    = flag.Bool("no-board", false, "do not draw the board")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "engine":
			cfg.Engine = *engine
		case "depth":
			cfg.Depth = *depth
		case "threads":
			cfg.Threads = *threads
		case "hash":
			cfg.HashMB = *hash
		case "schema":
			cfg.Schema = *schema
		case "verbose":
			cfg.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if cfg.Depth == 0 {
		cfg.Depth = defaultDepth
	}

	level := zerolog.WarnLevel
	if cfg.Verbose {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	opts := cfg.ToOptions()
	opts.Logger = &logger
	opts.OnProgress = func(d int) {
		logger.Info().Int("depth", d).Msg("searching")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, *fen, splitMoves(*moves), cfg.Depth, *top, !*noBoard); err != nil {
		ev := logger.Error().Err(err)
		if uciErr, ok := ucierrs.AsUCIError(err); ok {
			ev = ev.EmbedObject(uciErr)
		}
		if ucierrs.HasCode(err, ucierrs.ErrCodeProcessNotFound) {
			ev = ev.Str("hint", "set -engine or UCI_ENGINE")
		}
		ev.Msg("analysis failed")
		stop()
		os.Exit(exitStatus(err))
	}
}

// exitStatus maps an analysis failure to the process exit code.
func exitStatus(err error) int {
	switch {
	case ucierrs.IsValidationError(err):
		return 2
	case ucierrs.IsProcessError(err):
		return 3
	case ucierrs.IsTransportError(err):
		return 4
	default:
		return 1
	}
}

func run(
	ctx context.Context,
	opts *options.SessionOptions,
	fen string,
	moves []string,
	depth, top int,
	board bool,
) error {
	session, err := uci.Start(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	position, err := session.SetPosition(ctx, fen, moves)
	if err != nil {
		return fmt.Errorf("set position: %w", err)
	}

	result, err := session.Run(ctx, depth)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	report(os.Stdout, position, result, top, board)

	return nil
}

func splitMoves(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
