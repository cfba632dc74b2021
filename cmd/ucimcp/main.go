// Package main serves a UCI engine as MCP tools, over stdio by default or
// streamable HTTP with -http.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/conneroisu/uci/internal/config"
	"github.com/conneroisu/uci/pkg/uci"
	"github.com/conneroisu/uci/pkg/uci/adapters/mcp"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

const version = "0.1.0"

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		engine     = flag.String("engine", "", "engine executable (default stockfish)")
		depth      = flag.Int("depth", 0, "default search depth")
		httpAddr   = flag.String("http", "", "serve streamable HTTP on this address instead of stdio")
		verbose    = flag.Bool("verbose", false, "log engine output to stderr")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if *engine != "" {
		cfg.Engine = *engine
	}
	if *depth > 0 {
		cfg.Depth = *depth
	}
	if *verbose {
		cfg.Verbose = true
	}

	// stdout carries the protocol in stdio mode.
	level := zerolog.InfoLevel
	if !cfg.Verbose {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("component", "ucimcp").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger, *httpAddr); err != nil {
		ev := logger.Error().Err(err)
		if uciErr, ok := ucierrs.AsUCIError(err); ok {
			ev = ev.EmbedObject(uciErr)
		}
		ev.Msg("server stopped")
		stop()
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger, httpAddr string) error {
	opts := cfg.ToOptions()
	opts.Logger = &logger

	session, err := uci.Start(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	svc := mcp.NewService(session, cfg.Depth)

	if httpAddr != "" {
		logger.Info().Str("addr", httpAddr).Msg("serving streamable HTTP")
		errCh := make(chan error, 1)
		go func() { errCh <- mcp.ServeHTTP(mcp.NewMCPGoServer(svc, version), httpAddr) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return nil
		case <-session.Done():
			return session.Err()
		}
	}

	logger.Info().Msg("serving stdio")

	return mcp.RunStdio(ctx, mcp.NewSDKServer(svc, version))
}
