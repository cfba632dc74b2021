// Package main runs the deterministic test engine on stdin/stdout.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/conneroisu/uci/internal/enginetest/fakeuci"
)

func main() {
	name := flag.String("name", "", "engine name reported by uci")
	chunk := flag.Int("chunk", 0, "split output into writes of at most this many bytes")
	waitForStop := flag.Bool("wait-for-stop", false, "hold bestmove until stop")
	flag.Parse()

	engine := fakeuci.New(fakeuci.Config{
		Name:        *name,
		ChunkSize:   *chunk,
		WaitForStop: *waitForStop,
	})
	if err := engine.Serve(os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "fakeuci: %v\n", err)
		os.Exit(1)
	}
}
