// Package ports defines interfaces that the session needs from
// infrastructure. These are "ports" in hexagonal architecture: contracts
// defined by session needs, not by external systems.
package ports

import "context"

// Transport defines what the session needs from an engine channel.
// It abstracts the stdio pipes of the external engine process.
type Transport interface {
	// Connect launches the engine; failure is fatal for the session
	Connect(ctx context.Context) error

	// Write sends one command; the transport appends the newline
	Write(ctx context.Context, command string) error

	// ReadChunks returns channels for raw output chunks and read errors.
	// Chunk boundaries are arbitrary relative to lines. Both channels
	// close when the output stream ends.
	ReadChunks(ctx context.Context) (<-chan []byte, <-chan error)

	// Terminate sends stop and quit without waiting for exit
	Terminate() error

	// Close releases the engine, killing it if still running
	Close() error

	// IsReady checks if the transport can send and receive
	IsReady() bool
}
