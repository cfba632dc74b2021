// Package transport moves raw bytes between the adapter and an engine's
// stdio pipes.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

const errWrapFormat = "%w: %v"

// Errors reported by StdioTransport.
var (
	ErrReadFailed  = errors.New("read failed")
	ErrWriteFailed = errors.New("write failed")
)

// DefaultChunkSize is the read buffer size for one chunk.
const DefaultChunkSize = 4096

// StdioTransport reads output chunks from an engine and writes commands to
// it. Writes are serialized; reads are expected from a single goroutine.
type StdioTransport struct {
	stdin  io.WriteCloser
	stdout io.ReadCloser

	chunkSize int
	writeMu   sync.Mutex
}

// NewStdioTransport creates a new stdio transport.
func NewStdioTransport(stdin io.WriteCloser, stdout io.ReadCloser) *StdioTransport {
	return &StdioTransport{
		stdin:     stdin,
		stdout:    stdout,
		chunkSize: DefaultChunkSize,
	}
}

// ReadChunk reads whatever output is available, up to one chunk. The
// returned slice is owned by the caller. io.EOF is returned unwrapped.
func (t *StdioTransport) ReadChunk(ctx context.Context) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	resultChan := make(chan result, 1)

	go func() {
		buf := make([]byte, t.chunkSize)
		n, err := t.stdout.Read(buf)
		if n > 0 {
			resultChan <- result{buf[:n], nil}

			return
		}
		if err != nil && !errors.Is(err, io.EOF) {
			err = fmt.Errorf(errWrapFormat, ErrReadFailed, err)
		}
		resultChan <- result{nil, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.data, res.err
	}
}

// Pump reads chunks until the stream ends and delivers them on the
// returned channels. Both channels are closed on exit; a clean EOF sends no
// error.
func (t *StdioTransport) Pump(ctx context.Context) (<-chan []byte, <-chan error) {
	chunkCh := make(chan []byte, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(chunkCh)
		defer close(errCh)

		for {
			chunk, err := t.ReadChunk(ctx)
			if len(chunk) > 0 {
				select {
				case chunkCh <- chunk:
				case <-ctx.Done():
					errCh <- ctx.Err()

					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- err

				return
			}
		}
	}()

	return chunkCh, errCh
}

// WriteLine writes one newline-terminated command to stdin.
func (t *StdioTransport) WriteLine(ctx context.Context, line string) error {
	errChan := make(chan error, 1)

	go func() {
		t.writeMu.Lock()
		defer t.writeMu.Unlock()

		message := make([]byte, 0, len(line)+1)
		message = append(message, line...)
		message = append(message, '\n')
		if _, err := t.stdin.Write(message); err != nil {
			errChan <- fmt.Errorf(errWrapFormat, ErrWriteFailed, err)

			return
		}
		errChan <- nil
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// CloseInput closes stdin, signaling EOF to the engine.
func (t *StdioTransport) CloseInput() error {
	return t.stdin.Close()
}

// Close closes both streams.
func (t *StdioTransport) Close() error {
	errIn := t.stdin.Close()
	errOut := t.stdout.Close()

	return errors.Join(errIn, errOut)
}
