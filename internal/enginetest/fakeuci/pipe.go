package fakeuci

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/conneroisu/uci/internal/transport"
	"github.com/conneroisu/uci/pkg/uci/ports"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

const terminateTimeout = 2 * time.Second

// Pipe runs an Engine in-process and implements ports.Transport over
// io.Pipe, so sessions can be tested hermetically.
type Pipe struct {
	engine *Engine
	stdio  *transport.StdioTransport

	stdinR  *io.PipeReader
	stdoutW *io.PipeWriter

	mu           sync.Mutex
	connected    bool
	connectErr   error
	writeHistory []string
	served       chan error
}

// Verify interface compliance at compile time.
var _ ports.Transport = (*Pipe)(nil)

// NewPipe creates an in-process transport around a fresh engine.
func NewPipe(cfg Config) *Pipe {
	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()

	return &Pipe{
		engine:  New(cfg),
		stdio:   transport.NewStdioTransport(stdinW, stdoutR),
		stdinR:  stdinR,
		stdoutW: stdoutW,
		served:  make(chan error, 1),
	}
}

// FailConnect makes the next Connect return err.
func (p *Pipe) FailConnect(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connectErr = err
}

// Engine returns the underlying engine.
func (p *Pipe) Engine() *Engine {
	return p.engine
}

// Connect starts serving the engine.
func (p *Pipe) Connect(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.connectErr != nil {
		return ucierrs.NewProcessError(
			ucierrs.ErrCodeProcessSpawnFailed, "engine failed to start", p.connectErr,
		)
	}
	if p.connected {
		return nil
	}
	p.connected = true

	go func() {
		err := p.engine.Serve(p.stdinR, p.stdoutW, nil)
		_ = p.stdoutW.CloseWithError(err)
		_ = p.stdinR.Close()
		p.served <- err
	}()

	return nil
}

// Write sends a command and records it.
func (p *Pipe) Write(ctx context.Context, command string) error {
	p.mu.Lock()
	if !p.connected {
		p.mu.Unlock()

		return ucierrs.NewTransportError(ucierrs.ErrCodeNotConnected, "write", ucierrs.ErrNotConnected)
	}
	p.writeHistory = append(p.writeHistory, command)
	p.mu.Unlock()

	if err := p.stdio.WriteLine(ctx, command); err != nil {
		return ucierrs.NewTransportError(ucierrs.ErrCodeWriteFailed, "write", err)
	}

	return nil
}

// ReadChunks streams engine output.
func (p *Pipe) ReadChunks(ctx context.Context) (<-chan []byte, <-chan error) {
	return p.stdio.Pump(ctx)
}

// Terminate sends stop and quit, then closes the engine's input.
func (p *Pipe) Terminate() error {
	ctx, cancel := context.WithTimeout(context.Background(), terminateTimeout)
	defer cancel()
	_ = p.Write(ctx, "stop")
	_ = p.Write(ctx, "quit")

	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	return p.stdio.CloseInput()
}

// Close stops the engine and closes both streams.
func (p *Pipe) Close() error {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()

	_ = p.stdoutW.Close()

	return p.stdio.Close()
}

// IsReady returns whether the engine is being served.
func (p *Pipe) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.connected
}

// Crash ends the engine output stream as if the process died.
func (p *Pipe) Crash() {
	_ = p.stdoutW.CloseWithError(io.EOF)
}

// Emit writes an unsolicited line to the engine output, as an engine
// printing info between requests would.
func (p *Pipe) Emit(line string) error {
	_, err := p.stdoutW.Write([]byte(line + "\n"))

	return err
}

// Served receives the engine's exit error once Serve returns.
func (p *Pipe) Served() <-chan error {
	return p.served
}

// WriteHistory returns all commands written to the engine.
func (p *Pipe) WriteHistory() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return slices.Clone(p.writeHistory)
}
