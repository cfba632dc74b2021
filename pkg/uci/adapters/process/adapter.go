// Package process implements the engine transport over a child process.
//
// This adapter implements the Transport port by launching the engine
// executable and talking to it over its stdio pipes.
package process

import (
	"io"
	"os/exec"
	"sync"

	"github.com/conneroisu/uci/internal/transport"
	"github.com/conneroisu/uci/pkg/uci/options"
	"github.com/conneroisu/uci/pkg/uci/ports"
)

// stderrTailLines is how many stderr lines are kept for error reports.
const stderrTailLines = 20

// Adapter implements ports.Transport using an engine subprocess.
type Adapter struct {
	options    *options.SessionOptions
	enginePath string
	cmd        *exec.Cmd
	stdio      *transport.StdioTransport
	stdoutW    *io.PipeWriter
	stderrR    *io.PipeReader
	stderrW    *io.PipeWriter
	ready      bool
	exitErr    error
	exited     chan struct{}
	stderrDone chan struct{}
	stderrTail []string
	mu         sync.RWMutex
}

// Verify interface compliance at compile time.
var _ ports.Transport = (*Adapter)(nil)

// NewAdapter creates a new process adapter.
// The adapter must be connected via Connect() before use.
func NewAdapter(opts *options.SessionOptions) *Adapter {
	if opts == nil {
		opts = &options.SessionOptions{}
	}

	return &Adapter{
		options:    opts,
		exited:     make(chan struct{}),
		stderrDone: make(chan struct{}),
	}
}

// EnginePath returns the resolved executable after Connect.
func (a *Adapter) EnginePath() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.enginePath
}

// IsReady returns true if the adapter is connected and the engine running.
func (a *Adapter) IsReady() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.ready
}

// Exited is closed once the engine process has been reaped.
func (a *Adapter) Exited() <-chan struct{} {
	return a.exited
}

// ExitErr returns the process exit error after Exited is closed.
func (a *Adapter) ExitErr() error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.exitErr
}
