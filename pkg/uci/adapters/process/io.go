package process

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/conneroisu/uci/pkg/ucierrs"
)

// exitGrace bounds how long ReadChunks waits for the process to be reaped
// after its output ends.
const exitGrace = 2 * time.Second

// Write sends one command line to the engine's stdin.
func (a *Adapter) Write(ctx context.Context, command string) error {
	a.mu.RLock()
	ready, stdio := a.ready, a.stdio
	a.mu.RUnlock()

	if !ready || stdio == nil {
		return ucierrs.NewTransportError(
			ucierrs.ErrCodeNotConnected, "engine not running", ucierrs.ErrNotConnected,
		)
	}

	if err := stdio.WriteLine(ctx, command); err != nil {
		return ucierrs.NewTransportError(ucierrs.ErrCodeWriteFailed, "write to engine failed", err)
	}

	return nil
}

// ReadChunks streams raw stdout chunks. When the stream ends the error
// channel carries a process error describing how the engine exited.
func (a *Adapter) ReadChunks(ctx context.Context) (<-chan []byte, <-chan error) {
	errCh := make(chan error, 1)

	a.mu.RLock()
	stdio := a.stdio
	a.mu.RUnlock()

	if stdio == nil {
		chunkCh := make(chan []byte)
		close(chunkCh)
		errCh <- ucierrs.NewTransportError(
			ucierrs.ErrCodeNotConnected, "engine not running", ucierrs.ErrNotConnected,
		)
		close(errCh)

		return chunkCh, errCh
	}

	chunkCh, pumpErrs := stdio.Pump(ctx)

	go func() {
		defer close(errCh)

		if err := <-pumpErrs; err != nil {
			errCh <- ucierrs.NewTransportError(ucierrs.ErrCodeReadFailed, "read from engine failed", err)

			return
		}

		select {
		case <-a.exited:
		case <-time.After(exitGrace):
		}

		a.mu.RLock()
		exitErr := a.exitErr
		tail := strings.Join(a.stderrTail, "\n")
		a.mu.RUnlock()

		errCh <- ucierrs.NewProcessError(
			ucierrs.ErrCodeProcessExited,
			"engine exited",
			errors.Join(ucierrs.ErrProcessExited, exitErr),
		).WithCommand(a.EnginePath(), a.options.Args).WithExit(exitCode(exitErr), tail)
	}()

	return chunkCh, errCh
}
