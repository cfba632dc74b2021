package process

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/conneroisu/uci/pkg/uci/protocol"
)

const (
	terminateTimeout = 2 * time.Second
	closeGrace       = 500 * time.Millisecond
)

// Terminate sends stop and quit and closes stdin. It does not wait for
// the process to exit.
func (a *Adapter) Terminate() error {
	a.mu.RLock()
	stdio := a.stdio
	a.mu.RUnlock()

	if stdio == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), terminateTimeout)
	defer cancel()

	_ = stdio.WriteLine(ctx, protocol.CmdStop)
	_ = stdio.WriteLine(ctx, protocol.CmdQuit)

	if err := stdio.CloseInput(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}

	return nil
}

// Close terminates the engine, killing it if it has not exited shortly
// after quit, and waits until it is reaped.
func (a *Adapter) Close() error {
	a.mu.Lock()
	a.ready = false
	cmd := a.cmd
	a.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}

	_ = a.Terminate()

	select {
	case <-a.exited:
	case <-time.After(closeGrace):
		_ = cmd.Process.Kill()
		<-a.exited
	}

	return nil
}

