package process

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/conneroisu/uci/internal/transport"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

// Connect launches the engine process.
// The process outlives ctx; it ends through Terminate or Close.
func (a *Adapter) Connect(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ready || a.cmd != nil {
		return nil
	}

	enginePath, err := findEngine(a.options.EnginePath())
	if err != nil {
		return err
	}
	a.enginePath = enginePath

	a.cmd = exec.Command(enginePath, a.options.Args...)
	a.cmd.Env = a.buildEnvironment()
	if a.options.Dir != nil {
		a.cmd.Dir = *a.options.Dir
	}

	if err := a.setupPipes(); err != nil {
		return err
	}

	if err := a.cmd.Start(); err != nil {
		a.releasePipes()

		return ucierrs.NewProcessError(
			ucierrs.ErrCodeProcessSpawnFailed, "engine start failed", err,
		).WithCommand(enginePath, a.options.Args)
	}

	go a.handleStderr(a.stderrR)
	go a.monitorProcess()

	a.ready = true

	return nil
}

func (a *Adapter) buildEnvironment() []string {
	env := os.Environ()
	for k, v := range a.options.Env {
		env = append(env, k+"="+v)
	}

	return env
}

// setupPipes wires stdin directly and routes stdout and stderr through
// in-memory pipes, so Wait returns only after all output was copied and
// nothing is lost at exit.
func (a *Adapter) setupPipes() error {
	stdin, err := a.cmd.StdinPipe()
	if err != nil {
		return ucierrs.NewTransportError(ucierrs.ErrCodePipeFailed, "stdin pipe failed", err)
	}

	stdoutR, stdoutW := io.Pipe()
	a.cmd.Stdout = stdoutW
	a.stdoutW = stdoutW

	stderrR, stderrW := io.Pipe()
	a.cmd.Stderr = stderrW
	a.stderrW = stderrW
	a.stderrR = stderrR

	a.stdio = transport.NewStdioTransport(stdin, stdoutR)

	return nil
}

// releasePipes closes and forgets the pipes of a process that never
// started, leaving the adapter as it was before Connect.
func (a *Adapter) releasePipes() {
	if a.stdio != nil {
		_ = a.stdio.Close()
	}
	if a.stdoutW != nil {
		_ = a.stdoutW.Close()
	}
	if a.stderrW != nil {
		_ = a.stderrW.Close()
	}
	if a.stderrR != nil {
		_ = a.stderrR.Close()
	}
	a.cmd = nil
	a.stdio = nil
	a.stdoutW = nil
	a.stderrW = nil
	a.stderrR = nil
}

// handleStderr forwards each stderr line verbatim.
func (a *Adapter) handleStderr(r io.Reader) {
	defer close(a.stderrDone)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()

		a.mu.Lock()
		a.stderrTail = append(a.stderrTail, line)
		if len(a.stderrTail) > stderrTailLines {
			a.stderrTail = a.stderrTail[len(a.stderrTail)-stderrTailLines:]
		}
		a.mu.Unlock()

		if a.options.Stderr != nil {
			a.options.Stderr(line)
		} else {
			_, _ = os.Stderr.WriteString(line + "\n")
		}
	}
	// Drain whatever is left if scanning stopped early.
	_, _ = io.Copy(io.Discard, r)
}

// monitorProcess reaps the engine and records its exit status.
func (a *Adapter) monitorProcess() {
	err := a.cmd.Wait()
	_ = a.stdoutW.Close()
	_ = a.stderrW.Close()
	<-a.stderrDone

	a.mu.Lock()
	a.ready = false
	if err != nil {
		a.exitErr = err
	}
	a.mu.Unlock()

	close(a.exited)
}

// exitCode extracts the exit status from a Wait error.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err == nil {
		return 0
	}

	return -1
}
