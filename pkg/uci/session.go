package uci

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/conneroisu/uci/pkg/uci/adapters/process"
	"github.com/conneroisu/uci/pkg/uci/framing"
	"github.com/conneroisu/uci/pkg/uci/options"
	"github.com/conneroisu/uci/pkg/uci/ports"
	"github.com/conneroisu/uci/pkg/uci/protocol"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

// Session is the live adapter for one engine process.
//
// All request state (mode, framer, evaluations) is touched by the request
// methods and by the single dispatch goroutine, under mu.
type Session struct {
	id        string
	opts      *options.SessionOptions
	transport ports.Transport
	log       zerolog.Logger
	handlers  map[Mode]lineHandler

	// framer is owned by the dispatch goroutine.
	framer *framing.Framer

	mu       sync.Mutex
	mode     Mode
	pending  *request
	position string
	evals    *evalTable
	maxDepth int
	closed   bool
	err      error

	stopLoop context.CancelFunc
	done     chan struct{}
}

// Start launches the engine described by opts and returns a session for
// it. A launch failure is returned immediately.
func Start(ctx context.Context, opts *options.SessionOptions) (*Session, error) {
	return NewSession(ctx, process.NewAdapter(opts), opts)
}

// NewSession connects transport, sends the startup configuration and
// starts dispatching engine output. opts may be nil.
func NewSession(
	ctx context.Context,
	transport ports.Transport,
	opts *options.SessionOptions,
) (*Session, error) {
	if opts == nil {
		opts = &options.SessionOptions{}
	}

	startup, err := protocol.Startup(opts.Startup())
	if err != nil {
		return nil, err
	}

	maxLine := 0
	if opts.MaxLineBytes != nil {
		maxLine = *opts.MaxLineBytes
	}

	s := &Session{
		id:        uuid.NewString(),
		opts:      opts,
		transport: transport,
		handlers:  defaultHandlers(),
		framer:    framing.New(maxLine),
		evals:     newEvalTable(),
		done:      make(chan struct{}),
	}
	s.log = sessionLogger(opts).With().Str(ucierrs.FieldSessionID, s.id).Logger()
	s.checkHandlers()

	if err := transport.Connect(ctx); err != nil {
		var uciErr ucierrs.UCIError
		if errors.As(err, &uciErr) {
			return nil, err
		}

		return nil, ucierrs.NewProcessError(
			ucierrs.ErrCodeProcessSpawnFailed, "engine launch failed", err,
		).WithCommand(opts.EnginePath(), opts.Args).WithSessionID(s.id)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.stopLoop = cancel
	chunks, errs := transport.ReadChunks(loopCtx)
	go s.loop(chunks, errs)

	if err := s.send(ctx, startup...); err != nil {
		_ = s.Close()
		_ = transport.Close()

		return nil, err
	}
	s.log.Debug().Str("engine", opts.EnginePath()).Msg("session started")

	return s, nil
}

func sessionLogger(opts *options.SessionOptions) zerolog.Logger {
	if opts.Verbose && opts.Logger == nil {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	return opts.Log()
}

// checkHandlers panics when a mode has no line handler.
func (s *Session) checkHandlers() {
	for _, m := range modes {
		if s.handlers[m] == nil {
			panic(fmt.Sprintf("uci: no line handler for mode %s", m))
		}
	}
}

// ID returns the session identifier used in logs and errors.
func (s *Session) ID() string {
	return s.id
}

// Mode returns the current state of the session.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}

// Position returns the last resolved position string.
func (s *Session) Position() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.position
}

// MaxDepth returns the deepest depth reported by the current or last search.
func (s *Session) MaxDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.maxDepth
}

// Done is closed once the engine output stream has ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns why the session ended, or nil while it is running.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Close sends stop and quit to the engine. It does not wait for the
// process to exit; use Done for that.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.log.Debug().Msg("terminating engine")

	return s.transport.Terminate()
}

// send writes commands in order.
func (s *Session) send(ctx context.Context, commands ...string) error {
	for _, c := range commands {
		s.log.Debug().Str("command", c).Msg("send")
		if err := s.transport.Write(ctx, c); err != nil {
			return fmt.Errorf("send %q: %w", c, err)
		}
	}

	return nil
}
