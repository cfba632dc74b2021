package uci

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/conneroisu/uci/pkg/uci/protocol"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

// stopTimeout bounds the stop command sent when a search is abandoned.
const stopTimeout = 2 * time.Second

// request is the single-use completion signal of one mode transition.
type request struct {
	id   string
	mode Mode
	done chan reply
}

type reply struct {
	outcome
	err error
}

// resolve fires the request. done has capacity one and is fired once.
func (r *request) resolve(rep reply) {
	r.done <- rep
}

// begin moves the session from idle into mode and registers a fresh
// request. Evaluations and depth from earlier requests are discarded.
func (s *Session) begin(mode Mode) (*request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ucierrs.NewSessionError(
			ucierrs.ErrCodeSessionClosed, "session closed", ucierrs.ErrClosed,
		).WithSessionID(s.id)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.mode != ModeIdle {
		return nil, ucierrs.NewSessionError(
			ucierrs.ErrCodeSessionBusy, "request rejected", ucierrs.ErrBusy,
		).WithSessionID(s.id).WithMode(s.mode.String())
	}

	req := &request{
		id:   uuid.NewString(),
		mode: mode,
		done: make(chan reply, 1),
	}
	s.mode = mode
	s.pending = req
	s.evals = newEvalTable()
	s.maxDepth = 0

	return req, nil
}

// abort returns to idle when req could not be issued.
func (s *Session) abort(req *request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == req {
		s.pending = nil
		s.mode = ModeIdle
	}
}

// issue begins a request in mode and sends its commands.
func (s *Session) issue(ctx context.Context, mode Mode, commands ...string) (*request, error) {
	req, err := s.begin(mode)
	if err != nil {
		return nil, err
	}
	s.log.Debug().
		Str(ucierrs.FieldRequestID, req.id).
		Str(ucierrs.FieldMode, mode.String()).
		Msg("request issued")

	if err := s.send(ctx, commands...); err != nil {
		s.abort(req)

		return nil, err
	}

	return req, nil
}

// await blocks until req fires or ctx ends. onCancel runs when ctx ends
// first; the request stays registered and completes in the background.
func (s *Session) await(ctx context.Context, req *request, onCancel func()) reply {
	select {
	case rep := <-req.done:
		return rep
	case <-ctx.Done():
		s.log.Debug().
			Str(ucierrs.FieldRequestID, req.id).
			Err(ctx.Err()).
			Msg("request abandoned")
		if onCancel != nil {
			onCancel()
		}

		return reply{err: ctx.Err()}
	}
}

// SetPosition sets the engine position and returns the position string the
// engine resolved. An empty fen selects the start position; moves are
// applied on top of it in long algebraic notation.
func (s *Session) SetPosition(ctx context.Context, fen string, moves []string) (string, error) {
	cmd, err := protocol.Position(fen, moves)
	if err != nil {
		return "", err
	}

	req, err := s.issue(ctx, ModeAwaitingPosition, cmd, protocol.CmdPositionReport)
	if err != nil {
		return "", err
	}
	rep := s.await(ctx, req, nil)

	return rep.position, rep.err
}

// Run searches the current position to depth plies and returns every
// candidate move the engine evaluated. If ctx ends first the search is
// stopped and Run returns ctx.Err() once the engine has answered with
// bestmove, or after stopTimeout if it never does. A session that answered
// is idle again when Run returns.
func (s *Session) Run(ctx context.Context, depth int) (AnalysisResult, error) {
	cmd, err := protocol.GoDepth(depth)
	if err != nil {
		return AnalysisResult{}, err
	}

	req, err := s.issue(ctx, ModeAwaitingAnalysis, cmd)
	if err != nil {
		return AnalysisResult{}, err
	}
	rep := s.await(ctx, req, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := s.send(stopCtx, protocol.CmdStop); err != nil {
			return
		}
		select {
		case <-req.done:
		case <-stopCtx.Done():
			s.log.Warn().Str(ucierrs.FieldRequestID, req.id).Msg("engine ignored stop")
		}
	})
	if rep.err != nil {
		return AnalysisResult{}, rep.err
	}
	s.log.Debug().
		Int("candidates", len(rep.result.Moves)).
		Int("max_depth", rep.result.MaxDepth).
		Str("best_move", rep.result.BestMove).
		Msg("analysis complete")

	return rep.result, nil
}

// IsReady waits until the engine has processed every earlier command.
func (s *Session) IsReady(ctx context.Context) error {
	req, err := s.issue(ctx, ModeAwaitingReady, protocol.CmdIsReady)
	if err != nil {
		return err
	}

	return s.await(ctx, req, nil).err
}

// NewGame tells the engine a new game starts and waits until it is ready.
func (s *Session) NewGame(ctx context.Context) error {
	req, err := s.issue(ctx, ModeAwaitingReady, protocol.CmdNewGame, protocol.CmdIsReady)
	if err != nil {
		return err
	}

	return s.await(ctx, req, nil).err
}
