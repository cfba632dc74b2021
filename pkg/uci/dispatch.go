package uci

import (
	"errors"

	"github.com/conneroisu/uci/pkg/uci/protocol"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

// lineHandler consumes one framed line in a given mode. It returns a
// non-nil outcome when the line completes the pending request. Handlers run
// with s.mu held.
type lineHandler func(s *Session, line string) *outcome

// outcome is what a completed request resolves to.
type outcome struct {
	position string
	result   AnalysisResult
}

func defaultHandlers() map[Mode]lineHandler {
	return map[Mode]lineHandler{
		ModeIdle:             handleIdle,
		ModeAwaitingPosition: handlePosition,
		ModeAwaitingAnalysis: handleAnalysis,
		ModeAwaitingReady:    handleReady,
	}
}

func handleIdle(_ *Session, _ string) *outcome {
	return nil
}

func handlePosition(s *Session, line string) *outcome {
	position, ok := protocol.ParsePositionReport(line)
	if !ok {
		return nil
	}
	s.position = position

	return &outcome{position: position}
}

func handleAnalysis(s *Session, line string) *outcome {
	if best, ponder, ok := protocol.ParseBestMove(line); ok {
		return &outcome{result: AnalysisResult{
			Moves:    s.evals.sorted(),
			MaxDepth: s.maxDepth,
			BestMove: best,
			Ponder:   ponder,
		}}
	}

	info, ok := protocol.ParseInfo(line, s.opts.Schema)
	if !ok {
		return nil
	}
	s.evals.put(info)
	if info.Depth > s.maxDepth {
		s.maxDepth = info.Depth
	}

	return nil
}

func handleReady(_ *Session, line string) *outcome {
	if protocol.IsReadyOK(line) {
		return &outcome{}
	}

	return nil
}

// loop frames engine output and dispatches it line by line, in order,
// until the stream ends.
func (s *Session) loop(chunks <-chan []byte, errs <-chan error) {
	defer close(s.done)

	dropped := 0
	for chunk := range chunks {
		for _, line := range s.framer.Feed(chunk) {
			s.dispatch(line)
		}
		dropped = s.reportDropped(dropped)
	}
	if line, ok := s.framer.Flush(); ok {
		s.dispatch(line)
	}
	s.reportDropped(dropped)

	s.shutdown(<-errs)
}

// reportDropped logs lines the framer discarded since the last call and
// returns the new total.
func (s *Session) reportDropped(seen int) int {
	total := s.framer.Dropped()
	if total > seen {
		err := ucierrs.NewLineTooLongError(s.framer.Limit(), total-seen)
		s.log.Warn().Err(err).EmbedObject(err).Msg("engine line discarded")
	}

	return total
}

func (s *Session) dispatch(line string) {
	s.mu.Lock()
	mode := s.mode
	if s.opts.Verbose {
		s.log.Info().Str(ucierrs.FieldMode, mode.String()).Str("line", line).Msg("engine")
	}

	prevDepth := s.maxDepth
	out := s.handlers[mode](s, line)
	depth := s.maxDepth

	var req *request
	if out != nil {
		req = s.pending
		s.pending = nil
		s.mode = ModeIdle
	}
	s.mu.Unlock()

	if depth > prevDepth {
		s.log.Debug().Int("depth", depth).Msg("search progress")
		if s.opts.OnProgress != nil {
			s.opts.OnProgress(depth)
		}
	}
	if req != nil {
		s.log.Debug().
			Str(ucierrs.FieldRequestID, req.id).
			Str(ucierrs.FieldMode, mode.String()).
			Msg("request complete")
		req.resolve(reply{outcome: *out})
	}
}

// shutdown records why the output stream ended and fails any pending
// request.
func (s *Session) shutdown(cause error) {
	s.stopLoop()

	s.mu.Lock()
	var err error
	switch {
	case s.closed:
		err = ucierrs.NewSessionError(ucierrs.ErrCodeSessionClosed, "session closed", ucierrs.ErrClosed).
			WithSessionID(s.id)
	default:
		var procErr *ucierrs.ProcessError
		if errors.As(cause, &procErr) {
			err = procErr.WithSessionID(s.id)
		} else {
			err = ucierrs.NewProcessError(
				ucierrs.ErrCodeProcessExited, "engine output ended",
				errors.Join(ucierrs.ErrProcessExited, cause),
			).WithSessionID(s.id)
		}
	}
	s.err = err
	req := s.pending
	s.pending = nil
	s.mode = ModeIdle
	s.mu.Unlock()

	if req != nil {
		s.log.Warn().Err(err).Str(ucierrs.FieldRequestID, req.id).Msg("request failed")
		req.resolve(reply{err: err})
	}
}
