package uci

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/conneroisu/uci/internal/enginetest/fakeuci"
	"github.com/conneroisu/uci/pkg/uci/options"
	"github.com/conneroisu/uci/pkg/uci/protocol"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var moveRe = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	return ctx
}

func newTestSession(t *testing.T, cfg fakeuci.Config, opts *options.SessionOptions) (*Session, *fakeuci.Pipe) {
	t.Helper()

	pipe := fakeuci.NewPipe(cfg)
	s, err := NewSession(testContext(t), pipe, opts)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
		_ = pipe.Close()
	})

	return s, pipe
}

func TestNewSessionSendsStartup(t *testing.T) {
	threads, hash := 2, 32
	s, pipe := newTestSession(t, fakeuci.Config{}, &options.SessionOptions{
		Threads: &threads,
		HashMB:  &hash,
	})

	if err := s.IsReady(testContext(t)); err != nil {
		t.Fatalf("IsReady() error = %v", err)
	}

	want := []string{
		"setoption name MultiPV value 500",
		"setoption name Threads value 2",
		"setoption name Hash value 32",
		"setoption name UCI_ShowWDL value true",
		"isready",
	}
	if got := pipe.WriteHistory(); !slices.Equal(got, want) {
		t.Errorf("commands = %q, want %q", got, want)
	}
	if v, _ := pipe.Engine().Option("Threads"); v != "2" {
		t.Errorf("engine Threads option = %q", v)
	}
}

func TestNewSessionLaunchFailure(t *testing.T) {
	pipe := fakeuci.NewPipe(fakeuci.Config{})
	pipe.FailConnect(errors.New("exec format error"))

	_, err := NewSession(testContext(t), pipe, nil)
	if !ucierrs.IsProcessError(err) {
		t.Fatalf("expected process error, got %v", err)
	}
}

func TestNewSessionRejectsBadOptions(t *testing.T) {
	zero := 0
	pipe := fakeuci.NewPipe(fakeuci.Config{})

	_, err := NewSession(testContext(t), pipe, &options.SessionOptions{Threads: &zero})
	if !ucierrs.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if pipe.IsReady() {
		t.Error("the engine must not be started for invalid options")
	}
}

func TestSetPositionStart(t *testing.T) {
	s, _ := newTestSession(t, fakeuci.Config{}, nil)

	got, err := s.SetPosition(testContext(t), "", nil)
	if err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if got != startFEN {
		t.Errorf("SetPosition() = %q, want %q", got, startFEN)
	}
	if s.Position() != startFEN {
		t.Errorf("Position() = %q", s.Position())
	}
	if s.Mode() != ModeIdle {
		t.Errorf("expected idle after completion, got %s", s.Mode())
	}
}

func TestSetPositionRoundTrip(t *testing.T) {
	s, _ := newTestSession(t, fakeuci.Config{}, nil)
	ctx := testContext(t)

	moves := []string{"e2e4", "c7c5", "g1f3", "d7d6", "d2d4", "c5d4", "f3d4"}
	first, err := s.SetPosition(ctx, "", moves)
	if err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if first == startFEN {
		t.Fatal("moves were not applied")
	}

	again, err := s.SetPosition(ctx, first, nil)
	if err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if again != first {
		t.Errorf("round trip changed position: %q -> %q", first, again)
	}
}

func TestSetPositionRejectsMalformedMoves(t *testing.T) {
	s, pipe := newTestSession(t, fakeuci.Config{}, nil)
	before := len(pipe.WriteHistory())

	_, err := s.SetPosition(testContext(t), "", []string{"e4"})
	if !ucierrs.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(pipe.WriteHistory()) != before {
		t.Error("nothing may be sent for an invalid request")
	}
	if s.Mode() != ModeIdle {
		t.Errorf("expected idle, got %s", s.Mode())
	}
}

func TestRunReturnsEveryEvaluatedMove(t *testing.T) {
	var mu sync.Mutex
	var progress []int
	s, _ := newTestSession(t, fakeuci.Config{ChunkSize: 5}, &options.SessionOptions{
		OnProgress: func(depth int) {
			mu.Lock()
			defer mu.Unlock()
			progress = append(progress, depth)
		},
	})
	ctx := testContext(t)

	if _, err := s.SetPosition(ctx, "", nil); err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(ctx, 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Moves) != 20 {
		t.Fatalf("expected 20 candidates, got %d", len(result.Moves))
	}
	seen := make(map[string]bool)
	for _, c := range result.Moves {
		if !moveRe.MatchString(c.Move) {
			t.Errorf("malformed move %q", c.Move)
		}
		if seen[c.Move] {
			t.Errorf("duplicate move %q", c.Move)
		}
		seen[c.Move] = true
		if c.Eval.Depth != 3 {
			t.Errorf("%s: expected the deepest evaluation to win, got depth %d", c.Move, c.Eval.Depth)
		}
		if c.Eval.Win+c.Eval.Draw+c.Eval.Loss != 1000 {
			t.Errorf("%s: wdl does not sum to 1000: %+v", c.Move, c.Eval)
		}
	}
	if !slices.IsSortedFunc(result.Moves, func(a, b Candidate) int { return a.Eval.Score - b.Eval.Score }) {
		t.Error("candidates must be sorted by ascending score")
	}
	if result.MaxDepth != 3 || s.MaxDepth() != 3 {
		t.Errorf("max depth = %d / %d, want 3", result.MaxDepth, s.MaxDepth())
	}
	if !moveRe.MatchString(result.BestMove) {
		t.Errorf("unexpected best move %q", result.BestMove)
	}

	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(progress, []int{1, 2, 3}) {
		t.Errorf("progress = %v, want [1 2 3]", progress)
	}
}

func TestRunIsStableAcrossRuns(t *testing.T) {
	s, _ := newTestSession(t, fakeuci.Config{}, nil)
	ctx := testContext(t)

	if _, err := s.SetPosition(ctx, "", []string{"d2d4"}); err != nil {
		t.Fatal(err)
	}
	first, err := s.Run(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Run(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(first.Moves, second.Moves) {
		t.Errorf("identical engine output must give identical order:\n%v\n%v", first.Moves, second.Moves)
	}
}

func TestRunFindsMate(t *testing.T) {
	s, _ := newTestSession(t, fakeuci.Config{}, nil)
	ctx := testContext(t)

	if _, err := s.SetPosition(ctx, "", []string{"f2f3", "e7e5", "g2g4"}); err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}

	best, ok := result.Best()
	if !ok {
		t.Fatal("no candidates")
	}
	if best.Move != "d8h4" || !best.Eval.IsMate() || best.Eval.Mate != 1 {
		t.Errorf("expected d8h4 mate in one as the top score, got %+v", best)
	}
	if !protocol.IsMateScore(best.Eval.Score) {
		t.Errorf("score %d should be recognizable as a mate", best.Eval.Score)
	}
}

func TestRunWithFixedSchema(t *testing.T) {
	s, _ := newTestSession(t, fakeuci.Config{}, &options.SessionOptions{Schema: protocol.SchemaFixed})
	ctx := testContext(t)

	if _, err := s.SetPosition(ctx, "", nil); err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Moves) != 20 {
		t.Errorf("expected 20 candidates with the fixed layout, got %d", len(result.Moves))
	}
}

func TestRequestsDoNotLeakState(t *testing.T) {
	s, _ := newTestSession(t, fakeuci.Config{}, nil)
	ctx := testContext(t)

	if _, err := s.Run(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetPosition(ctx, "", []string{"e2e4"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetPosition(ctx, "", []string{"e2e4", "e7e5"}); err != nil {
		t.Fatal(err)
	}
	if s.MaxDepth() != 0 {
		t.Errorf("position requests must reset search depth, got %d", s.MaxDepth())
	}

	result, err := s.Run(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range result.Moves {
		if c.Move == "e2e4" {
			t.Error("a move from an earlier position leaked into the new analysis")
		}
	}
	if len(result.Moves) != 29 {
		t.Errorf("expected 29 replies after 1.e4 e5, got %d", len(result.Moves))
	}
}

func TestBusySessionRejectsSecondRequest(t *testing.T) {
	s, _ := newTestSession(t, fakeuci.Config{WaitForStop: true}, nil)
	ctx := testContext(t)

	runErr := make(chan error, 1)
	runCtx, cancelRun := context.WithCancel(ctx)
	go func() {
		_, err := s.Run(runCtx, 10)
		runErr <- err
	}()

	deadline := time.After(5 * time.Second)
	for s.Mode() != ModeAwaitingAnalysis {
		select {
		case <-deadline:
			t.Fatal("session never entered analysis mode")
		case <-time.After(time.Millisecond):
		}
	}

	_, err := s.SetPosition(ctx, "", nil)
	if !ucierrs.IsBusy(err) || !ucierrs.IsSessionError(err) {
		t.Fatalf("expected busy session error, got %v", err)
	}

	cancelRun()
	if err := <-runErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Run waits for the bestmove released by stop before returning.
	if got := s.Mode(); got != ModeIdle {
		t.Fatalf("expected idle session once Run returned, got %s", got)
	}
	if _, err := s.SetPosition(ctx, "", nil); err != nil {
		t.Errorf("SetPosition() after stopped search: %v", err)
	}
}

func TestDeadlineExpiryLeavesSessionIdle(t *testing.T) {
	s, _ := newTestSession(t, fakeuci.Config{WaitForStop: true}, nil)
	ctx := testContext(t)

	for i := range 5 {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
		_, err := s.Run(runCtx, 10)
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("run %d: expected context.DeadlineExceeded, got %v", i, err)
		}
		if _, err := s.SetPosition(ctx, "", nil); err != nil {
			t.Fatalf("run %d: SetPosition() right after expired search: %v", i, err)
		}
	}
}

func TestEngineExitFailsPendingRequest(t *testing.T) {
	s, pipe := newTestSession(t, fakeuci.Config{WaitForStop: true}, nil)
	ctx := testContext(t)

	runErr := make(chan error, 1)
	go func() {
		_, err := s.Run(ctx, 5)
		runErr <- err
	}()
	for s.Mode() != ModeAwaitingAnalysis {
		time.Sleep(time.Millisecond)
	}

	pipe.Crash()

	err := <-runErr
	if !errors.Is(err, ucierrs.ErrProcessExited) {
		t.Fatalf("expected ErrProcessExited, got %v", err)
	}
	<-s.Done()
	if !ucierrs.IsProcessError(s.Err()) {
		t.Errorf("Err() = %v", s.Err())
	}
	if _, err := s.SetPosition(ctx, "", nil); !errors.Is(err, ucierrs.ErrProcessExited) {
		t.Errorf("requests after exit must fail, got %v", err)
	}
}

func TestCloseSendsStopAndQuit(t *testing.T) {
	s, pipe := newTestSession(t, fakeuci.Config{}, nil)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	history := pipe.WriteHistory()
	if len(history) < 2 || !slices.Equal(history[len(history)-2:], []string{"stop", "quit"}) {
		t.Errorf("expected stop, quit at the end, got %q", history)
	}

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch loop did not end after quit")
	}
	if !errors.Is(s.Err(), ucierrs.ErrClosed) {
		t.Errorf("Err() = %v, want ErrClosed", s.Err())
	}
	if _, err := s.Run(testContext(t), 1); !ucierrs.HasCode(err, ucierrs.ErrCodeSessionClosed) {
		t.Errorf("expected session_closed, got %v", err)
	}
}

func TestNewGame(t *testing.T) {
	s, pipe := newTestSession(t, fakeuci.Config{}, nil)
	ctx := testContext(t)

	if _, err := s.SetPosition(ctx, "", []string{"e2e4"}); err != nil {
		t.Fatal(err)
	}
	if err := s.NewGame(ctx); err != nil {
		t.Fatalf("NewGame() error = %v", err)
	}

	history := pipe.WriteHistory()
	if !slices.Equal(history[len(history)-2:], []string{"ucinewgame", "isready"}) {
		t.Errorf("unexpected commands %q", history)
	}
}

func TestIndependentSessions(t *testing.T) {
	a, _ := newTestSession(t, fakeuci.Config{}, nil)
	b, _ := newTestSession(t, fakeuci.Config{}, nil)
	ctx := testContext(t)

	if a.ID() == b.ID() {
		t.Fatal("sessions must have distinct IDs")
	}

	var wg sync.WaitGroup
	var posA, posB string
	var errA, errB error
	wg.Add(2)
	go func() {
		defer wg.Done()
		posA, errA = a.SetPosition(ctx, "", []string{"e2e4"})
	}()
	go func() {
		defer wg.Done()
		posB, errB = b.SetPosition(ctx, "", []string{"d2d4"})
	}()
	wg.Wait()

	if errA != nil || errB != nil {
		t.Fatalf("errors: %v, %v", errA, errB)
	}
	if posA == posB {
		t.Error("sessions must not share position state")
	}
}

// syncBuffer is a log sink safe for the session's reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestVerboseEchoesLinesInEveryMode(t *testing.T) {
	var sink syncBuffer
	logger := zerolog.New(&sink)
	s, pipe := newTestSession(t, fakeuci.Config{}, &options.SessionOptions{
		Verbose: true,
		Logger:  &logger,
	})
	ctx := testContext(t)

	if err := pipe.Emit("info string between requests"); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	deadline := time.After(5 * time.Second)
	for !strings.Contains(sink.String(), "info string between requests") {
		select {
		case <-deadline:
			t.Fatal("idle line never logged")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := s.SetPosition(ctx, "", []string{"e2e4"}); err != nil {
		t.Fatalf("SetPosition() error = %v", err)
	}
	if err := s.IsReady(ctx); err != nil {
		t.Fatalf("IsReady() error = %v", err)
	}
	if _, err := s.Run(ctx, 1); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	seen := map[string]bool{}
	for _, raw := range strings.Split(strings.TrimSpace(sink.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			t.Fatalf("log line %q: %v", raw, err)
		}
		if entry["message"] != "engine" {
			continue
		}
		if _, ok := entry["line"].(string); !ok {
			t.Errorf("engine entry without line field: %q", raw)
		}
		mode, _ := entry[ucierrs.FieldMode].(string)
		seen[mode] = true
	}

	for _, m := range modes {
		if !seen[m.String()] {
			t.Errorf("no engine line logged in mode %s", m)
		}
	}
}

func TestOversizeEngineLineIsLoggedAndSkipped(t *testing.T) {
	var sink syncBuffer
	logger := zerolog.New(&sink)
	maxLine := 64
	s, pipe := newTestSession(t, fakeuci.Config{}, &options.SessionOptions{
		MaxLineBytes: &maxLine,
		Logger:       &logger,
	})
	ctx := testContext(t)

	if err := pipe.Emit("info string " + strings.Repeat("x", 200)); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := s.IsReady(ctx); err != nil {
		t.Fatalf("IsReady() after oversize line: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for !strings.Contains(sink.String(), string(ucierrs.ErrCodeLineTooLong)) {
		select {
		case <-deadline:
			t.Fatalf("oversize line never reported, log: %s", sink.String())
		case <-time.After(time.Millisecond):
		}
	}
	if !strings.Contains(sink.String(), `"limit":64`) {
		t.Errorf("expected limit in log, got %s", sink.String())
	}
}
