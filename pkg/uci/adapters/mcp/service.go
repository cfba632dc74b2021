// Package mcp exposes a UCI session as Model Context Protocol tools.
//
// The same two tools, set_position and analyze, are served over stdio with
// github.com/modelcontextprotocol/go-sdk and over streamable HTTP with
// github.com/mark3labs/mcp-go. Both delegate to a Service.
package mcp

import (
	"context"
	"sync"

	"github.com/conneroisu/uci/pkg/uci"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

// ServerName is the implementation name advertised to MCP clients.
const ServerName = "uci"

// Tool names.
const (
	ToolSetPosition = "set_position"
	ToolAnalyze     = "analyze"
)

const (
	defaultDepth = 12
	maxDepth     = 64
)

// Analyzer is the part of uci.Session the tools need.
type Analyzer interface {
	SetPosition(ctx context.Context, fen string, moves []string) (string, error)
	Run(ctx context.Context, depth int) (uci.AnalysisResult, error)
}

// PositionArgs are the set_position tool arguments.
type PositionArgs struct {
	FEN   string   `json:"fen,omitempty" jsonschema:"position in FEN, empty for the start position"`
	Moves []string `json:"moves,omitempty" jsonschema:"moves in long algebraic notation applied to the position"`
}

// PositionResult is the set_position tool output.
type PositionResult struct {
	Position string `json:"position"`
}

// AnalyzeArgs are the analyze tool arguments. When FEN or Moves is set the
// position is changed before searching.
type AnalyzeArgs struct {
	FEN   string   `json:"fen,omitempty" jsonschema:"position in FEN, empty keeps the current position"`
	Moves []string `json:"moves,omitempty" jsonschema:"moves in long algebraic notation applied before searching"`
	Depth int      `json:"depth,omitempty" jsonschema:"search depth in plies"`
	Top   int      `json:"top,omitempty" jsonschema:"return only the best N moves"`
}

// AnalyzeResult is the analyze tool output. Moves are ordered best first.
type AnalyzeResult struct {
	Position string          `json:"position,omitempty"`
	Depth    int             `json:"depth"`
	BestMove string          `json:"best_move"`
	Ponder   string          `json:"ponder,omitempty"`
	Moves    []uci.Candidate `json:"moves"`
}

// Service serializes tool calls onto one Analyzer. A session accepts one
// request at a time, and MCP clients may call tools concurrently.
type Service struct {
	mu       sync.Mutex
	analyzer Analyzer
	depth    int
}

// NewService wraps analyzer. depth is used when a call omits it; zero
// selects the default.
func NewService(analyzer Analyzer, depth int) *Service {
	if depth <= 0 {
		depth = defaultDepth
	}

	return &Service{analyzer: analyzer, depth: depth}
}

// SetPosition sets the analyzer position.
func (s *Service) SetPosition(ctx context.Context, args PositionArgs) (PositionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position, err := s.analyzer.SetPosition(ctx, args.FEN, args.Moves)
	if err != nil {
		return PositionResult{}, err
	}

	return PositionResult{Position: position}, nil
}

// Analyze optionally sets the position, then searches it.
func (s *Service) Analyze(ctx context.Context, args AnalyzeArgs) (AnalyzeResult, error) {
	depth := args.Depth
	if depth == 0 {
		depth = s.depth
	}
	if depth < 1 || depth > maxDepth {
		return AnalyzeResult{}, ucierrs.NewValidationError(
			ucierrs.ErrCodeRangeViolation, "depth out of range", nil, "depth", args.Depth,
		)
	}
	if args.Top < 0 {
		return AnalyzeResult{}, ucierrs.NewValidationError(
			ucierrs.ErrCodeRangeViolation, "top must not be negative", nil, "top", args.Top,
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out AnalyzeResult
	if args.FEN != "" || len(args.Moves) > 0 {
		position, err := s.analyzer.SetPosition(ctx, args.FEN, args.Moves)
		if err != nil {
			return AnalyzeResult{}, err
		}
		out.Position = position
	}

	result, err := s.analyzer.Run(ctx, depth)
	if err != nil {
		return AnalyzeResult{}, err
	}

	out.Depth = result.MaxDepth
	out.BestMove = result.BestMove
	out.Ponder = result.Ponder
	out.Moves = bestFirst(result.Moves, args.Top)

	return out, nil
}

// bestFirst reverses the ascending candidate list, keeping at most top
// entries when top is positive.
func bestFirst(moves []uci.Candidate, top int) []uci.Candidate {
	n := len(moves)
	if top > 0 && top < n {
		n = top
	}
	out := make([]uci.Candidate, 0, n)
	for i := len(moves) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, moves[i])
	}

	return out
}
