package uci

import (
	"cmp"
	"slices"

	"github.com/conneroisu/uci/pkg/uci/protocol"
)

// MoveEvaluation is the latest evaluation of one candidate move.
type MoveEvaluation struct {
	// Score is in centipawns from the side to move's point of view, or a
	// mate score (see protocol.IsMateScore).
	Score int `json:"score"`
	// Mate is the signed mate distance, zero when Score is not a mate.
	Mate int `json:"mate,omitempty"`
	// Win, Draw and Loss are per-mille expectations reported by the engine.
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
	// Depth is the search depth of this evaluation.
	Depth int `json:"depth"`
}

// IsMate reports whether the evaluation is a forced mate.
func (e MoveEvaluation) IsMate() bool {
	return protocol.IsMateScore(e.Score)
}

// Candidate pairs a move in long algebraic notation with its evaluation.
type Candidate struct {
	Move string         `json:"move"`
	Eval MoveEvaluation `json:"eval"`
}

// AnalysisResult is the outcome of one Run.
type AnalysisResult struct {
	// Moves is sorted by ascending score; equal scores keep the order in
	// which the moves were first reported.
	Moves []Candidate `json:"moves"`
	// MaxDepth is the deepest depth reported during the search.
	MaxDepth int `json:"max_depth"`
	// BestMove and Ponder are taken from the bestmove line.
	BestMove string `json:"best_move"`
	Ponder   string `json:"ponder,omitempty"`
}

// Best returns the highest-scoring candidate.
func (r AnalysisResult) Best() (Candidate, bool) {
	if len(r.Moves) == 0 {
		return Candidate{}, false
	}

	return r.Moves[len(r.Moves)-1], true
}

// evalTable aggregates evaluations keyed by move. Later reports for a move
// overwrite earlier ones but keep its first-seen position.
type evalTable struct {
	order  []string
	byMove map[string]MoveEvaluation
}

func newEvalTable() *evalTable {
	return &evalTable{byMove: make(map[string]MoveEvaluation)}
}

func (t *evalTable) put(info protocol.Info) {
	if _, seen := t.byMove[info.Move]; !seen {
		t.order = append(t.order, info.Move)
	}
	t.byMove[info.Move] = MoveEvaluation{
		Score: info.Score,
		Mate:  info.Mate,
		Win:   info.Win,
		Draw:  info.Draw,
		Loss:  info.Loss,
		Depth: info.Depth,
	}
}

// sorted returns the candidates by ascending score, stable on first-seen
// order.
func (t *evalTable) sorted() []Candidate {
	out := make([]Candidate, 0, len(t.order))
	for _, move := range t.order {
		out = append(out, Candidate{Move: move, Eval: t.byMove[move]})
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		return cmp.Compare(a.Eval.Score, b.Eval.Score)
	})

	return out
}
