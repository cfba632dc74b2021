package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/notnil/chess"

	"github.com/conneroisu/uci/pkg/uci"
)

// report prints the position and the candidates best first.
func report(w io.Writer, position string, result uci.AnalysisResult, top int, board bool) {
	pos := decodePosition(position)

	fmt.Fprintf(w, "position: %s\n", position)
	if board && pos != nil {
		fmt.Fprintln(w, pos.Board().Draw())
	}
	fmt.Fprintf(w, "depth %d, best move %s\n\n", result.MaxDepth, sanOrUCI(pos, result.BestMove))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tmove\tsan\tscore\twin\tdraw\tloss\t")
	for i, c := range ranked(result.Moves, top) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t\n",
			i+1, c.Move, sanOrUCI(pos, c.Move), formatScore(c.Eval),
			c.Eval.Win, c.Eval.Draw, c.Eval.Loss)
	}
	_ = tw.Flush()
}

// ranked returns the candidates best first, at most top when top > 0.
func ranked(moves []uci.Candidate, top int) []uci.Candidate {
	out := make([]uci.Candidate, 0, len(moves))
	for i := len(moves) - 1; i >= 0; i-- {
		if top > 0 && len(out) == top {
			break
		}
		out = append(out, moves[i])
	}

	return out
}

// decodePosition parses a FEN position report. Engines that report
// something else get no board or SAN.
func decodePosition(position string) *chess.Position {
	opt, err := chess.FEN(position)
	if err != nil {
		return nil
	}

	return chess.NewGame(opt).Position()
}

func sanOrUCI(pos *chess.Position, move string) string {
	if pos == nil || move == "" {
		return move
	}
	m, err := chess.UCINotation{}.Decode(pos, move)
	if err != nil {
		return move
	}

	return chess.AlgebraicNotation{}.Encode(pos, m)
}

func formatScore(e uci.MoveEvaluation) string {
	if e.Mate < 0 {
		return fmt.Sprintf("-M%d", -e.Mate)
	}
	if e.Mate > 0 {
		return fmt.Sprintf("M%d", e.Mate)
	}

	return fmt.Sprintf("%+.2f", float64(e.Score)/100)
}
