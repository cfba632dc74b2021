package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/conneroisu/uci/pkg/uci"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestFormatScore(t *testing.T) {
	tests := []struct {
		eval uci.MoveEvaluation
		want string
	}{
		{uci.MoveEvaluation{Score: 35}, "+0.35"},
		{uci.MoveEvaluation{Score: -120}, "-1.20"},
		{uci.MoveEvaluation{Score: 0}, "+0.00"},
		{uci.MoveEvaluation{Score: 99997, Mate: 3}, "M3"},
		{uci.MoveEvaluation{Score: -99998, Mate: -2}, "-M2"},
	}

	for _, tt := range tests {
		if got := formatScore(tt.eval); got != tt.want {
			t.Errorf("formatScore(%+v) = %q, want %q", tt.eval, got, tt.want)
		}
	}
}

func TestSanOrUCI(t *testing.T) {
	pos := decodePosition(startFEN)
	if pos == nil {
		t.Fatal("start position did not decode")
	}

	tests := []struct {
		move string
		want string
	}{
		{"e2e4", "e4"},
		{"g1f3", "Nf3"},
		{"xx", "xx"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanOrUCI(pos, tt.move); got != tt.want {
			t.Errorf("sanOrUCI(%q) = %q, want %q", tt.move, got, tt.want)
		}
	}

	if got := sanOrUCI(nil, "e2e4"); got != "e2e4" {
		t.Errorf("without a position the move is printed as is, got %q", got)
	}
}

func TestDecodePositionRejectsGarbage(t *testing.T) {
	if decodePosition("not a fen") != nil {
		t.Error("expected nil for an unparseable position")
	}
}

func TestReport(t *testing.T) {
	result := uci.AnalysisResult{
		Moves: []uci.Candidate{
			{Move: "a2a3", Eval: uci.MoveEvaluation{Score: -10, Win: 40, Draw: 900, Loss: 60}},
			{Move: "d2d4", Eval: uci.MoveEvaluation{Score: 20, Win: 60, Draw: 900, Loss: 40}},
			{Move: "e2e4", Eval: uci.MoveEvaluation{Score: 30, Win: 70, Draw: 890, Loss: 40}},
		},
		MaxDepth: 4,
		BestMove: "e2e4",
	}

	var buf bytes.Buffer
	report(&buf, startFEN, result, 2, false)
	out := buf.String()

	if !strings.Contains(out, "best move e4") {
		t.Errorf("missing best move in\n%s", out)
	}
	if strings.Contains(out, "a2a3") {
		t.Errorf("top 2 must omit the worst move:\n%s", out)
	}
	if strings.Index(out, "e2e4") > strings.Index(out, "d2d4") {
		t.Errorf("moves must be printed best first:\n%s", out)
	}
}

func TestSplitMoves(t *testing.T) {
	got := splitMoves("e2e4, e7e5 g1f3")
	if len(got) != 3 || got[2] != "g1f3" {
		t.Errorf("splitMoves() = %q", got)
	}
	if len(splitMoves("")) != 0 {
		t.Error("empty input yields no moves")
	}
}

func TestExitStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ucierrs.NewValidationError(ucierrs.ErrCodeRangeViolation, "depth", nil, "depth", 0), 2},
		{"process", fmt.Errorf("start: %w", ucierrs.NewProcessError(ucierrs.ErrCodeProcessNotFound, "missing", nil)), 3},
		{"transport", ucierrs.NewTransportError(ucierrs.ErrCodeWriteFailed, "write", nil), 4},
		{"other", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitStatus(tt.err); got != tt.want {
				t.Errorf("exitStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
