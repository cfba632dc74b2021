package fakeuci

import (
	"sort"

	"github.com/notnil/chess"
)

type candidate struct {
	move  *chess.Move
	score int
	mate  int
}

// rank scores every root move and orders them best first, the way an
// engine reports multipv lines.
func rank(pos *chess.Position, moves []*chess.Move, depth int) []candidate {
	out := make([]candidate, 0, len(moves))
	for _, m := range moves {
		c := candidate{move: m, score: moveScore(m, depth)}
		if pos.Update(m).Status() == chess.Checkmate {
			c.mate = 1
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if (out[i].mate != 0) != (out[j].mate != 0) {
			return out[i].mate != 0
		}

		return out[i].score > out[j].score
	})

	return out
}

// moveScore is deterministic in the move and depth.
func moveScore(m *chess.Move, depth int) int {
	from, to := int(m.S1()), int(m.S2())

	return (from*37+to*11+depth*5)%301 - 150
}

func wdl(c candidate) (win, draw, loss int) {
	if c.mate > 0 {
		return 1000, 0, 0
	}
	if c.mate < 0 {
		return 0, 0, 1000
	}

	win = clamp(250+c.score, 0, 1000)
	loss = clamp(250-c.score, 0, 1000-win)
	draw = 1000 - win - loss

	return win, draw, loss
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
