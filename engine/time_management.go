package engine

import (
	"time"

	"chessbot/board"
)

// Clock is the remaining time and increment of the side to move, in milliseconds.
type Clock struct {
	Remaining int
	Increment int
}

const (
	overheadMs    = 30   // reserve for I/O jitter
	minMoveMs     = 5    // never less than this
	maxFrac       = 0.7  // never spend more than 70% of the remaining time
	panicThreshMs = 1000 // below this, live off the increment
	panicFrac     = 0.90
)

// Budget turns a clock into a time allowance for one move. Fewer pieces on the
// board means fewer moves left to plan for, so each move gets a larger share.
func (c Clock) Budget(p *board.Position) time.Duration {
	movesLeft := estimateMovesRemaining(gamePhase(p))
	rem, inc := c.Remaining, c.Increment

	var moveTime int
	switch {
	case inc > 0 && rem < panicThreshMs:
		moveTime = int(float64(inc) * panicFrac)
	case inc > 0:
		moveTime = rem/movesLeft + inc
	default:
		moveTime = rem / 40
	}

	moveTime = min(moveTime, int(float64(rem)*maxFrac), rem-overheadMs)
	moveTime = max(moveTime, minMoveMs)
	return time.Duration(moveTime) * time.Millisecond
}

// gamePhase is 24 with all minor and major pieces on the board and 0 with none.
func gamePhase(p *board.Position) int {
	phase := 0
	for c := board.White; c <= board.Black; c++ {
		phase += p.Pieces(c, board.Knight).Count()
		phase += p.Pieces(c, board.Bishop).Count()
		phase += 2 * p.Pieces(c, board.Rook).Count()
		phase += 4 * p.Pieces(c, board.Queen).Count()
	}
	return Clamp(phase, 0, 24)
}

func estimateMovesRemaining(phase int) int {
	// Linearly interpolate between 20 (endgame) and 45 (opening/middlegame).
	return (phase*25)/24 + 20
}
