package engine

import (
	"chessbot/board"

	"golang.org/x/exp/slices"
)

const (
	castleBonus    = 50
	enPassantBonus = 100
	// hashMoveBonus lifts the transposition-table move above every heuristic score.
	hashMoveBonus = 1 << 20
)

type move struct {
	move  board.Move
	score int
}

type moveList struct {
	moves []move
}

// MoveHeuristic estimates how promising m is before searching it: the value of
// the captured piece, the gain of a promotion, and fixed bonuses for castling
// and en passant.
func (e *Evaluator) MoveHeuristic(m board.Move) int {
	score := 0
	if m.Captured != board.NoPiece {
		score += e.cfg.PieceValues[m.Captured.Type()]
	}
	if m.Promotion != board.NoPieceType {
		score += e.cfg.PieceValues[m.Promotion] - e.cfg.PieceValues[board.Pawn]
	}
	if m.IsCastle() {
		score += castleBonus
	}
	if m.Has(board.FlagEnPassant) {
		score += enPassantBonus
	}
	return score
}

// SortedLegalMoves returns c's legal moves, most promising first. Moves with
// equal scores keep generation order.
func (e *Evaluator) SortedLegalMoves(p *board.Position, c board.Color) []board.Move {
	moves := p.LegalMoves(c, true)
	slices.SortStableFunc(moves, func(a, b board.Move) int {
		return e.MoveHeuristic(b) - e.MoveHeuristic(a)
	})
	return moves
}

func (e *Evaluator) scoreMoves(moves []board.Move, hashMove board.Move, killers [2]board.Move) moveList {
	list := moveList{moves: make([]move, len(moves))}
	for i, m := range moves {
		list.moves[i] = move{move: m, score: e.MoveHeuristic(m)}
		switch {
		case !hashMove.IsNull() && sameMove(m, hashMove):
			list.moves[i].score += hashMoveBonus
		case isKiller(m, killers):
			list.moves[i].score += killerBonus
		}
	}
	return list
}

func isKiller(m board.Move, killers [2]board.Move) bool {
	for _, k := range killers {
		if !k.IsNull() && sameMove(m, k) {
			return true
		}
	}
	return false
}

// orderNextMove swaps the best remaining move into currIndex.
func orderNextMove(currIndex int, moves *moveList) {
	bestIndex := currIndex
	bestScore := moves.moves[bestIndex].score

	for index := bestIndex + 1; index < len(moves.moves); index++ {
		if moves.moves[index].score > bestScore {
			bestIndex = index
			bestScore = moves.moves[index].score
		}
	}

	moves.moves[currIndex], moves.moves[bestIndex] = moves.moves[bestIndex], moves.moves[currIndex]
}

// sameMove compares the squares and promotion only; the undo fields of two
// otherwise identical moves can differ between transposed positions.
func sameMove(a, b board.Move) bool {
	return a.From == b.From && a.To == b.To && a.Promotion == b.Promotion
}
