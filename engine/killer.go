package engine

import "chessbot/board"

// maxPly bounds the killer table. Deeper plies simply get no killers.
const maxPly = 64

// killerBonus orders killers after every capture and castling move but ahead
// of other quiet moves.
const killerBonus = 40

// KillerStruct remembers, per ply, the last two quiet moves that caused a
// beta cutoff.
type KillerStruct struct {
	KillerMoves [maxPly][2]board.Move
}

func (k *KillerStruct) InsertKiller(move board.Move, ply int) {
	if ply >= maxPly || move.IsCapture() || move.Promotion != board.NoPieceType {
		return
	}
	if !sameMove(move, k.KillerMoves[ply][0]) {
		k.KillerMoves[ply][1] = k.KillerMoves[ply][0]
		k.KillerMoves[ply][0] = move
	}
}

func (k *KillerStruct) killersAt(ply int) [2]board.Move {
	if ply >= maxPly {
		return [2]board.Move{}
	}
	return k.KillerMoves[ply]
}

// ClearKillers empties the table.
func (k *KillerStruct) ClearKillers() {
	clear(k.KillerMoves[:])
}
