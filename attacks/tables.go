// Package attacks holds the precomputed attack sets used by move generation:
// leaper masks for knights, kings and pawn captures, and magic-multiplication
// lookups for bishops, rooks and queens.
package attacks

import (
	"fmt"

	bb "chessbot/bitboard"
)

const (
	White = 0
	Black = 1
)

var knightMoves [64]bb.Bitboard
var kingMoves [64]bb.Bitboard

// pawnAttacks[side][sq] is the set of squares a pawn of side attacks from sq.
var pawnAttacks [2][64]bb.Bitboard

var std *Tables

func init() {
	initLeaperTables()
	t, err := Build(DefaultSeed)
	if err != nil {
		panic(fmt.Sprintf("attacks: slider tables unusable: %v", err))
	}
	std = t
}

func initLeaperTables() {
	knightOffsets := [8][2]int{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	kingOffsets := [8][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
	for sq := 0; sq < 64; sq++ {
		file := sq % 8
		rank := sq / 8
		knightMoves[sq] = offsetMask(file, rank, knightOffsets[:])
		kingMoves[sq] = offsetMask(file, rank, kingOffsets[:])

		if rank < 7 {
			pawnAttacks[White][sq] = offsetMask(file, rank, [][2]int{{1, -1}, {1, 1}})
		}
		if rank > 0 {
			pawnAttacks[Black][sq] = offsetMask(file, rank, [][2]int{{-1, -1}, {-1, 1}})
		}
	}
}

// offsetMask collects the on-board targets of (rank, file) offsets.
func offsetMask(file, rank int, offsets [][2]int) bb.Bitboard {
	var mask bb.Bitboard
	for _, off := range offsets {
		rf := rank + off[0]
		ff := file + off[1]
		if rf >= 0 && rf < 8 && ff >= 0 && ff < 8 {
			mask = mask.Set(bb.NewSquare(ff, rf))
		}
	}
	return mask
}

func Knight(sq bb.Square) bb.Bitboard { return knightMoves[sq] }
func King(sq bb.Square) bb.Bitboard   { return kingMoves[sq] }

// Pawn returns the capture targets of a pawn of side (White or Black) on sq.
func Pawn(side int, sq bb.Square) bb.Bitboard { return pawnAttacks[side][sq] }

// Bishop returns bishop attacks from sq given the full board occupancy.
func Bishop(sq bb.Square, occ bb.Bitboard) bb.Bitboard { return std.BishopAttacks(sq, occ) }

// Rook returns rook attacks from sq given the full board occupancy.
func Rook(sq bb.Square, occ bb.Bitboard) bb.Bitboard { return std.RookAttacks(sq, occ) }

func Queen(sq bb.Square, occ bb.Bitboard) bb.Bitboard {
	return std.BishopAttacks(sq, occ) | std.RookAttacks(sq, occ)
}

var (
	rookDirs   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// SlowRook ray-casts rook attacks; each ray stops at and includes the first blocker.
func SlowRook(sq bb.Square, occ bb.Bitboard) bb.Bitboard { return rayAttacks(sq, occ, rookDirs) }

// SlowBishop ray-casts bishop attacks.
func SlowBishop(sq bb.Square, occ bb.Bitboard) bb.Bitboard {
	return rayAttacks(sq, occ, bishopDirs)
}

func rayAttacks(sq bb.Square, occ bb.Bitboard, dirs [4][2]int) bb.Bitboard {
	var att bb.Bitboard
	for _, d := range dirs {
		r, f := sq.Rank()+d[0], sq.File()+d[1]
		for r >= 0 && r < 8 && f >= 0 && f < 8 {
			t := bb.NewSquare(f, r)
			att = att.Set(t)
			if occ.Has(t) {
				break
			}
			r += d[0]
			f += d[1]
		}
	}
	return att
}

// relevanceMask is the ray set without the final square of each ray, since a
// blocker on the board edge never changes the attack set.
func relevanceMask(sq bb.Square, dirs [4][2]int) bb.Bitboard {
	var mask bb.Bitboard
	for _, d := range dirs {
		r, f := sq.Rank()+d[0], sq.File()+d[1]
		for {
			nr, nf := r+d[0], f+d[1]
			if r < 0 || r > 7 || f < 0 || f > 7 || nr < 0 || nr > 7 || nf < 0 || nf > 7 {
				break
			}
			mask = mask.Set(bb.NewSquare(f, r))
			r, f = nr, nf
		}
	}
	return mask
}

func RookMask(sq bb.Square) bb.Bitboard   { return relevanceMask(sq, rookDirs) }
func BishopMask(sq bb.Square) bb.Bitboard { return relevanceMask(sq, bishopDirs) }
