package bitboard

import (
	"fmt"
	"math/bits"
	"strings"
)

// Square indexes the board rank-major: a1 = 0, h1 = 7, a8 = 56, h8 = 63.
type Square int8

const NoSquare Square = -1

const (
	A1, B1, C1, D1, E1, F1, G1, H1 Square = 0, 1, 2, 3, 4, 5, 6, 7
	A2, B2, C2, D2, E2, F2, G2, H2 Square = 8, 9, 10, 11, 12, 13, 14, 15
	A3, B3, C3, D3, E3, F3, G3, H3 Square = 16, 17, 18, 19, 20, 21, 22, 23
	A4, B4, C4, D4, E4, F4, G4, H4 Square = 24, 25, 26, 27, 28, 29, 30, 31
	A5, B5, C5, D5, E5, F5, G5, H5 Square = 32, 33, 34, 35, 36, 37, 38, 39
	A6, B6, C6, D6, E6, F6, G6, H6 Square = 40, 41, 42, 43, 44, 45, 46, 47
	A7, B7, C7, D7, E7, F7, G7, H7 Square = 48, 49, 50, 51, 52, 53, 54, 55
	A8, B8, C8, D8, E8, F8, G8, H8 Square = 56, 57, 58, 59, 60, 61, 62, 63
)

// NewSquare builds a square from a zero-based file and rank.
func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

func (s Square) File() int { return int(s) & 7 }
func (s Square) Rank() int { return int(s) >> 3 }

// Valid reports whether s is on the board.
func (s Square) Valid() bool { return s >= 0 && s < 64 }

// Bitboard returns the single-bit board for s.
func (s Square) Bitboard() Bitboard { return Bitboard(1) << uint(s) }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare converts algebraic coordinates ("e4") to a square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	f := int(s[0]) - 'a'
	r := int(s[1]) - '1'
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return NewSquare(f, r), nil
}

// Bitboard is a 64-bit set of squares.
type Bitboard uint64

const (
	Empty Bitboard = 0
	Full  Bitboard = ^Bitboard(0)

	FileA Bitboard = 0x0101010101010101
	FileB          = FileA << 1
	FileC          = FileA << 2
	FileD          = FileA << 3
	FileE          = FileA << 4
	FileF          = FileA << 5
	FileG          = FileA << 6
	FileH          = FileA << 7

	Rank1 Bitboard = 0xFF
	Rank2          = Rank1 << 8
	Rank3          = Rank1 << 16
	Rank4          = Rank1 << 24
	Rank5          = Rank1 << 32
	Rank6          = Rank1 << 40
	Rank7          = Rank1 << 48
	Rank8          = Rank1 << 56
)

// FileMask returns the mask of file f, or Empty when f is off the board.
func FileMask(f int) Bitboard {
	if f < 0 || f > 7 {
		return Empty
	}
	return FileA << uint(f)
}

// RankMask returns the mask of rank r, or Empty when r is off the board.
func RankMask(r int) Bitboard {
	if r < 0 || r > 7 {
		return Empty
	}
	return Rank1 << uint(8*r)
}

func (b Bitboard) Has(s Square) bool             { return b&s.Bitboard() != 0 }
func (b Bitboard) Set(s Square) Bitboard         { return b | s.Bitboard() }
func (b Bitboard) Clear(s Square) Bitboard       { return b &^ s.Bitboard() }
func (b Bitboard) Union(o Bitboard) Bitboard     { return b | o }
func (b Bitboard) Intersect(o Bitboard) Bitboard { return b & o }
func (b Bitboard) Complement() Bitboard          { return ^b }

// File masks b to file f. Off-board files yield Empty.
func (b Bitboard) File(f int) Bitboard { return b & FileMask(f) }

// Rank masks b to rank r. Off-board ranks yield Empty.
func (b Bitboard) Rank(r int) Bitboard { return b & RankMask(r) }

func (b Bitboard) Count() int { return bits.OnesCount64(uint64(b)) }

// LSB returns the lowest set square, or NoSquare for an empty board.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the lowest set square.
func (b *Bitboard) PopLSB() Square {
	if *b == 0 {
		return NoSquare
	}
	s := Square(bits.TrailingZeros64(uint64(*b)))
	*b &= *b - 1
	return s
}

// Squares lists the set squares in ascending order.
func (b Bitboard) Squares() []Square {
	out := make([]Square, 0, b.Count())
	for b != 0 {
		out = append(out, b.PopLSB())
	}
	return out
}

// String renders the board rank 8 first, '1' for set squares.
func (b Bitboard) String() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			if b.Has(NewSquare(f, r)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
