// Package board implements the chess position: piece bitboards with a mailbox
// mirror, incremental Zobrist hashing, legal move generation and exact
// make/unmake.
package board

import (
	"fmt"

	bb "chessbot/bitboard"

	"golang.org/x/exp/maps"
)

type Square = bb.Square

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is a colorless piece kind used for table lookups.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece combines a PieceType with a color bit: piece&7 is the type and
// piece&8 is set for Black.
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6
	BlackPawn   Piece = 1 | 8
	BlackKnight Piece = 2 | 8
	BlackBishop Piece = 3 | 8
	BlackRook   Piece = 4 | 8
	BlackQueen  Piece = 5 | 8
	BlackKing   Piece = 6 | 8
)

// NewPiece returns the piece of type pt owned by c.
func NewPiece(c Color, pt PieceType) Piece {
	if pt == NoPieceType {
		return NoPiece
	}
	return Piece(pt) | Piece(c)<<3
}

func (p Piece) Type() PieceType { return PieceType(p & 7) }

// Color returns the owner. NoPiece reports White.
func (p Piece) Color() Color { return Color(p>>3) & 1 }

const pieceLetters = " PNBRQK  pnbrqk"

// String returns the FEN letter of the piece, or "" for NoPiece.
func (p Piece) String() string {
	if p == NoPiece || int(p) >= len(pieceLetters) {
		return ""
	}
	return string(pieceLetters[p])
}

// CastlingRights is a bitmask of the four castling flags.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

func kingsideRight(c Color) CastlingRights {
	if c == White {
		return WhiteKingside
	}
	return BlackKingside
}

func queensideRight(c Color) CastlingRights {
	if c == White {
		return WhiteQueenside
	}
	return BlackQueenside
}

// castleMask[sq] is and-ed into the rights whenever a move touches sq.
var castleMask [64]CastlingRights

func init() {
	for i := range castleMask {
		castleMask[i] = AllCastling
	}
	castleMask[bb.E1] &^= WhiteKingside | WhiteQueenside
	castleMask[bb.H1] &^= WhiteKingside
	castleMask[bb.A1] &^= WhiteQueenside
	castleMask[bb.E8] &^= BlackKingside | BlackQueenside
	castleMask[bb.H8] &^= BlackKingside
	castleMask[bb.A8] &^= BlackQueenside
}

// NoFile marks the absence of an en-passant file.
const NoFile int8 = -1

// Position is a full game state. The mailbox and the piece bitboards always
// describe the same placement, and no two bitboards share a square.
type Position struct {
	pieces    [2][7]bb.Bitboard
	occupancy [2]bb.Bitboard
	mailbox   [64]Piece

	side     Color
	castling CastlingRights
	epFile   int8
	kings    [2]Square
	castled  [2]bool

	hash    uint64
	history map[uint64]int

	halfmove int
	fullmove int
}

func newEmptyPosition() *Position {
	return &Position{
		epFile:   NoFile,
		kings:    [2]Square{bb.NoSquare, bb.NoSquare},
		history:  make(map[uint64]int),
		fullmove: 1,
	}
}

// NewPosition returns the standard initial position.
func NewPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Position) put(sq Square, pc Piece) {
	c, pt := pc.Color(), pc.Type()
	p.pieces[c][pt] = p.pieces[c][pt].Set(sq)
	p.occupancy[c] = p.occupancy[c].Set(sq)
	p.mailbox[sq] = pc
	p.hash ^= keys.piece[pc][sq]
	if pt == King {
		p.kings[c] = sq
	}
}

func (p *Position) remove(sq Square) Piece {
	pc := p.mailbox[sq]
	if pc == NoPiece {
		return NoPiece
	}
	c, pt := pc.Color(), pc.Type()
	p.pieces[c][pt] = p.pieces[c][pt].Clear(sq)
	p.occupancy[c] = p.occupancy[c].Clear(sq)
	p.mailbox[sq] = NoPiece
	p.hash ^= keys.piece[pc][sq]
	return pc
}

func (p *Position) PieceAt(sq Square) Piece { return p.mailbox[sq] }

// Pieces returns the bitboard of c's pieces of type pt.
func (p *Position) Pieces(c Color, pt PieceType) bb.Bitboard { return p.pieces[c][pt] }

func (p *Position) Occupancy(c Color) bb.Bitboard { return p.occupancy[c] }
func (p *Position) All() bb.Bitboard              { return p.occupancy[White] | p.occupancy[Black] }

func (p *Position) SideToMove() Color              { return p.side }
func (p *Position) CastlingRights() CastlingRights { return p.castling }

// EnPassantFile returns the file (0-7) a pawn may capture en passant on, or NoFile.
func (p *Position) EnPassantFile() int8 { return p.epFile }

// EnPassantSquare returns the square a capturing pawn lands on, or NoSquare.
func (p *Position) EnPassantSquare() Square {
	if p.epFile == NoFile {
		return bb.NoSquare
	}
	if p.side == White {
		return bb.NewSquare(int(p.epFile), 5)
	}
	return bb.NewSquare(int(p.epFile), 2)
}

func (p *Position) KingSquare(c Color) Square { return p.kings[c] }

// HasCastled reports whether c has castled in the moves made on this position.
func (p *Position) HasCastled(c Color) bool { return p.castled[c] }

func (p *Position) Hash() uint64  { return p.hash }
func (p *Position) Halfmove() int { return p.halfmove }
func (p *Position) Fullmove() int { return p.fullmove }

// Repetitions returns how many times the current position has occurred.
func (p *Position) Repetitions() int { return p.history[p.hash] }

// Clone returns an independent deep copy, history included.
func (p *Position) Clone() *Position {
	c := *p
	c.history = maps.Clone(p.history)
	return &c
}

// Validate cross-checks the mailbox, the bitboards, the king squares and the hash.
func (p *Position) Validate() error {
	var seen bb.Bitboard
	for c := White; c <= Black; c++ {
		var union bb.Bitboard
		for pt := Pawn; pt <= King; pt++ {
			b := p.pieces[c][pt]
			if b&seen != 0 {
				return fmt.Errorf("overlapping bitboards for %v %d", c, pt)
			}
			seen |= b
			union |= b
			for b != 0 {
				sq := b.PopLSB()
				if p.mailbox[sq] != NewPiece(c, pt) {
					return fmt.Errorf("mailbox mismatch at %v: %q", sq, p.mailbox[sq])
				}
			}
		}
		if union != p.occupancy[c] {
			return fmt.Errorf("occupancy mismatch for %v", c)
		}
		if p.pieces[c][King].Count() != 1 || p.pieces[c][King].LSB() != p.kings[c] {
			return fmt.Errorf("king square mismatch for %v", c)
		}
	}
	for sq := bb.A1; sq <= bb.H8; sq++ {
		if p.mailbox[sq] != NoPiece && !seen.Has(sq) {
			return fmt.Errorf("mailbox has %q at %v with no bitboard", p.mailbox[sq], sq)
		}
	}
	if h := keys.Hash(p); h != p.hash {
		return fmt.Errorf("hash mismatch: have %#x recomputed %#x", p.hash, h)
	}
	return nil
}

// String renders the mailbox rank 8 first.
func (p *Position) String() string {
	buf := make([]byte, 0, 72)
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			pc := p.mailbox[bb.NewSquare(f, r)]
			if pc == NoPiece {
				buf = append(buf, '.')
			} else {
				buf = append(buf, pc.String()[0])
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
