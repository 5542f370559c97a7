package board

import (
	"strings"

	bb "chessbot/bitboard"
)

// MoveFlag classifies a move. A move with no flags is a normal quiet move.
type MoveFlag uint8

const (
	FlagCapture MoveFlag = 1 << iota
	FlagDoublePush
	FlagEnPassant
	FlagPromotion
	FlagKingCastle
	FlagQueenCastle

	FlagNormal MoveFlag = 0
	flagCastle          = FlagKingCastle | FlagQueenCastle
)

// Move carries everything needed to undo it: the rights, en-passant file and
// halfmove clock as they were before the move.
type Move struct {
	From      Square
	To        Square
	Piece     Piece
	Captured  Piece
	Promotion PieceType
	Flags     MoveFlag

	PrevCastling  CastlingRights
	PrevEnPassant int8
	PrevHalfmove  int
}

// NullMove is returned when no move is available.
var NullMove = Move{}

// NewMove describes moving the piece on from to to in the current position.
// Flags are derived here and never change afterwards; use WithPromotion to
// choose the piece for a promoting pawn.
func (p *Position) NewMove(from, to Square) Move {
	pc := p.mailbox[from]
	m := Move{
		From:          from,
		To:            to,
		Piece:         pc,
		Captured:      p.mailbox[to],
		PrevCastling:  p.castling,
		PrevEnPassant: p.epFile,
		PrevHalfmove:  p.halfmove,
	}
	switch pc.Type() {
	case Pawn:
		diff := int(to) - int(from)
		if diff == 16 || diff == -16 {
			m.Flags |= FlagDoublePush
		}
		if from.File() != to.File() && m.Captured == NoPiece {
			m.Flags |= FlagEnPassant
			m.Captured = NewPiece(pc.Color().Other(), Pawn)
		}
		if to.Rank() == 0 || to.Rank() == 7 {
			m.Flags |= FlagPromotion
		}
	case King:
		switch int(to) - int(from) {
		case 2:
			m.Flags |= FlagKingCastle
		case -2:
			m.Flags |= FlagQueenCastle
		}
	}
	if m.Captured != NoPiece {
		m.Flags |= FlagCapture
	}
	return m
}

// WithPromotion returns a copy of m promoting to pt.
func (m Move) WithPromotion(pt PieceType) Move {
	m.Promotion = pt
	return m
}

func (m Move) IsNull() bool    { return m.From == m.To }
func (m Move) IsCapture() bool { return m.Flags&FlagCapture != 0 }
func (m Move) IsCastle() bool  { return m.Flags&flagCastle != 0 }
func (m Move) Has(f MoveFlag) bool {
	return m.Flags&f != 0
}

// enPassantVictim is the square of the pawn removed by an en-passant capture.
func (m Move) enPassantVictim() Square {
	return bb.NewSquare(m.To.File(), m.From.Rank())
}

// Int packs the move as from | to<<6 | promotion<<12, the encoding shared with
// opening books.
func (m Move) Int() int {
	return int(m.From) | int(m.To)<<6 | int(m.Promotion)<<12
}

// String returns the move in coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPieceType {
		s += strings.ToLower(NewPiece(White, m.Promotion).String())
	}
	return s
}
