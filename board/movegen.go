package board

import (
	"chessbot/attacks"
	bb "chessbot/bitboard"
)

// promotionOrder lists promotion pieces strongest first.
var promotionOrder = [4]PieceType{Queen, Rook, Bishop, Knight}

// IsAttacked reports whether any piece of color by attacks sq.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	enemy := &p.pieces[by]
	if attacks.Pawn(int(by.Other()), sq)&enemy[Pawn] != 0 {
		return true
	}
	if attacks.Knight(sq)&enemy[Knight] != 0 || attacks.King(sq)&enemy[King] != 0 {
		return true
	}
	occ := p.All()
	if attacks.Bishop(sq, occ)&(enemy[Bishop]|enemy[Queen]) != 0 {
		return true
	}
	return attacks.Rook(sq, occ)&(enemy[Rook]|enemy[Queen]) != 0
}

// InCheck reports whether c's king is attacked.
func (p *Position) InCheck(c Color) bool {
	return p.IsAttacked(p.kings[c], c.Other())
}

// pseudoTargets returns the destinations of the piece on sq ignoring king
// safety. Castling destinations are not included.
func (p *Position) pseudoTargets(sq Square) bb.Bitboard {
	pc := p.mailbox[sq]
	us := pc.Color()
	own := p.occupancy[us]
	switch pc.Type() {
	case Pawn:
		return p.pawnTargets(sq, us)
	case Knight:
		return attacks.Knight(sq) &^ own
	case Bishop:
		return attacks.Bishop(sq, p.All()) &^ own
	case Rook:
		return attacks.Rook(sq, p.All()) &^ own
	case Queen:
		return attacks.Queen(sq, p.All()) &^ own
	case King:
		return attacks.King(sq) &^ own
	}
	return bb.Empty
}

func (p *Position) pawnTargets(sq Square, us Color) bb.Bitboard {
	occ := p.All()
	var targets bb.Bitboard
	step, home := 8, 1
	if us == Black {
		step, home = -8, 6
	}
	one := Square(int(sq) + step)
	if one.Valid() && !occ.Has(one) {
		targets = targets.Set(one)
		two := Square(int(one) + step)
		if sq.Rank() == home && !occ.Has(two) {
			targets = targets.Set(two)
		}
	}
	targets |= attacks.Pawn(int(us), sq) & p.occupancy[us.Other()]
	// En passant belongs to the side to move only.
	if us == p.side && p.epFile != NoFile {
		if ep := p.EnPassantSquare(); attacks.Pawn(int(us), sq).Has(ep) {
			targets = targets.Set(ep)
		}
	}
	return targets
}

// castlingTargets returns the king destinations c may castle to: the right is
// held, the rook is home, the squares between king and rook are empty, the king
// is not in check and does not pass through an attacked square. Landing on an
// attacked square is rejected later by the legality filter.
func (p *Position) castlingTargets(c Color) bb.Bitboard {
	home := bb.E1
	if c == Black {
		home = bb.E8
	}
	them := c.Other()
	rook := NewPiece(c, Rook)
	if p.kings[c] != home || p.castling&(kingsideRight(c)|queensideRight(c)) == 0 {
		return bb.Empty
	}
	if p.IsAttacked(home, them) {
		return bb.Empty
	}
	occ := p.All()
	var targets bb.Bitboard
	if p.castling&kingsideRight(c) != 0 && p.mailbox[home+3] == rook &&
		!occ.Has(home+1) && !occ.Has(home+2) && !p.IsAttacked(home+1, them) {
		targets = targets.Set(home + 2)
	}
	if p.castling&queensideRight(c) != 0 && p.mailbox[home-4] == rook &&
		!occ.Has(home-1) && !occ.Has(home-2) && !occ.Has(home-3) && !p.IsAttacked(home-1, them) {
		targets = targets.Set(home - 2)
	}
	return targets
}

// legal plays m speculatively and reports whether the mover's king survives.
func (p *Position) legal(m Move) bool {
	us := m.Piece.Color()
	p.MakeMove(m)
	ok := !p.IsAttacked(p.kings[us], us.Other())
	p.UnmakeMove(m)
	return ok
}

// appendMoves adds the legal moves of the piece on from to the targets set,
// expanding promotions.
func (p *Position) appendMoves(dst []Move, from Square, targets bb.Bitboard) []Move {
	for targets != 0 {
		m := p.NewMove(from, targets.PopLSB())
		if !p.legal(m) {
			continue
		}
		if m.Has(FlagPromotion) {
			for _, pt := range promotionOrder {
				dst = append(dst, m.WithPromotion(pt))
			}
			continue
		}
		dst = append(dst, m)
	}
	return dst
}

func (p *Position) generate(dst []Move, c Color, includeCastling, capturesOnly bool) []Move {
	mask := bb.Full
	if capturesOnly {
		mask = p.occupancy[c.Other()]
		if c == p.side && p.epFile != NoFile {
			mask = mask.Set(p.EnPassantSquare())
		}
	}
	own := p.occupancy[c]
	for own != 0 {
		from := own.PopLSB()
		targets := p.pseudoTargets(from) & mask
		if includeCastling && !capturesOnly && p.mailbox[from].Type() == King {
			targets |= p.castlingTargets(c)
		}
		dst = p.appendMoves(dst, from, targets)
	}
	return dst
}

// LegalMoves returns every legal move for c. En passant is only generated when
// c is the side to move; castling only when includeCastling is set.
func (p *Position) LegalMoves(c Color, includeCastling bool) []Move {
	return p.generate(make([]Move, 0, 48), c, includeCastling, false)
}

// CaptureMoves returns the legal captures (en passant included) for c.
func (p *Position) CaptureMoves(c Color) []Move {
	return p.generate(make([]Move, 0, 16), c, false, true)
}

// LegalMovesForSquare returns the legal destinations of the piece on sq.
func (p *Position) LegalMovesForSquare(sq Square) bb.Bitboard {
	pc := p.mailbox[sq]
	if pc == NoPiece {
		return bb.Empty
	}
	targets := p.pseudoTargets(sq)
	if pc.Type() == King {
		targets |= p.castlingTargets(pc.Color())
	}
	var legal bb.Bitboard
	for targets != 0 {
		to := targets.PopLSB()
		if p.legal(p.NewMove(sq, to)) {
			legal = legal.Set(to)
		}
	}
	return legal
}

// HasLegalMoves reports whether c has at least one legal move.
func (p *Position) HasLegalMoves(c Color) bool {
	own := p.occupancy[c]
	for own != 0 {
		from := own.PopLSB()
		targets := p.pseudoTargets(from)
		for targets != 0 {
			if p.legal(p.NewMove(from, targets.PopLSB())) {
				return true
			}
		}
	}
	// Castling is never the only legal move: the king could stop on the transit square.
	return false
}
