package board

// rookCastleSquares returns the rook's origin and destination for a castling move.
func rookCastleSquares(m Move) (Square, Square) {
	if m.Has(FlagKingCastle) {
		return m.From + 3, m.From + 1
	}
	return m.From - 4, m.From - 1
}

// MakeMove plays m in place. m must come from NewMove on this position (or one
// of the generators); legality is the caller's concern.
func (p *Position) MakeMove(m Move) {
	us := m.Piece.Color()

	p.hash ^= keys.castling[p.castling]
	if p.epFile != NoFile {
		p.hash ^= keys.ep[p.epFile]
	}
	p.epFile = NoFile

	if m.Has(FlagEnPassant) {
		p.remove(m.enPassantVictim())
	} else if m.Captured != NoPiece {
		p.remove(m.To)
	}

	p.remove(m.From)
	placed := m.Piece
	if m.Promotion != NoPieceType {
		placed = NewPiece(us, m.Promotion)
	}
	p.put(m.To, placed)

	if m.IsCastle() {
		rookFrom, rookTo := rookCastleSquares(m)
		p.put(rookTo, p.remove(rookFrom))
		p.castled[us] = true
	}
	if m.Has(FlagDoublePush) {
		p.epFile = int8(m.From.File())
	}

	p.castling &= castleMask[m.From] & castleMask[m.To]
	p.hash ^= keys.castling[p.castling]
	if p.epFile != NoFile {
		p.hash ^= keys.ep[p.epFile]
	}

	if m.Piece.Type() == Pawn || m.Captured != NoPiece {
		p.halfmove = 0
	} else {
		p.halfmove++
	}
	if p.side == Black {
		p.fullmove++
	}
	p.side = p.side.Other()
	p.hash ^= keys.side

	p.history[p.hash]++
}

// UnmakeMove reverts the most recent MakeMove(m) exactly.
func (p *Position) UnmakeMove(m Move) {
	if n := p.history[p.hash]; n <= 1 {
		delete(p.history, p.hash)
	} else {
		p.history[p.hash] = n - 1
	}

	p.side = p.side.Other()
	p.hash ^= keys.side
	if p.side == Black {
		p.fullmove--
	}

	p.hash ^= keys.castling[p.castling]
	if p.epFile != NoFile {
		p.hash ^= keys.ep[p.epFile]
	}
	p.castling = m.PrevCastling
	p.epFile = m.PrevEnPassant
	p.halfmove = m.PrevHalfmove
	p.hash ^= keys.castling[p.castling]
	if p.epFile != NoFile {
		p.hash ^= keys.ep[p.epFile]
	}

	if m.IsCastle() {
		rookFrom, rookTo := rookCastleSquares(m)
		p.put(rookFrom, p.remove(rookTo))
		p.castled[m.Piece.Color()] = false
	}

	p.remove(m.To)
	p.put(m.From, m.Piece)
	if m.Has(FlagEnPassant) {
		p.put(m.enPassantVictim(), m.Captured)
	} else if m.Captured != NoPiece {
		p.put(m.To, m.Captured)
	}
}
