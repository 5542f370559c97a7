package board

import (
	"fmt"

	bb "chessbot/bitboard"
)

// Status is the outcome of a position for one side.
type Status int

const (
	Ongoing Status = iota
	Stalemate
	Loss
)

func (s Status) String() string {
	switch s {
	case Stalemate:
		return "stalemate"
	case Loss:
		return "loss"
	default:
		return "ongoing"
	}
}

// RepetitionLimit is the occurrence count at which a position is drawn.
const RepetitionLimit = 3

// IsRepetitionDraw reports whether the current position occurred RepetitionLimit times.
func (p *Position) IsRepetitionDraw() bool {
	return p.history[p.hash] >= RepetitionLimit
}

// GameStatus reports Loss when c is checkmated, Stalemate when c has no legal
// move or the position has repeated three times, Ongoing otherwise.
func (p *Position) GameStatus(c Color) Status {
	if !p.HasLegalMoves(c) {
		if p.InCheck(c) {
			return Loss
		}
		return Stalemate
	}
	if p.IsRepetitionDraw() {
		return Stalemate
	}
	return Ongoing
}

var promotionLetters = map[byte]PieceType{'q': Queen, 'r': Rook, 'b': Bishop, 'n': Knight}

// MoveFromUCI resolves a coordinate move ("e2e4", "e7e8q") against the legal
// moves of the side to move. A promoting move without its piece letter fails
// with ErrPromotionRequired.
func (p *Position) MoveFromUCI(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NullMove, fmt.Errorf("%w: %q", ErrInvalidUCI, s)
	}
	from, err := bb.ParseSquare(s[0:2])
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q", ErrInvalidUCI, s)
	}
	to, err := bb.ParseSquare(s[2:4])
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q", ErrInvalidUCI, s)
	}
	promo := NoPieceType
	if len(s) == 5 {
		pt, ok := promotionLetters[s[4]]
		if !ok {
			return NullMove, fmt.Errorf("%w: %q", ErrInvalidUCI, s)
		}
		promo = pt
	}
	return p.resolve(from, to, promo, s)
}

// MoveFromInt resolves a move packed by Move.Int.
func (p *Position) MoveFromInt(v int) (Move, error) {
	from, to, promo := Square(v&63), Square((v>>6)&63), PieceType((v>>12)&7)
	if v < 0 || v >= 1<<15 || promo > King {
		return NullMove, fmt.Errorf("%w: move integer %d", ErrInvalidUCI, v)
	}
	return p.resolve(from, to, promo, fmt.Sprint(v))
}

func (p *Position) resolve(from, to Square, promo PieceType, text string) (Move, error) {
	if p.mailbox[from] == NoPiece || p.mailbox[from].Color() != p.side {
		return NullMove, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	if !p.LegalMovesForSquare(from).Has(to) {
		return NullMove, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	m := p.NewMove(from, to)
	switch {
	case m.Has(FlagPromotion) && promo == NoPieceType:
		return NullMove, fmt.Errorf("%w: %s", ErrPromotionRequired, text)
	case m.Has(FlagPromotion) && (promo == Pawn || promo == King):
		return NullMove, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	case !m.Has(FlagPromotion) && promo != NoPieceType:
		return NullMove, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	return m.WithPromotion(promo), nil
}
