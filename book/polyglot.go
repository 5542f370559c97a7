package book

import (
	"fmt"
	"io"

	bb "chessbot/bitboard"
	"chessbot/board"

	"github.com/corentings/chess/v2"
)

// PolyglotBook reads moves from a polyglot (.bin) book. It replays the game on
// its own position so it can compute the polyglot key of the current line.
type PolyglotBook struct {
	book   *chess.PolyglotBook
	hasher *chess.ZobristHasher
	pos    *board.Position
}

// LoadPolyglot reads a polyglot book from r.
func LoadPolyglot(r io.Reader) (*PolyglotBook, error) {
	pb, err := chess.LoadFromReader(r)
	if err != nil {
		return nil, err
	}
	return NewPolyglot(pb), nil
}

// NewPolyglot wraps an already loaded book. The line starts at the initial position.
func NewPolyglot(pb *chess.PolyglotBook) *PolyglotBook {
	return &PolyglotBook{
		book:   pb,
		hasher: chess.NewZobristHasher(),
		pos:    board.NewPosition(),
	}
}

// PolyglotKey returns the polyglot hash of a position.
func PolyglotKey(hasher *chess.ZobristHasher, p *board.Position) (uint64, error) {
	hex, err := hasher.HashPosition(p.ToFEN())
	if err != nil {
		return 0, err
	}
	return chess.ZobristHashToUint64(hex), nil
}

func (pb *PolyglotBook) entries() []chess.PolyglotEntry {
	key, err := PolyglotKey(pb.hasher, pb.pos)
	if err != nil {
		return nil
	}
	// Heaviest first.
	return pb.book.FindMoves(key)
}

func (pb *PolyglotBook) AddMove(move int) bool {
	m, err := pb.pos.MoveFromInt(move)
	if err != nil {
		return false
	}
	pb.pos.MakeMove(m)
	return len(pb.entries()) > 0
}

// NextMove returns the highest weighted legal book move for the current line.
func (pb *PolyglotBook) NextMove() (int, bool) {
	for _, e := range pb.entries() {
		v, err := pb.decode(e.Move)
		if err != nil {
			continue
		}
		if _, err := pb.pos.MoveFromInt(v); err == nil {
			return v, true
		}
	}
	return 0, false
}

// decode converts a polyglot move to a book integer. Polyglot writes castling
// as the king taking its own rook (e1h1); the board expects the king's
// destination (e1g1).
func (pb *PolyglotBook) decode(raw uint16) (int, error) {
	pm := chess.DecodeMove(raw)
	from := bb.NewSquare(pm.FromFile, pm.FromRank)
	to := bb.NewSquare(pm.ToFile, pm.ToRank)
	if pb.pos.PieceAt(from).Type() == board.King && pm.FromFile == 4 && pm.FromRank == pm.ToRank {
		switch pm.ToFile {
		case 7:
			to = bb.NewSquare(6, pm.ToRank)
		case 0:
			to = bb.NewSquare(2, pm.ToRank)
		}
	}
	promo := board.NoPieceType
	switch pm.Promotion {
	case 0:
	case 1:
		promo = board.Knight
	case 2:
		promo = board.Bishop
	case 3:
		promo = board.Rook
	case 4:
		promo = board.Queen
	default:
		return 0, fmt.Errorf("%w: polyglot promotion %d", ErrInvalidMove, pm.Promotion)
	}
	return int(from) | int(to)<<6 | int(promo)<<12, nil
}
