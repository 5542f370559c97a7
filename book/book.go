// Package book provides opening books for the bot. A book follows the game
// through AddMove and suggests replies through NextMove; moves are exchanged
// as integers packed as from | to<<6 | promotion<<12 with a1 = 0.
package book

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bb "chessbot/bitboard"
	"chessbot/board"
)

// Book is the opening-book collaborator of a game.
type Book interface {
	// AddMove records a played move and reports whether the game is still in book.
	AddMove(move int) bool
	// NextMove suggests a reply for the current line, if the book has one.
	NextMove() (int, bool)
}

var ErrInvalidMove = errors.New("book: invalid move")

// Load opens a book file. Files ending in .bin are read as polyglot books,
// anything else as a line book.
func Load(path string) (Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		pb, err := LoadPolyglot(f)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return pb, nil
	}
	lb, err := LoadLines(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return lb, nil
}

// EncodeUCI packs a coordinate move ("e2e4", "e7e8q") as a book integer.
func EncodeUCI(s string) (int, error) {
	if len(s) != 4 && len(s) != 5 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := bb.ParseSquare(s[:2])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	to, err := bb.ParseSquare(s[2:4])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	promo := board.NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = board.Knight
		case 'b':
			promo = board.Bishop
		case 'r':
			promo = board.Rook
		case 'q':
			promo = board.Queen
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidMove, s)
		}
	}
	return int(from) | int(to)<<6 | int(promo)<<12, nil
}

// DecodeUCI is the inverse of EncodeUCI.
func DecodeUCI(v int) string {
	s := bb.Square(v&63).String() + bb.Square((v>>6)&63).String()
	if promo := board.PieceType((v >> 12) & 7); promo != board.NoPieceType {
		s += strings.ToLower(board.NewPiece(board.White, promo).String())
	}
	return s
}
