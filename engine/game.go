package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"chessbot/board"
	"chessbot/book"
)

var ErrGameOver = errors.New("game is over")

// Game ties a position to a searcher and an optional opening book. While the
// game follows the book, every played move is reported to it and the bot asks
// it for replies before searching.
type Game struct {
	pos      *board.Position
	searcher *Searcher
	settings Settings
	book     book.Book
	inBook   bool
	moves    []board.Move
}

// NewGame starts a game from fen. The book is consulted only when
// settings.UseBook is set and the game starts from the initial position.
func NewGame(fen string, settings Settings, bk book.Book, logger *log.Logger) (*Game, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	start := board.NewPosition()
	return &Game{
		pos:      pos,
		searcher: NewSearcher(NewEvaluator(DefaultEvalConfig()), settings, logger),
		settings: settings,
		book:     bk,
		inBook:   settings.UseBook && bk != nil && pos.Hash() == start.Hash(),
	}, nil
}

// Position exposes the current position. Callers must not modify it.
func (g *Game) Position() *board.Position { return g.pos }

func (g *Game) Searcher() *Searcher  { return g.searcher }
func (g *Game) Moves() []board.Move  { return g.moves }
func (g *Game) InBook() bool         { return g.inBook }
func (g *Game) Status() board.Status { return g.pos.GameStatus(g.pos.SideToMove()) }

// LegalDestinations returns the legal target squares of the piece on sq.
func (g *Game) LegalDestinations(sq board.Square) []board.Square {
	return g.pos.LegalMovesForSquare(sq).Squares()
}

// Play applies m after checking it is legal for the side to move.
func (g *Game) Play(m board.Move) error {
	if g.Status() != board.Ongoing {
		return ErrGameOver
	}
	for _, legal := range g.pos.LegalMoves(g.pos.SideToMove(), true) {
		if sameMove(legal, m) {
			g.pos.MakeMove(legal)
			g.moves = append(g.moves, legal)
			if g.inBook && !g.book.AddMove(legal.Int()) {
				g.inBook = false
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %v", board.ErrIllegalMove, m)
}

// PlayUCI parses and plays a coordinate move. A finished game rejects every
// move with ErrGameOver.
func (g *Game) PlayUCI(s string) (board.Move, error) {
	if g.Status() != board.Ongoing {
		return board.NullMove, ErrGameOver
	}
	m, err := g.pos.MoveFromUCI(s)
	if err != nil {
		return board.NullMove, err
	}
	return m, g.Play(m)
}

// Undo takes back the last move. The book cannot rewind, so the game leaves it.
func (g *Game) Undo() bool {
	if len(g.moves) == 0 {
		return false
	}
	last := g.moves[len(g.moves)-1]
	g.moves = g.moves[:len(g.moves)-1]
	g.pos.UnmakeMove(last)
	g.inBook = false
	return true
}

// BookMove returns the book's reply while the game is in book. A book move
// that is not legal here takes the game out of book.
func (g *Game) BookMove() (board.Move, bool) {
	if !g.inBook {
		return board.NullMove, false
	}
	if v, ok := g.book.NextMove(); ok {
		if m, err := g.pos.MoveFromInt(v); err == nil {
			return m, true
		}
	}
	g.inBook = false
	return board.NullMove, false
}

// GenerateBotMove picks a move for the side to move without playing it: a book
// reply while the game is in book, otherwise a search.
func (g *Game) GenerateBotMove(ctx context.Context) (board.Move, error) {
	if g.Status() != board.Ongoing {
		return board.NullMove, ErrGameOver
	}
	if m, ok := g.BookMove(); ok {
		return m, nil
	}

	var r SearchResult
	if g.settings.FixedDepth > 0 {
		r = g.searcher.Search(g.pos, g.settings.FixedDepth)
	} else {
		r = g.searcher.IterativeDeepening(ctx, g.pos, g.settings.MoveTime())
	}
	if r.Move.IsNull() {
		return board.NullMove, ErrGameOver
	}
	return r.Move, nil
}
