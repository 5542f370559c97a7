package board_test

import (
	"testing"

	bb "chessbot/bitboard"
	"chessbot/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	p, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}

func play(t *testing.T, p *board.Position, moves ...string) {
	t.Helper()
	for _, s := range moves {
		m, err := p.MoveFromUCI(s)
		if err != nil {
			t.Fatalf("MoveFromUCI(%s) in %s: %v", s, p.ToFEN(), err)
		}
		p.MakeMove(m)
	}
}

func hasMove(p *board.Position, uci string) bool {
	for _, m := range p.LegalMoves(p.SideToMove(), true) {
		if m.String() == uci {
			return true
		}
	}
	return false
}

func TestEnPassantWindow(t *testing.T) {
	p := board.NewPosition()
	play(t, p, "e2e4", "a7a6", "e4e5", "d7d5")
	if !hasMove(p, "e5d6") {
		t.Fatalf("en passant e5d6 should be available in %s", p.ToFEN())
	}

	m, err := p.MoveFromUCI("e5d6")
	if err != nil {
		t.Fatalf("MoveFromUCI: %v", err)
	}
	if !m.Has(board.FlagEnPassant) || m.Captured != board.BlackPawn {
		t.Fatalf("e5d6 flags %06b captured %v", m.Flags, m.Captured)
	}
	p.MakeMove(m)
	if p.PieceAt(bb.D5) != board.NoPiece || p.PieceAt(bb.D6) != board.WhitePawn {
		t.Fatalf("en passant left the board as\n%s", p)
	}
	p.UnmakeMove(m)
	if p.PieceAt(bb.D5) != board.BlackPawn || p.PieceAt(bb.E5) != board.WhitePawn {
		t.Fatalf("unmake of en passant left the board as\n%s", p)
	}

	play(t, p, "h2h3", "h7h6")
	if hasMove(p, "e5d6") {
		t.Fatalf("en passant must expire after one move")
	}
}

func TestEnPassantOnlyForSideToMove(t *testing.T) {
	p := mustFEN(t, "4k3/8/8/8/3p4/8/3PP3/4K3 w - - 0 1")
	play(t, p, "e2e4")
	for _, m := range p.LegalMoves(board.White, false) {
		if m.Has(board.FlagEnPassant) {
			t.Fatalf("en passant %v generated for the side not to move", m)
		}
	}
	if !hasMove(p, "d4e3") {
		t.Fatalf("black to move should be able to take en passant")
	}
}

func TestEnPassantDiscoveredCheckIsIllegal(t *testing.T) {
	// Taking en passant would clear the fifth rank between the king and the rook.
	p := mustFEN(t, "8/8/8/K2pP2r/8/8/8/7k w - d6 0 2")
	if hasMove(p, "e5d6") {
		t.Fatalf("e5d6 exposes the king along the rank")
	}
}

func TestCastlingPreconditions(t *testing.T) {
	cases := []struct {
		name      string
		fen       string
		kingside  bool
		queenside bool
	}{
		{"all clear", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", true, true},
		{"no rights", "r3k2r/8/8/8/8/8/8/R3K2R w kq - 0 1", false, false},
		{"in check", "4k3/8/8/8/4r3/8/8/R3K2R w KQ - 0 1", false, false},
		{"transit attacked", "4k3/8/8/8/5r2/8/8/R3K2R w KQ - 0 1", false, true},
		{"landing attacked", "4k3/8/8/8/6r1/8/8/R3K2R w KQ - 0 1", false, true},
		{"kingside path blocked", "4k3/8/8/8/8/8/8/R3KB1R w KQ - 0 1", false, true},
		{"queenside b-file blocked", "4k3/8/8/8/8/8/8/RN2K2R w KQ - 0 1", true, false},
		{"rook missing", "4k3/8/8/8/8/8/8/4K2R w KQ - 0 1", true, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := mustFEN(t, c.fen)
			if got := hasMove(p, "e1g1"); got != c.kingside {
				t.Fatalf("e1g1: got %v want %v", got, c.kingside)
			}
			if got := hasMove(p, "e1c1"); got != c.queenside {
				t.Fatalf("e1c1: got %v want %v", got, c.queenside)
			}
		})
	}
}

func TestCastlingExcludedOnRequest(t *testing.T) {
	p := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	for _, m := range p.LegalMoves(board.White, false) {
		if m.IsCastle() {
			t.Fatalf("castling move %v generated with castling disabled", m)
		}
	}
}

func TestCastlingMovesRook(t *testing.T) {
	p := mustFEN(t, "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1")
	play(t, p, "e8c8")
	if p.PieceAt(bb.D8) != board.BlackRook || p.PieceAt(bb.A8) != board.NoPiece || p.KingSquare(board.Black) != bb.C8 {
		t.Fatalf("queenside castle left\n%s", p)
	}
	if p.CastlingRights()&(board.BlackKingside|board.BlackQueenside) != 0 {
		t.Fatalf("black rights survive castling: %04b", p.CastlingRights())
	}
	if !p.HasCastled(board.Black) {
		t.Fatalf("castled flag not set")
	}
}

func TestPromotionsExpandStrongestFirst(t *testing.T) {
	p := mustFEN(t, "8/P6k/8/8/8/8/8/K7 w - - 0 1")
	var promos []board.PieceType
	for _, m := range p.LegalMoves(board.White, true) {
		if m.From == bb.A7 {
			promos = append(promos, m.Promotion)
		}
	}
	want := []board.PieceType{board.Queen, board.Rook, board.Bishop, board.Knight}
	if len(promos) != len(want) {
		t.Fatalf("promotions: got %v want %v", promos, want)
	}
	for i := range want {
		if promos[i] != want[i] {
			t.Fatalf("promotions: got %v want %v", promos, want)
		}
	}
}

func TestLegalMovesKeepKingSafe(t *testing.T) {
	// The knight on d2 is pinned by the bishop on a5.
	p := mustFEN(t, "4k3/8/8/b7/8/8/3N4/4K3 w - - 0 1")
	if got := p.LegalMovesForSquare(bb.D2); got != bb.Empty {
		t.Fatalf("pinned knight has moves:\n%s", got)
	}
	for _, m := range p.LegalMoves(board.White, true) {
		p.MakeMove(m)
		if p.InCheck(board.White) {
			t.Fatalf("%v leaves the king in check", m)
		}
		p.UnmakeMove(m)
	}
}

func TestLegalMovesForSquare(t *testing.T) {
	p := board.NewPosition()
	if got, want := p.LegalMovesForSquare(bb.G1), bb.Empty.Set(bb.F3).Set(bb.H3); got != want {
		t.Fatalf("g1 targets:\n%s\nwant\n%s", got, want)
	}
	if got, want := p.LegalMovesForSquare(bb.E2), bb.Empty.Set(bb.E3).Set(bb.E4); got != want {
		t.Fatalf("e2 targets:\n%s\nwant\n%s", got, want)
	}
	if p.LegalMovesForSquare(bb.E4) != bb.Empty {
		t.Fatalf("empty square has targets")
	}
}

func TestCaptureMoves(t *testing.T) {
	p := mustFEN(t, kiwipete)
	caps := p.CaptureMoves(board.White)
	if len(caps) != 8 {
		t.Fatalf("kiwipete captures: got %d want 8", len(caps))
	}
	for _, m := range caps {
		if !m.IsCapture() {
			t.Fatalf("%v is not a capture", m)
		}
	}
}
