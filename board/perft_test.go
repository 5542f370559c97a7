package board_test

import (
	"testing"

	"chessbot/board"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func TestPerft(t *testing.T) {
	cases := []struct {
		name  string
		fen   string
		nodes []uint64
	}{
		{"initial", board.StartFEN, []uint64{20, 400, 8902, 197281}},
		{"kiwipete", kiwipete, []uint64{48, 2039}},
		{"endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []uint64{14, 191, 2812}},
		{"promotions", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []uint64{6, 264, 9467}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := board.ParseFEN(c.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			for i, want := range c.nodes {
				depth := i + 1
				if testing.Short() && want > 10000 {
					continue
				}
				if got := board.Perft(p, depth); got != want {
					t.Fatalf("perft(%d): got %d want %d", depth, got, want)
				}
			}
			if p.ToFEN() != c.fen {
				t.Fatalf("position changed by perft: %s", p.ToFEN())
			}
		})
	}
}

func TestPerftDivideSumsToPerft(t *testing.T) {
	p, err := board.ParseFEN(kiwipete)
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	div := board.PerftDivide(p, 2)
	if len(div) != 48 {
		t.Fatalf("divide root moves: got %d want 48", len(div))
	}
	var sum uint64
	for _, n := range div {
		sum += n
	}
	if sum != 2039 {
		t.Fatalf("divide sum: got %d want 2039", sum)
	}
	if div["e1g1"] == 0 || div["e1c1"] == 0 {
		t.Fatalf("castling moves missing from divide: %v", div)
	}
}
