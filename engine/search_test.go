package engine

import (
	"context"
	"testing"
	"time"

	"chessbot/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	p, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parse FEN %q: %v", fen, err)
	}
	return p
}

func testSearcher(s Settings) *Searcher {
	s.LogInfo = false
	return NewSearcher(NewEvaluator(DefaultEvalConfig()), s, nil)
}

func TestSearchIsDeterministic(t *testing.T) {
	p := board.NewPosition()
	a := testSearcher(DefaultSettings()).Search(p.Clone(), 3)
	b := testSearcher(DefaultSettings()).Search(p.Clone(), 3)
	if a.Move != b.Move || a.Score != b.Score || a.Nodes != b.Nodes {
		t.Fatalf("searches differ: %v %d %d vs %v %d %d", a.Move, a.Score, a.Nodes, b.Move, b.Score, b.Nodes)
	}
}

func TestSearchLeavesPositionUnchanged(t *testing.T) {
	p := mustFEN(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	before := p.ToFEN()
	hash := p.Hash()
	testSearcher(DefaultSettings()).Search(p, 2)
	if p.ToFEN() != before || p.Hash() != hash {
		t.Fatalf("position changed: %s", p.ToFEN())
	}
}

func TestSearchTakesHangingQueen(t *testing.T) {
	for depth := 0; depth <= 3; depth++ {
		p := mustFEN(t, "4k3/8/8/8/3q4/8/8/3RK3 w - - 0 1")
		m, _ := testSearcher(DefaultSettings()).BestMove(p, depth)
		if m.String() != "d1d4" {
			t.Fatalf("depth %d: got %s, want d1d4", depth, m)
		}
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	p := mustFEN(t, "7k/6pp/6Q1/8/8/2B5/8/6K1 w - - 0 1")
	for depth := 1; depth <= 3; depth++ {
		m, score := testSearcher(DefaultSettings()).BestMove(p, depth)
		if score <= Checkmate {
			t.Fatalf("depth %d: score %d is not a mate score", depth, score)
		}
		p.MakeMove(m)
		if st := p.GameStatus(board.Black); st != board.Loss {
			t.Fatalf("depth %d: %s does not mate, status %v", depth, m, st)
		}
		p.UnmakeMove(m)
	}
}

func TestBestMoveWithoutLegalMoves(t *testing.T) {
	p := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	m, score := testSearcher(DefaultSettings()).BestMove(p, 3)
	if !m.IsNull() || score != DrawScore {
		t.Fatalf("stalemate: got %v %d", m, score)
	}
}

func TestNegamaxScoresMateByPly(t *testing.T) {
	// White is already mated.
	p := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	s := testSearcher(DefaultSettings())
	if got := s.Negamax(p, 2, -MaxScore, MaxScore); got != -MateScore {
		t.Fatalf("Negamax = %d, want %d", got, -MateScore)
	}
	if got := s.Negamax(p, 2, -100, 100); got != -100 {
		t.Fatalf("fail-hard Negamax = %d, want -100", got)
	}
}

func TestQuiesceStandPat(t *testing.T) {
	s := testSearcher(DefaultSettings())
	p := board.NewPosition()
	if got := s.Quiesce(p, -MaxScore, MaxScore, 4); got != s.Evaluator().Evaluate(p) {
		t.Fatalf("quiet position: Quiesce = %d, Evaluate = %d", got, s.Evaluator().Evaluate(p))
	}
	p = mustFEN(t, "4k3/8/8/8/3q4/8/8/3RK3 w - - 0 1")
	if got := s.Quiesce(p, -MaxScore, MaxScore, 4); got <= 0 {
		t.Fatalf("Quiesce = %d, want the queen capture to show", got)
	}
}

func TestIterativeDeepeningStopsAtMaxDepth(t *testing.T) {
	st := DefaultSettings()
	st.MinDepth, st.MaxDepth = 1, 3
	r := testSearcher(st).IterativeDeepening(context.Background(), board.NewPosition(), time.Hour)
	if r.Depth != 3 || r.Move.IsNull() {
		t.Fatalf("got depth %d move %v", r.Depth, r.Move)
	}
}

func TestIterativeDeepeningCompletesFirstDepth(t *testing.T) {
	st := DefaultSettings()
	st.MinDepth, st.MaxDepth = 2, 6
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := testSearcher(st).IterativeDeepening(ctx, board.NewPosition(), 0)
	if r.Depth != 2 || r.Move.IsNull() {
		t.Fatalf("got depth %d move %v, want a complete depth 2 result", r.Depth, r.Move)
	}
}

func TestTranspositionTableKeepsResult(t *testing.T) {
	st := DefaultSettings()
	p := mustFEN(t, "4k3/8/8/8/3q4/8/8/3RK3 w - - 0 1")
	plain := testSearcher(st).Search(p, 3)
	st.HashMB = 1
	hashed := testSearcher(st)
	first := hashed.Search(p, 3)
	second := hashed.Search(p, 3)
	if first.Move.String() != plain.Move.String() || second.Move.String() != plain.Move.String() {
		t.Fatalf("moves differ: %v %v %v", plain.Move, first.Move, second.Move)
	}
	hashed.ClearHash()
}

func TestScoreString(t *testing.T) {
	cases := map[int]string{
		35:             "cp 35",
		-120:           "cp -120",
		MateScore - 1:  "mate 1",
		MateScore - 3:  "mate 2",
		-MateScore + 2: "mate -1",
	}
	for score, want := range cases {
		if got := scoreString(score); got != want {
			t.Fatalf("scoreString(%d) = %q, want %q", score, got, want)
		}
	}
}

func TestQuiesceSeesMateByCapture(t *testing.T) {
	s := testSearcher(DefaultSettings())
	p := mustFEN(t, "3n3k/6pp/8/8/8/8/8/K2R4 w - - 0 1")
	if got := s.Quiesce(p, -MaxScore, MaxScore, 4); got != MateScore-1 {
		t.Fatalf("Quiesce = %d, want mate after Rxd8 (%d)", got, MateScore-1)
	}
	mated := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if got := s.Quiesce(mated, -MaxScore, MaxScore, 4); got != -MateScore {
		t.Fatalf("Quiesce on a mated side = %d, want %d", got, -MateScore)
	}
}

func TestSearchTakesRepetitionWhenLosing(t *testing.T) {
	const fen = "4k1n1/8/8/8/8/8/8/3QK3 w - - 0 1"
	p := mustFEN(t, fen)
	for _, uci := range []string{"d1d2", "g8f6", "d2d1", "f6g8", "d1d2", "g8f6", "d2d1"} {
		m, err := p.MoveFromUCI(uci)
		if err != nil {
			t.Fatalf("%s: %v", uci, err)
		}
		p.MakeMove(m)
	}

	s := testSearcher(DefaultSettings())
	if got := s.Negamax(p, 1, -MaxScore, MaxScore); got != DrawScore {
		t.Fatalf("Negamax = %d, want the repetition draw %d", got, DrawScore)
	}
	if m, score := s.BestMove(p, 1); m.String() != "f6g8" || score != DrawScore {
		t.Fatalf("BestMove = %v %d, want f6g8 %d", m, score, DrawScore)
	}

	// Without the history the same placement is simply lost.
	fresh := mustFEN(t, p.ToFEN())
	if got := s.Negamax(fresh, 1, -MaxScore, MaxScore); got >= DrawScore {
		t.Fatalf("Negamax without history = %d, want a losing score", got)
	}
}
