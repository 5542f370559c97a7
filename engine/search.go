package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"chessbot/board"
)

// Searcher runs negamax with alpha-beta pruning and a capture-only quiescence
// search. It is single-threaded and deterministic: the same position and
// settings always produce the same move and score.
type Searcher struct {
	eval     *Evaluator
	settings Settings
	tt       *TransTable
	logger   *log.Logger

	nodes    uint64
	killers  KillerStruct
	cutStats CutStatistics
}

// NewSearcher builds a searcher. logger may be nil; info lines are only written
// when settings.LogInfo is set.
func NewSearcher(eval *Evaluator, settings Settings, logger *log.Logger) *Searcher {
	s := &Searcher{eval: eval, settings: settings, logger: logger}
	if settings.HashMB > 0 {
		s.tt = NewTransTable(settings.HashMB)
	}
	return s
}

func (s *Searcher) Evaluator() *Evaluator { return s.eval }
func (s *Searcher) Settings() Settings    { return s.settings }

// Nodes returns the node count of the last search.
func (s *Searcher) Nodes() uint64 { return s.nodes }

// ClearHash empties the transposition table, if one is enabled.
func (s *Searcher) ClearHash() {
	if s.tt != nil {
		s.tt.Clear()
	}
}

// SearchResult is what one completed search depth produced.
type SearchResult struct {
	Move     board.Move
	Score    int
	Depth    int
	Nodes    uint64
	Duration time.Duration
}

// Negamax scores p for the side to move, searching depth plies before
// switching to quiescence. The window is fail-hard: results are clamped to
// [alpha, beta].
func (s *Searcher) Negamax(p *board.Position, depth, alpha, beta int) int {
	return s.negamax(p, depth, 0, alpha, beta)
}

func (s *Searcher) negamax(p *board.Position, depth, ply, alpha, beta int) int {
	s.nodes++
	us := p.SideToMove()

	if ply > 0 && p.IsRepetitionDraw() {
		return Clamp(DrawScore, alpha, beta)
	}
	moves := p.LegalMoves(us, true)
	if len(moves) == 0 {
		// Shorter mates score higher.
		if p.InCheck(us) {
			return Clamp(-MateScore+ply, alpha, beta)
		}
		return Clamp(DrawScore, alpha, beta)
	}
	if depth <= 0 {
		return s.quiesce(p, alpha, beta, s.settings.QuiesceDepth, ply)
	}

	hashMove := board.NullMove
	if s.tt != nil {
		if entry, ok := s.tt.getEntry(p.Hash()); ok {
			if usable, score := s.tt.useEntry(entry, depth, ply, alpha, beta); usable && ply > 0 {
				s.cutStats.TTCutoffs++
				return score
			}
			hashMove = entry.Move
		}
	}

	list := s.eval.scoreMoves(moves, hashMove, s.killers.killersAt(ply))
	flag := int8(AlphaFlag)
	best := board.NullMove
	for i := range list.moves {
		orderNextMove(i, &list)
		m := list.moves[i].move

		p.MakeMove(m)
		score := -s.negamax(p, depth-1, ply+1, -beta, -alpha)
		p.UnmakeMove(m)

		if score >= beta {
			s.cutStats.BetaCutoffs++
			s.killers.InsertKiller(m, ply)
			if s.tt != nil {
				s.tt.storeEntry(p.Hash(), depth, ply, m, beta, BetaFlag)
			}
			return beta
		}
		if score > alpha {
			alpha = score
			best = m
			flag = ExactFlag
		}
	}
	if s.tt != nil {
		s.tt.storeEntry(p.Hash(), depth, ply, best, alpha, flag)
	}
	return alpha
}

// Quiesce resolves captures until the position is quiet or depth runs out.
// The static evaluation is a lower bound since the side to move may decline
// every capture. A capture that mates scores as mate.
func (s *Searcher) Quiesce(p *board.Position, alpha, beta, depth int) int {
	return s.quiesce(p, alpha, beta, depth, 0)
}

func (s *Searcher) quiesce(p *board.Position, alpha, beta, depth, ply int) int {
	s.nodes++
	if us := p.SideToMove(); p.InCheck(us) && !p.HasLegalMoves(us) {
		return Clamp(-MateScore+ply, alpha, beta)
	}
	standPat := s.eval.Evaluate(p)
	if standPat >= beta {
		s.cutStats.QStandPatCutoffs++
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if depth <= 0 {
		return alpha
	}

	list := s.eval.scoreMoves(p.CaptureMoves(p.SideToMove()), board.NullMove, [2]board.Move{})
	for i := range list.moves {
		orderNextMove(i, &list)
		m := list.moves[i].move

		p.MakeMove(m)
		score := -s.quiesce(p, -beta, -alpha, depth-1, ply+1)
		p.UnmakeMove(m)

		if score >= beta {
			s.cutStats.QBetaCutoffs++
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// BestMove searches every root move to depth and returns the best one with its
// score. Depth 0 falls back to OneDeepMove. With no legal moves it returns
// NullMove and the static evaluation.
func (s *Searcher) BestMove(p *board.Position, depth int) (board.Move, int) {
	if depth <= 0 {
		return s.OneDeepMove(p)
	}
	s.nodes = 0
	s.killers.ClearKillers()
	s.resetCutStats()
	moves := p.LegalMoves(p.SideToMove(), true)
	if len(moves) == 0 {
		return board.NullMove, s.eval.StaticEvaluation(p)
	}

	hashMove := board.NullMove
	if s.tt != nil {
		if entry, ok := s.tt.getEntry(p.Hash()); ok {
			hashMove = entry.Move
		}
	}

	list := s.eval.scoreMoves(moves, hashMove, [2]board.Move{})
	alpha, beta := -MaxScore, MaxScore
	best, bestScore := board.NullMove, -MaxScore-1
	for i := range list.moves {
		orderNextMove(i, &list)
		m := list.moves[i].move

		p.MakeMove(m)
		score := -s.negamax(p, depth-1, 1, -beta, -alpha)
		p.UnmakeMove(m)

		if score > bestScore {
			best, bestScore = m, score
		}
		if score > alpha {
			alpha = score
		}
	}
	if s.tt != nil {
		s.tt.storeEntry(p.Hash(), depth, 0, best, bestScore, ExactFlag)
	}
	return best, bestScore
}

// OneDeepMove picks the move after which the opponent's static evaluation is
// lowest, without searching any reply.
func (s *Searcher) OneDeepMove(p *board.Position) (board.Move, int) {
	s.nodes = 0
	moves := s.eval.SortedLegalMoves(p, p.SideToMove())
	if len(moves) == 0 {
		return board.NullMove, s.eval.StaticEvaluation(p)
	}
	best, bestScore := board.NullMove, -MaxScore-1
	for _, m := range moves {
		s.nodes++
		p.MakeMove(m)
		score := -s.eval.StaticEvaluation(p)
		p.UnmakeMove(m)
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best, bestScore
}

// IterativeDeepening searches from MinDepth up to MaxDepth. The budget and ctx
// are only consulted between depths: a depth that has started always
// finishes, so the returned move is always from a complete search.
func (s *Searcher) IterativeDeepening(ctx context.Context, p *board.Position, budget time.Duration) SearchResult {
	start := time.Now()
	deadline := start.Add(budget)
	first := max(s.settings.MinDepth, 1)

	var result SearchResult
	for depth := first; depth <= max(s.settings.MaxDepth, first); depth++ {
		if depth > first && (ctx.Err() != nil || !time.Now().Before(deadline)) {
			break
		}
		iterStart := time.Now()
		m, score := s.BestMove(p, depth)
		result = SearchResult{
			Move:     m,
			Score:    score,
			Depth:    depth,
			Nodes:    s.nodes,
			Duration: time.Since(iterStart),
		}
		s.logInfo(result)
		if m.IsNull() || Abs(score) > Checkmate {
			break
		}
	}
	s.dumpCutStats()
	return result
}

// Search is the fixed-depth counterpart of IterativeDeepening.
func (s *Searcher) Search(p *board.Position, depth int) SearchResult {
	start := time.Now()
	m, score := s.BestMove(p, depth)
	result := SearchResult{Move: m, Score: score, Depth: depth, Nodes: s.nodes, Duration: time.Since(start)}
	s.logInfo(result)
	s.dumpCutStats()
	return result
}

func (s *Searcher) logInfo(r SearchResult) {
	if !s.settings.LogInfo || s.logger == nil {
		return
	}
	s.logger.Println(
		"info depth", r.Depth,
		"score", scoreString(r.Score),
		"nodes", r.Nodes,
		"time", r.Duration.Milliseconds(),
		"pv", r.Move,
	)
}

// scoreString formats a score as "cp N" or, for mates, "mate N" in moves.
func scoreString(score int) string {
	switch {
	case score > Checkmate:
		return fmt.Sprintf("mate %d", (MateScore-score+1)/2)
	case score < -Checkmate:
		return fmt.Sprintf("mate -%d", (MateScore+score+1)/2)
	default:
		return fmt.Sprintf("cp %d", score)
	}
}
