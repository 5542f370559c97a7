package engine

import (
	"math/bits"

	"chessbot/attacks"
	bb "chessbot/bitboard"
	"chessbot/board"
)

const (
	MaxScore  = 32500
	MateScore = 32000
	// Scores beyond Checkmate in magnitude are mate scores.
	Checkmate = 20000
	DrawScore = 0
)

// EvalConfig holds every evaluation weight. It is copied into an Evaluator and
// never changed afterwards.
type EvalConfig struct {
	PieceValues    [7]int
	PieceSquare    [7][64]int
	KingMiddlegame [64]int
	KingEndgame    [64]int
	KingDistance   [8]int

	BishopPair       int
	CastlingRight    int
	Castled          int
	DoubledPawn      int
	IsolatedPawn     int
	PassedPawn       [8]int
	RookOpenFile     int
	RookSemiOpenFile int
	KnightOutpost    int
}

type Evaluator struct {
	cfg EvalConfig
}

func NewEvaluator(cfg EvalConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

func (e *Evaluator) Config() EvalConfig { return e.cfg }

// PieceValue returns the material value of a piece type.
func (e *Evaluator) PieceValue(pt board.PieceType) int { return e.cfg.PieceValues[pt] }

var (
	adjacentFiles [8]bb.Bitboard
	// forwardSpan[c][sq]: squares ahead of sq on its file and both neighbours.
	forwardSpan [2][64]bb.Bitboard
)

func init() {
	for f := 0; f < 8; f++ {
		adjacentFiles[f] = bb.FileMask(f-1) | bb.FileMask(f+1)
	}
	for sq := bb.A1; sq <= bb.H8; sq++ {
		files := adjacentFiles[sq.File()] | bb.FileMask(sq.File())
		for r := 0; r < 8; r++ {
			if r > sq.Rank() {
				forwardSpan[board.White][sq] |= files.Rank(r)
			}
			if r < sq.Rank() {
				forwardSpan[board.Black][sq] |= files.Rank(r)
			}
		}
	}
}

// tableIndex maps a square to the piece-square layout for color c.
func tableIndex(c board.Color, sq bb.Square) int {
	if c == board.White {
		return int(sq) ^ 56
	}
	return int(sq)
}

// relativeRank counts ranks from c's own back rank.
func relativeRank(c board.Color, sq bb.Square) int {
	if c == board.White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

func kingDistance(a, b bb.Square) int {
	return max(Abs(a.File()-b.File()), Abs(a.Rank()-b.Rank()))
}

// Evaluate scores p from the side to move's point of view without looking
// for mate, stalemate or repetition.
func (e *Evaluator) Evaluate(p *board.Position) int {
	score := e.evaluateSide(p, board.White) - e.evaluateSide(p, board.Black)
	if p.SideToMove() == board.Black {
		return -score
	}
	return score
}

// StaticEvaluation is Evaluate with terminal positions resolved: the side to
// move scores -MateScore when mated and DrawScore when stalemated or when the
// position has occurred three times.
func (e *Evaluator) StaticEvaluation(p *board.Position) int {
	us := p.SideToMove()
	if !p.HasLegalMoves(us) {
		if p.InCheck(us) {
			return -MateScore
		}
		return DrawScore
	}
	if p.IsRepetitionDraw() {
		return DrawScore
	}
	return e.Evaluate(p)
}

func (e *Evaluator) evaluateSide(p *board.Position, c board.Color) int {
	cfg := &e.cfg
	them := c.Other()
	score := 0

	for pt := board.Pawn; pt <= board.Queen; pt++ {
		pieces := p.Pieces(c, pt)
		score += cfg.PieceValues[pt] * pieces.Count()
		for pieces != 0 {
			score += cfg.PieceSquare[pt][tableIndex(c, pieces.PopLSB())]
		}
	}

	// The king table slides from middlegame to endgame as the enemy loses pieces.
	ksq := p.KingSquare(c)
	enemy := (p.Occupancy(them) &^ p.Pieces(them, board.King)).Count()
	ki := tableIndex(c, ksq)
	score += (cfg.KingMiddlegame[ki]*enemy + cfg.KingEndgame[ki]*(16-enemy)) / 16

	if p.Pieces(c, board.Bishop).Count() >= 2 {
		score += cfg.BishopPair
	}
	own := p.CastlingRights() & (board.WhiteKingside | board.WhiteQueenside)
	if c == board.Black {
		own = p.CastlingRights() & (board.BlackKingside | board.BlackQueenside)
	}
	score += cfg.CastlingRight * bits.OnesCount8(uint8(own))
	if p.HasCastled(c) {
		score += cfg.Castled
	}

	score += e.pawnStructure(p, c)
	score += e.pieceActivity(p, c)

	if e.mopUp(p, c) {
		score += cfg.KingDistance[kingDistance(ksq, p.KingSquare(them))]
	}
	return score
}

func (e *Evaluator) pawnStructure(p *board.Position, c board.Color) int {
	cfg := &e.cfg
	pawns := p.Pieces(c, board.Pawn)
	enemyPawns := p.Pieces(c.Other(), board.Pawn)
	score := 0
	for f := 0; f < 8; f++ {
		n := pawns.File(f).Count()
		if n == 0 {
			continue
		}
		if n > 1 {
			score += cfg.DoubledPawn * (n - 1)
		}
		if pawns&adjacentFiles[f] == 0 {
			score += cfg.IsolatedPawn * n
		}
	}
	for b := pawns; b != 0; {
		sq := b.PopLSB()
		if forwardSpan[c][sq]&enemyPawns == 0 {
			score += cfg.PassedPawn[relativeRank(c, sq)]
		}
	}
	return score
}

func (e *Evaluator) pieceActivity(p *board.Position, c board.Color) int {
	cfg := &e.cfg
	them := c.Other()
	pawns := p.Pieces(c, board.Pawn)
	enemyPawns := p.Pieces(them, board.Pawn)
	score := 0

	for rooks := p.Pieces(c, board.Rook); rooks != 0; {
		f := rooks.PopLSB().File()
		switch {
		case (pawns|enemyPawns).File(f) == 0:
			score += cfg.RookOpenFile
		case pawns.File(f) == 0:
			score += cfg.RookSemiOpenFile
		}
	}

	// An outpost is a square on ranks 4-6 guarded by a pawn that no enemy
	// pawn can ever challenge.
	for knights := p.Pieces(c, board.Knight); knights != 0; {
		sq := knights.PopLSB()
		rr := relativeRank(c, sq)
		if rr < 3 || rr > 5 {
			continue
		}
		guarded := attacks.Pawn(int(them), sq)&pawns != 0
		challengers := forwardSpan[c][sq] &^ bb.FileMask(sq.File()) & enemyPawns
		if guarded && challengers == 0 {
			score += cfg.KnightOutpost
		}
	}
	return score
}

// mopUp reports whether c is hunting a bare or nearly bare king: the opponent
// has no pawns, rooks or queens and at most one minor piece, while c keeps
// enough material to mate.
func (e *Evaluator) mopUp(p *board.Position, c board.Color) bool {
	them := c.Other()
	if p.Pieces(them, board.Pawn)|p.Pieces(them, board.Rook)|p.Pieces(them, board.Queen) != 0 {
		return false
	}
	if (p.Pieces(them, board.Knight) | p.Pieces(them, board.Bishop)).Count() > 1 {
		return false
	}
	heavy := p.Pieces(c, board.Rook) | p.Pieces(c, board.Queen)
	minors := p.Pieces(c, board.Knight) | p.Pieces(c, board.Bishop)
	return heavy != 0 || minors.Count() >= 2
}
