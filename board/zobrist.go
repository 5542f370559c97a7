package board

import (
	"math/rand"

	bb "chessbot/bitboard"
)

// ZobristSeed seeds the key tables shared by every Position.
const ZobristSeed int64 = 0xC0DE

// Zobrist holds one random key per (piece, square), per castling-rights state,
// per en-passant file, plus one for Black to move.
type Zobrist struct {
	piece    [16][64]uint64
	castling [16]uint64
	ep       [8]uint64
	side     uint64
}

var keys = NewZobrist(ZobristSeed)

// NewZobrist fills a key set from a PRNG seeded with seed.
func NewZobrist(seed int64) *Zobrist {
	rnd := rand.New(rand.NewSource(seed))
	z := &Zobrist{}
	for pc := 0; pc < 16; pc++ {
		for sq := 0; sq < 64; sq++ {
			z.piece[pc][sq] = rnd.Uint64()
		}
	}
	for cr := range z.castling {
		z.castling[cr] = rnd.Uint64()
	}
	for f := range z.ep {
		z.ep[f] = rnd.Uint64()
	}
	z.side = rnd.Uint64()
	return z
}

// Hash computes the key of p from scratch.
func (z *Zobrist) Hash(p *Position) uint64 {
	var key uint64
	for sq := bb.A1; sq <= bb.H8; sq++ {
		if pc := p.mailbox[sq]; pc != NoPiece {
			key ^= z.piece[pc][sq]
		}
	}
	if p.side == Black {
		key ^= z.side
	}
	key ^= z.castling[p.castling]
	if p.epFile != NoFile {
		key ^= z.ep[p.epFile]
	}
	return key
}

// ComputeHash recomputes the position key without touching the incremental one.
func (p *Position) ComputeHash() uint64 { return keys.Hash(p) }
