package attacks

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand"

	bb "chessbot/bitboard"
)

// DefaultSeed drives the magic search used by package init. Any seed yields
// correct tables; a fixed one keeps start-up deterministic.
const DefaultSeed int64 = 0x5EEDC0DE

const maxMagicAttempts = 10_000_000

var ErrMagicCollision = errors.New("attacks: destructive magic index collision")

// Magic is the per-square lookup for one slider type. The attack set for an
// occupancy is Attacks[((occ & Mask) * Number) >> Shift].
type Magic struct {
	Mask    bb.Bitboard
	Number  uint64
	Shift   uint8
	Attacks []bb.Bitboard
}

func (m *Magic) index(occ bb.Bitboard) uint64 {
	return (uint64(occ&m.Mask) * m.Number) >> m.Shift
}

// Tables is a complete set of rook and bishop magics.
type Tables struct {
	Rook   [64]Magic
	Bishop [64]Magic
}

func (t *Tables) RookAttacks(sq bb.Square, occ bb.Bitboard) bb.Bitboard {
	m := &t.Rook[sq]
	return m.Attacks[m.index(occ)]
}

func (t *Tables) BishopAttacks(sq bb.Square, occ bb.Bitboard) bb.Bitboard {
	m := &t.Bishop[sq]
	return m.Attacks[m.index(occ)]
}

type slider struct {
	name string
	mask func(bb.Square) bb.Bitboard
	slow func(bb.Square, bb.Bitboard) bb.Bitboard
}

var (
	rookSlider   = slider{"rook", RookMask, SlowRook}
	bishopSlider = slider{"bishop", BishopMask, SlowBishop}
)

// Build searches a magic multiplier for every square with a PRNG seeded by
// seed, then validates the result.
func Build(seed int64) (*Tables, error) {
	rng := rand.New(rand.NewSource(seed))
	t := &Tables{}
	for sq := bb.A1; sq <= bb.H8; sq++ {
		if err := findMagic(rng, &t.Rook[sq], sq, rookSlider); err != nil {
			return nil, err
		}
		if err := findMagic(rng, &t.Bishop[sq], sq, bishopSlider); err != nil {
			return nil, err
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromNumbers builds tables from known multipliers. A multiplier that sends two
// blocker sets with different attacks to one slot fails with ErrMagicCollision.
func FromNumbers(rook, bishop [64]uint64) (*Tables, error) {
	t := &Tables{}
	for sq := bb.A1; sq <= bb.H8; sq++ {
		if err := fill(&t.Rook[sq], sq, rook[sq], rookSlider); err != nil {
			return nil, err
		}
		if err := fill(&t.Bishop[sq], sq, bishop[sq], bishopSlider); err != nil {
			return nil, err
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate replays every blocker subset of every square against the ray-cast
// reference.
func (t *Tables) Validate() error {
	for sq := bb.A1; sq <= bb.H8; sq++ {
		if err := validateSquare(&t.Rook[sq], sq, rookSlider); err != nil {
			return err
		}
		if err := validateSquare(&t.Bishop[sq], sq, bishopSlider); err != nil {
			return err
		}
	}
	return nil
}

func validateSquare(m *Magic, sq bb.Square, s slider) error {
	if m.Mask != s.mask(sq) || len(m.Attacks) != 1<<m.Mask.Count() {
		return fmt.Errorf("%w: %s %v has a malformed table", ErrMagicCollision, s.name, sq)
	}
	sub := bb.Empty
	for {
		if got, want := m.Attacks[m.index(sub)], s.slow(sq, sub); got != want {
			return fmt.Errorf("%w: %s %v blockers %#x", ErrMagicCollision, s.name, sq, uint64(sub))
		}
		sub = (sub - m.Mask) & m.Mask
		if sub == 0 {
			return nil
		}
	}
}

// subsets enumerates every subset of mask (carry-rippler) with its reference attacks.
func subsets(sq bb.Square, mask bb.Bitboard, s slider) ([]bb.Bitboard, []bb.Bitboard) {
	n := 1 << mask.Count()
	occ := make([]bb.Bitboard, 0, n)
	att := make([]bb.Bitboard, 0, n)
	sub := bb.Empty
	for {
		occ = append(occ, sub)
		att = append(att, s.slow(sq, sub))
		sub = (sub - mask) & mask
		if sub == 0 {
			return occ, att
		}
	}
}

func fill(m *Magic, sq bb.Square, number uint64, s slider) error {
	mask := s.mask(sq)
	occ, att := subsets(sq, mask, s)
	m.Mask = mask
	m.Number = number
	m.Shift = uint8(64 - mask.Count())
	m.Attacks = make([]bb.Bitboard, len(occ))
	used := make([]bool, len(occ))
	for i := range occ {
		idx := m.index(occ[i])
		if used[idx] && m.Attacks[idx] != att[i] {
			return fmt.Errorf("%w: %s %v magic %#x", ErrMagicCollision, s.name, sq, number)
		}
		used[idx] = true
		m.Attacks[idx] = att[i]
	}
	return nil
}

func findMagic(rng *rand.Rand, m *Magic, sq bb.Square, s slider) error {
	mask := s.mask(sq)
	occ, att := subsets(sq, mask, s)
	shift := uint8(64 - mask.Count())
	table := make([]bb.Bitboard, len(occ))
	// epoch[i] == attempt marks slot i as written during the current attempt.
	epoch := make([]int, len(occ))

	for attempt := 1; attempt <= maxMagicAttempts; attempt++ {
		number := rng.Uint64() & rng.Uint64() & rng.Uint64()
		if bits.OnesCount64((uint64(mask)*number)&0xFF00000000000000) < 6 {
			continue
		}
		ok := true
		for i := range occ {
			idx := (uint64(occ[i]) * number) >> shift
			if epoch[idx] != attempt {
				epoch[idx] = attempt
				table[idx] = att[i]
			} else if table[idx] != att[i] {
				ok = false
				break
			}
		}
		if ok {
			m.Mask = mask
			m.Number = number
			m.Shift = shift
			m.Attacks = table
			return nil
		}
	}
	return fmt.Errorf("%w: no %s magic found for %v", ErrMagicCollision, s.name, sq)
}

// Numbers returns the multipliers of t, suitable for FromNumbers.
func (t *Tables) Numbers() (rook, bishop [64]uint64) {
	for sq := range t.Rook {
		rook[sq] = t.Rook[sq].Number
		bishop[sq] = t.Bishop[sq].Number
	}
	return rook, bishop
}
