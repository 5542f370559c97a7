// Package verify checks the board package's move generator against an
// independent implementation.
package verify

import (
	"fmt"
	"strings"

	"chessbot/board"

	"github.com/dylhunn/dragontoothmg"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Mismatch is a node where the two generators disagree.
type Mismatch struct {
	FEN     string
	Path    []string
	Missing []string // reference moves we do not generate
	Extra   []string // moves we generate that the reference rejects
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("movegen mismatch at %q after [%s]: missing %v, extra %v",
		m.FEN, strings.Join(m.Path, " "), m.Missing, m.Extra)
}

// ReferenceDivide counts leaf nodes below each root move using dragontoothmg.
func ReferenceDivide(fen string, depth int) (map[string]uint64, error) {
	if _, err := board.ParseFEN(fen); err != nil {
		return nil, err
	}
	b := dragontoothmg.ParseFen(fen)
	out := make(map[string]uint64)
	if depth <= 0 {
		return out, nil
	}
	for _, m := range b.GenerateLegalMoves() {
		undo := b.Apply(m)
		out[m.String()] = referencePerft(&b, depth-1)
		undo()
	}
	return out, nil
}

func referencePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		undo := b.Apply(m)
		nodes += referencePerft(b, depth-1)
		undo()
	}
	return nodes
}

// Diff is a root move whose subtree count differs between the generators.
// A zero count means the move is missing on that side.
type Diff struct {
	Move      string
	Ours      uint64
	Reference uint64
}

// CompareDivide runs a perft divide on both generators and returns the root
// moves whose counts differ, sorted by move.
func CompareDivide(fen string, depth int) ([]Diff, error) {
	p, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	ours := board.PerftDivide(p, depth)
	ref, err := ReferenceDivide(fen, depth)
	if err != nil {
		return nil, err
	}
	var diffs []Diff
	seen := make(map[string]bool)
	for _, src := range []map[string]uint64{ours, ref} {
		for _, mv := range maps.Keys(src) {
			if seen[mv] {
				continue
			}
			seen[mv] = true
			if ours[mv] != ref[mv] {
				diffs = append(diffs, Diff{Move: mv, Ours: ours[mv], Reference: ref[mv]})
			}
		}
	}
	slices.SortFunc(diffs, func(a, b Diff) int { return strings.Compare(a.Move, b.Move) })
	return diffs, nil
}

// CrossCheck walks every line from fen to depth and compares the legal move
// sets at each node. It returns the first *Mismatch found, or nil.
func CrossCheck(fen string, depth int) error {
	p, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	return crossCheck(p, nil, depth)
}

func crossCheck(p *board.Position, path []string, depth int) error {
	fen := p.ToFEN()
	ref := dragontoothmg.ParseFen(fen)
	want := make(map[string]bool)
	for _, m := range ref.GenerateLegalMoves() {
		want[m.String()] = true
	}

	moves := p.LegalMoves(p.SideToMove(), true)
	got := make(map[string]bool, len(moves))
	for _, m := range moves {
		got[m.String()] = true
	}
	if mm := compareSets(fen, path, got, want); mm != nil {
		return mm
	}
	if depth <= 1 {
		return nil
	}
	for _, m := range moves {
		p.MakeMove(m)
		err := crossCheck(p, append(path, m.String()), depth-1)
		p.UnmakeMove(m)
		if err != nil {
			return err
		}
	}
	return nil
}

func compareSets(fen string, path []string, got, want map[string]bool) *Mismatch {
	var missing, extra []string
	for mv := range want {
		if !got[mv] {
			missing = append(missing, mv)
		}
	}
	for mv := range got {
		if !want[mv] {
			extra = append(extra, mv)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	slices.Sort(missing)
	slices.Sort(extra)
	return &Mismatch{FEN: fen, Path: slices.Clone(path), Missing: missing, Extra: extra}
}
