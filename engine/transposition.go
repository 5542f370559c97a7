package engine

import (
	"unsafe"

	"chessbot/board"
)

const (
	// Flags
	AlphaFlag = iota
	BetaFlag
	ExactFlag

	clusterSize = 4
)

// TransTable caches search results by position hash. Each hash maps to a
// cluster of entries.
type TransTable struct {
	entries      []TTEntry
	clusterCount uint64
}

type TTEntry struct {
	Hash  uint64
	Depth int8
	Move  board.Move
	Score int32
	Flag  int8
}

// NewTransTable allocates a table of roughly sizeMB megabytes.
func NewTransTable(sizeMB int) *TransTable {
	entrySize := uint64(unsafe.Sizeof(TTEntry{}))
	clusterCount := uint64(sizeMB) * 1024 * 1024 / (entrySize * clusterSize)
	if clusterCount == 0 {
		clusterCount = 1
	}
	return &TransTable{
		entries:      make([]TTEntry, clusterCount*clusterSize),
		clusterCount: clusterCount,
	}
}

func (tt *TransTable) Clear() {
	clear(tt.entries)
}

func (tt *TransTable) getEntry(hash uint64) (*TTEntry, bool) {
	start := int(hash%tt.clusterCount) * clusterSize
	for i := 0; i < clusterSize; i++ {
		if next := &tt.entries[start+i]; next.Hash == hash {
			return next, true
		}
	}
	return nil, false
}

// useEntry returns a score usable at this node, if the entry is deep enough
// and its bound fits the window. Mate scores are stored relative to the node
// and converted back to the current ply.
func (tt *TransTable) useEntry(e *TTEntry, depth, ply, alpha, beta int) (bool, int) {
	if e == nil || int(e.Depth) < depth {
		return false, 0
	}
	score := int(e.Score)
	if score > Checkmate {
		score -= ply
	} else if score < -Checkmate {
		score += ply
	}
	switch e.Flag {
	case ExactFlag:
		return true, Clamp(score, alpha, beta)
	case AlphaFlag:
		if score <= alpha {
			return true, alpha
		}
	case BetaFlag:
		if score >= beta {
			return true, beta
		}
	}
	return false, 0
}

func (tt *TransTable) storeEntry(hash uint64, depth, ply int, m board.Move, score int, flag int8) {
	base := int(hash%tt.clusterCount) * clusterSize

	if score > Checkmate {
		score += ply
	} else if score < -Checkmate {
		score -= ply
	}

	target := -1
	// Prefer updating the same position, then an empty slot.
	for i := 0; i < clusterSize && target < 0; i++ {
		if tt.entries[base+i].Hash == hash {
			target = base + i
		}
	}
	for i := 0; i < clusterSize && target < 0; i++ {
		if tt.entries[base+i].Hash == 0 {
			target = base + i
		}
	}
	// Otherwise replace the shallowest entry in the cluster.
	if target < 0 {
		target = base
		for i := 1; i < clusterSize; i++ {
			if tt.entries[base+i].Depth < tt.entries[target].Depth {
				target = base + i
			}
		}
	}

	tt.entries[target] = TTEntry{
		Hash:  hash,
		Depth: int8(depth),
		Move:  m,
		Score: int32(score),
		Flag:  flag,
	}
}
