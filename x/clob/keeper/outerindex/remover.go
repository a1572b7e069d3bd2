package outerindex

import (
	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// Remover bulk-removes outer indices from arbitrary positions
// (spec.md §4.3). Find/Remove calls may arrive in any order; Commit
// writes back whatever remains, still farthest-first, via the same
// per-slot skip-unchanged-write discipline as Inserter (I6).
type Remover struct {
	backend slotstore.Backend
	side    types.Side

	existing []uint16 // current active prefix, in storage (farthest-first) order
	removed  map[uint16]bool
}

func NewRemover(backend slotstore.Backend, side types.Side, count uint32) *Remover {
	rm := &Remover{backend: backend, side: side, removed: make(map[uint16]bool)}

	r := NewReader(backend, side, count)
	closestFirst := make([]uint16, 0, count)
	for {
		item, ok := r.Next()
		if !ok {
			break
		}
		closestFirst = append(closestFirst, item.Outer)
	}
	rm.existing = reverseUint16(closestFirst)
	return rm
}

// FindOuterIndex reports whether x is present among the indices not yet
// removed.
func (rm *Remover) FindOuterIndex(x uint16) bool {
	if rm.removed[x] {
		return false
	}
	for _, v := range rm.existing {
		if v == x {
			return true
		}
	}
	return false
}

// Remove locates x and, if found, drops it from the retained set.
func (rm *Remover) Remove(x uint16) bool {
	if !rm.FindOuterIndex(x) {
		return false
	}
	rm.removed[x] = true
	return true
}

// Commit writes the retained entries back, returning the new
// outer_index_count[side]. Positions at or beyond the new length are
// left untouched as ghost values — readers must never rely on them
// (spec.md §4.3, §9).
func (rm *Remover) Commit() uint32 {
	retained := make([]uint16, 0, len(rm.existing))
	for _, v := range rm.existing {
		if !rm.removed[v] {
			retained = append(retained, v)
		}
	}

	writeSlots(rm.backend, rm.side, retained)
	return uint32(len(retained))
}
