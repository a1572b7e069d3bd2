package outerindex

import (
	"sort"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// Inserter bulk-inserts new outer indices (spec.md §4.2). Prepare calls
// may arrive in any order; Commit re-sorts the full active prefix so the
// list comes back out farthest-from-centre-first regardless of the
// order indices were staged in. Each touched slot is still written
// through slotstore.CommitIfChanged, so positions whose value doesn't
// move cost nothing extra (I6).
type Inserter struct {
	backend slotstore.Backend
	side    types.Side

	existing []uint16 // current active prefix, in storage (farthest-first) order
	pending  []uint16 // newly staged outer indices
	seen     map[uint16]bool
}

// NewInserter starts an Inserter over side's outer-index list of the
// given current length.
func NewInserter(backend slotstore.Backend, side types.Side, count uint32) *Inserter {
	ins := &Inserter{backend: backend, side: side, seen: make(map[uint16]bool, count)}

	r := NewReader(backend, side, count)
	closestFirst := make([]uint16, 0, count)
	for {
		item, ok := r.Next()
		if !ok {
			break
		}
		closestFirst = append(closestFirst, item.Outer)
		ins.seen[item.Outer] = true
	}
	ins.existing = reverseUint16(closestFirst)
	return ins
}

// Prepare stages x for insertion, returning true iff x was newly queued
// (i.e. it was not already present in the list or already staged).
func (ins *Inserter) Prepare(x uint16) bool {
	if ins.seen[x] {
		return false
	}
	ins.seen[x] = true
	ins.pending = append(ins.pending, x)
	return true
}

// Commit writes the merged, farthest-first-sorted list back to storage
// and returns the new outer_index_count[side].
func (ins *Inserter) Commit() uint32 {
	merged := make([]uint16, 0, len(ins.existing)+len(ins.pending))
	merged = append(merged, ins.existing...)
	merged = append(merged, ins.pending...)
	sortFarthestFirst(ins.side, merged)

	writeSlots(ins.backend, ins.side, merged)
	return uint32(len(merged))
}

// sortFarthestFirst orders vals farthest-from-centre first, matching the
// storage convention used throughout this package.
func sortFarthestFirst(side types.Side, vals []uint16) {
	sort.Slice(vals, func(i, j int) bool {
		return side.Farther(types.Tick(vals[i]), types.Tick(vals[j]))
	})
}

// writeSlots writes vals (already in farthest-first order) starting at
// position 0, batched per ListSlot so each touched slot costs one Sload
// and at most one Sstore.
func writeSlots(backend slotstore.Backend, side types.Side, vals []uint16) {
	pos := 0
	for pos < len(vals) {
		slotIndex, _ := types.SlotIndexFor(uint32(pos))
		key := types.ListSlotKey(side, slotIndex)
		orig := types.DecodeListSlot(backend.Sload(key))
		val := orig
		for pos < len(vals) {
			si, relIndex := types.SlotIndexFor(uint32(pos))
			if si != slotIndex {
				break
			}
			val[relIndex] = vals[pos]
			pos++
		}
		slotstore.CommitIfChanged(backend, key, orig.Encode(), val.Encode())
	}
}

func reverseUint16(vals []uint16) []uint16 {
	out := make([]uint16, len(vals))
	for i, v := range vals {
		out[len(vals)-1-i] = v
	}
	return out
}
