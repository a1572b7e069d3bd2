// Package outerindex implements the sequential reader, bulk inserter,
// lookup remover, and sequential remover over the per-side outer-index
// list (spec.md §4.1-4.4): the ordered sequence of active bitmap-group
// indices, stored across consecutive ListSlots 16-to-a-slot.
package outerindex

import (
	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// Item is one step of Reader iteration: the slot coordinates the outer
// index was read from, the ListSlot snapshot it came from (so callers
// can reuse it as a write template without reloading), and the outer
// index itself.
type Item struct {
	SlotIndex     uint32
	RelativeIndex uint8
	Slot          types.ListSlot
	Outer         uint16
}

// Reader iterates outer indices from the end of the list — centre-most
// first — loading at most one ListSlot per 16 elements (spec.md §4.1).
type Reader struct {
	backend   slotstore.Backend
	side      types.Side
	remaining uint32

	hasCached bool
	cached    types.ListSlot
	cachedIdx uint32
}

// NewReader starts a Reader over side's outer-index list, which has
// count active entries (MarketState.OuterCount(side)).
func NewReader(backend slotstore.Backend, side types.Side, count uint32) *Reader {
	return &Reader{backend: backend, side: side, remaining: count}
}

// Remaining is the number of entries not yet yielded.
func (r *Reader) Remaining() uint32 {
	return r.remaining
}

// Next yields the next outer index, centre-most first, or ok=false at
// exhaustion.
func (r *Reader) Next() (Item, bool) {
	if r.remaining == 0 {
		return Item{}, false
	}
	pos := r.remaining - 1
	slotIndex, relIndex := types.SlotIndexFor(pos)

	if !r.hasCached || relIndex == types.SlotOuterCount-1 {
		key := types.ListSlotKey(r.side, slotIndex)
		r.cached = types.DecodeListSlot(r.backend.Sload(key))
		r.cachedIdx = slotIndex
		r.hasCached = true
	}

	item := Item{
		SlotIndex:     slotIndex,
		RelativeIndex: relIndex,
		Slot:          r.cached,
		Outer:         r.cached[relIndex],
	}
	r.remaining--
	return item, true
}
