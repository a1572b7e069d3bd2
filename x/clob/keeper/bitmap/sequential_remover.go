package bitmap

import (
	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// SequentialRemover walks a single outer index's group in traversal
// order (spec.md §4.6), used by the matcher to drain one price level at
// a time without re-scanning. Next only advances the walk; the caller
// decides whether the position it yielded was fully consumed (call
// Clear) or should be left resting (skip Clear and stop), which is what
// lets MatchTaker leave a partially-filled maker's bit set.
type SequentialRemover struct {
	backend slotstore.Backend
	outer   uint16

	group   types.BitmapGroup
	orig    [32]byte
	iter    *GroupIterator
	cur     *Position
	touched bool
}

func NewSequentialRemover(backend slotstore.Backend, side types.Side, outer uint16) *SequentialRemover {
	key := types.BitmapGroupKey(outer)
	raw := backend.Sload(key)
	group := types.DecodeBitmapGroup(raw)
	return &SequentialRemover{
		backend: backend,
		outer:   outer,
		group:   group,
		orig:    raw,
		iter:    NewGroupIterator(group, side, nil),
	}
}

// Next yields the next set position in traversal order, leaving it set
// until Clear is called for it.
func (sr *SequentialRemover) Next() (Position, bool) {
	pos, ok := sr.iter.Next()
	if !ok {
		sr.cur = nil
		return Position{}, false
	}
	sr.cur = &pos
	return pos, true
}

// Clear drops the position most recently returned by Next. A no-op if
// Next hasn't yielded a position since the last Clear.
func (sr *SequentialRemover) Clear() {
	if sr.cur == nil {
		return
	}
	sr.group.Clear(sr.cur.Inner, sr.cur.ROI)
	sr.touched = true
	sr.cur = nil
}

// IsEmpty reports whether every bit cleared so far has emptied the
// group entirely.
func (sr *SequentialRemover) IsEmpty() bool {
	return !sr.group.IsActive()
}

// Commit flushes the group if it still holds any bit; a group emptied
// by Clear is never written back, matching LookupRemover's policy.
func (sr *SequentialRemover) Commit() {
	if !sr.touched || !sr.group.IsActive() {
		return
	}
	slotstore.CommitIfChanged(sr.backend, types.BitmapGroupKey(sr.outer), sr.orig, sr.group.Encode())
}
