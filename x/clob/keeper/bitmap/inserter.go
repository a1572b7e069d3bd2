package bitmap

import (
	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// Inserter pins one BitmapGroup in memory at a time, amortising writes
// across Activate calls that touch the same outer index (spec.md §4.6).
type Inserter struct {
	backend slotstore.Backend

	hasLast   bool
	lastOuter uint16
	group     types.BitmapGroup
	orig      [32]byte
}

func NewInserter(backend slotstore.Backend) *Inserter {
	return &Inserter{backend: backend}
}

// Activate sets the bit at (outer, inner, roi). If outer differs from
// the currently pinned group, the pinned group is flushed first, then
// either loaded from storage or, when groupIsEmpty is asserted (the
// caller already knows via the outer-index list that this group has no
// prior state), started fresh without a load.
func (ins *Inserter) Activate(outer uint16, inner uint8, roi types.RestingOrderIndex, groupIsEmpty bool) {
	if !ins.hasLast || ins.lastOuter != outer {
		ins.flush()
		if groupIsEmpty {
			ins.group = types.BitmapGroup{}
			ins.orig = [32]byte{}
		} else {
			key := types.BitmapGroupKey(outer)
			raw := ins.backend.Sload(key)
			ins.orig = raw
			ins.group = types.DecodeBitmapGroup(raw)
		}
		ins.lastOuter = outer
		ins.hasLast = true
	}
	ins.group.Set(inner, roi)
}

// flush writes the pinned group back if it holds any set bit. Empty
// groups are never persisted — the outer-index entry is what makes a
// group reachable at all.
func (ins *Inserter) flush() {
	if !ins.hasLast || !ins.group.IsActive() {
		return
	}
	key := types.BitmapGroupKey(ins.lastOuter)
	slotstore.CommitIfChanged(ins.backend, key, ins.orig, ins.group.Encode())
}

// WriteLastBitmapGroup flushes the pinned group unconditionally, used
// at the end of a book operation's commit phase.
func (ins *Inserter) WriteLastBitmapGroup() {
	ins.flush()
}
