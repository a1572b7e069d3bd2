package bitmap

import (
	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// LookupRemover deactivates a single bit at a known position (spec.md
// §4.6), used by cancel.
type LookupRemover struct {
	backend slotstore.Backend
}

func NewLookupRemover(backend slotstore.Backend) *LookupRemover {
	return &LookupRemover{backend: backend}
}

// Deactivate clears the bit at (outer, inner, roi). It reports
// pendingRemoval = true if the group became empty as a result; the
// caller is then responsible for queuing outer for removal from the
// outer-index list. The bitmap slot itself is left unwritten when the
// group empties — an outer absent from the list is empty to every
// reader regardless of its bitmap bytes.
func (lr *LookupRemover) Deactivate(outer uint16, inner uint8, roi types.RestingOrderIndex) (pendingRemoval bool) {
	key := types.BitmapGroupKey(outer)
	raw := lr.backend.Sload(key)
	group := types.DecodeBitmapGroup(raw)
	group.Clear(inner, roi)

	if !group.IsActive() {
		return true
	}
	slotstore.CommitIfChanged(lr.backend, key, raw, group.Encode())
	return false
}
