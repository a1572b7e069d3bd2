package outerindex

import (
	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// SequentialRemover strips a contiguous run of outer indices from the
// centre-most end of the list (spec.md §4.4), used when a bitmap group
// empties out during matching and every remaining group behind it in
// scan order has also gone empty. Unlike Remover it never needs to
// retain anything: every value it draws is dropped.
type SequentialRemover struct {
	backend slotstore.Backend
	side    types.Side
	reader  *Reader

	removed uint32
}

func NewSequentialRemover(backend slotstore.Backend, side types.Side, count uint32) *SequentialRemover {
	return &SequentialRemover{
		backend: backend,
		side:    side,
		reader:  NewReader(backend, side, count),
	}
}

// Next drops the next (centre-most) outer index and returns it. ok is
// false once the list is exhausted.
func (sr *SequentialRemover) Next() (uint16, bool) {
	item, ok := sr.reader.Next()
	if !ok {
		return 0, false
	}
	sr.removed++
	return item.Outer, true
}

// CommitRemoval returns the new outer_index_count[side]. Nothing needs
// to be written: the removed suffix was already the centre-most end of
// the list, so shrinking the count alone retires those entries — the
// vacated slot bytes become ghost values future readers must ignore
// (spec.md §4.4, §9).
func (sr *SequentialRemover) CommitRemoval() uint32 {
	return sr.reader.Remaining()
}
