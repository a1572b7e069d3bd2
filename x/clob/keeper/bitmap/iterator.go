// Package bitmap implements the traversal, activation, and removal
// logic over a single BitmapGroup (spec.md §4.5-4.6): the 32x8 grid of
// bits, one per (inner, resting-order-index) pair, that marks which
// positions within an outer index hold a live resting order.
package bitmap

import "github.com/goblin-trade/goblin-core-v1/x/clob/types"

// Position is one (inner, resting-order-index) coordinate within a
// BitmapGroup.
type Position struct {
	Inner uint8
	ROI   types.RestingOrderIndex
}

// GroupIterator walks the set bits of a BitmapGroup in side-dependent
// traversal order (spec.md §4.5):
//   - Bid: inner from 31 down to 0, within inner roi from 7 down to 0.
//   - Ask: inner from 0 up to 31, within inner roi from 0 up to 7.
//
// If start is non-nil, traversal begins immediately after it (start
// itself is excluded even if its bit is set).
type GroupIterator struct {
	group types.BitmapGroup
	side  types.Side
	cur   *Position
}

func NewGroupIterator(group types.BitmapGroup, side types.Side, start *Position) *GroupIterator {
	return &GroupIterator{group: group, side: side, cur: start}
}

// step advances cur by one position, returning false once traversal
// exits the [0,32)x[0,8) cube.
func (it *GroupIterator) step() bool {
	if it.cur == nil {
		if it.side == types.Bid {
			it.cur = &Position{Inner: 31, ROI: 7}
		} else {
			it.cur = &Position{Inner: 0, ROI: 0}
		}
		return true
	}

	inner := int(it.cur.Inner)
	roi := int(it.cur.ROI)
	if it.side == types.Bid {
		roi--
		if roi < 0 {
			roi = 7
			inner--
		}
		if inner < 0 {
			return false
		}
	} else {
		roi++
		if roi > 7 {
			roi = 0
			inner++
		}
		if inner > 31 {
			return false
		}
	}
	it.cur = &Position{Inner: uint8(inner), ROI: types.RestingOrderIndex(roi)}
	return true
}

// Next yields the next set position, or ok=false at exhaustion.
func (it *GroupIterator) Next() (Position, bool) {
	for it.step() {
		if it.group.IsSet(it.cur.Inner, it.cur.ROI) {
			return *it.cur, true
		}
	}
	return Position{}, false
}
