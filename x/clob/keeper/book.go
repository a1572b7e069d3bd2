package keeper

import (
	"cosmossdk.io/log"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/keeper/bitmap"
	"github.com/goblin-trade/goblin-core-v1/x/clob/keeper/outerindex"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// BookState is one side's phase within a single top-level operation
// (spec.md §4.7). Transitions are invoked explicitly by BookOperator;
// there is no implicit state crossing.
type BookState uint8

const (
	Idle BookState = iota
	Scanning
	Draining
	Committing
)

func (s BookState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Draining:
		return "draining"
	case Committing:
		return "committing"
	default:
		return "unknown"
	}
}

// BookOperator is the composite described in spec.md §4.7: per side, an
// outer-index component and a bitmap-group component, plus the slot
// backend. Place/Cancel/MatchTaker each stage their writes and commit
// through slotstore.CommitIfChanged, so an unchanged slot never gets
// written twice (I6).
type BookOperator struct {
	backend slotstore.Backend
	logger  log.Logger
	market  types.MarketState
	config  Config
	state   [2]BookState
}

func NewBookOperator(backend slotstore.Backend, logger log.Logger, market types.MarketState, config Config) *BookOperator {
	return &BookOperator{backend: backend, logger: logger, market: market, config: config}
}

// Market returns the operator's current MarketState, reflecting any
// Place/Cancel/MatchTaker calls made so far.
func (b *BookOperator) Market() types.MarketState {
	return b.market
}

func (b *BookOperator) transition(side types.Side, to BookState) {
	b.state[side] = to
	if b.logger != nil {
		b.logger.Debug("book state transition", "side", side.String(), "state", to.String())
	}
}

// crosses reports whether a resting order on side at tick would trade
// immediately against the opposite side's best tick.
func crosses(side types.Side, tick, oppositeBest types.Tick) bool {
	if side == types.Bid {
		return tick >= oppositeBest
	}
	return tick <= oppositeBest
}

// tickDistance is the absolute difference between two ticks.
func tickDistance(a, b types.Tick) uint32 {
	if a > b {
		return uint32(a - b)
	}
	return uint32(b - a)
}

// Place inserts a new resting order at id, whose coordinates must
// already match order's eventual slot (spec.md §4.7). A post-only
// order that would cross the opposite side's best tick is rejected
// without mutating anything, as is an order placed more than
// config.PriceBandTicks away from the opposite side's best tick
// (spec.md §4.8) — skipped when that side is empty, since there is no
// reference tick yet.
func (b *BookOperator) Place(side types.Side, id types.OrderID, order types.RestingOrder) error {
	if !id.Valid() || id.Side != side {
		return types.ErrInvalidEncoding.Wrap("order id does not match side")
	}
	b.transition(side, Scanning)

	if oppTick, ok := b.market.BestTick(side.Opposite()); ok && b.config.PriceBandTicks > 0 &&
		tickDistance(id.Tick, oppTick) > b.config.PriceBandTicks {
		b.transition(side, Idle)
		return types.ErrPriceOutOfBand
	}

	if order.PostOnly {
		if oppTick, ok := b.market.BestTick(side.Opposite()); ok && crosses(side, id.Tick, oppTick) {
			b.transition(side, Idle)
			return types.ErrWouldCross
		}
	}

	key := types.RestingOrderKey(id.Tick, id.ROI)
	if existing := types.DecodeRestingOrder(b.backend.Sload(key)); !existing.IsZero() {
		b.transition(side, Idle)
		return types.ErrDuplicateOrderID
	}

	b.transition(side, Draining)
	outer := id.Tick.Outer()
	ins := outerindex.NewInserter(b.backend, side, b.market.OuterCount(side))
	isNewOuter := ins.Prepare(outer)

	bm := bitmap.NewInserter(b.backend)
	bm.Activate(outer, id.Tick.Inner(), id.ROI, isNewOuter)

	b.transition(side, Committing)
	slotstore.CommitIfChanged(b.backend, key, [32]byte{}, order.Encode())
	bm.WriteLastBitmapGroup()

	newCount := ins.Commit()
	b.market = b.market.SetOuterCount(side, newCount)
	if cur, ok := b.market.BestTick(side); !ok || side.Closer(id.Tick, cur) {
		b.market = b.market.SetBestTick(side, id.Tick, true)
	}

	b.transition(side, Idle)
	return nil
}

// Cancel removes the resting order at id, owned by trader. An order
// that has expired (order.IsExpired(now)) may be cancelled by anyone,
// not only its owner — it is dead weight on the book and spec.md §4.8
// wants it evicted on the next touch regardless of caller.
func (b *BookOperator) Cancel(side types.Side, id types.OrderID, trader [20]byte, now uint32) error {
	if !id.Valid() || id.Side != side {
		return types.ErrInvalidEncoding.Wrap("order id does not match side")
	}
	b.transition(side, Scanning)

	key := types.RestingOrderKey(id.Tick, id.ROI)
	raw := b.backend.Sload(key)
	order := types.DecodeRestingOrder(raw)
	if order.IsZero() {
		b.transition(side, Idle)
		return types.ErrOrderNotFound
	}
	if order.Trader != trader && !order.IsExpired(now) {
		b.transition(side, Idle)
		return types.ErrNotOwner
	}

	b.transition(side, Draining)
	outer := id.Tick.Outer()
	lr := bitmap.NewLookupRemover(b.backend)
	pendingRemoval := lr.Deactivate(outer, id.Tick.Inner(), id.ROI)

	b.transition(side, Committing)
	slotstore.CommitIfChanged(b.backend, key, raw, [32]byte{})

	if pendingRemoval {
		rem := outerindex.NewRemover(b.backend, side, b.market.OuterCount(side))
		rem.Remove(outer)
		newCount := rem.Commit()
		b.market = b.market.SetOuterCount(side, newCount)
	}

	if cur, ok := b.market.BestTick(side); ok && cur == id.Tick {
		tick, ok2 := b.recomputeBestTick(side)
		b.market = b.market.SetBestTick(side, tick, ok2)
	}

	b.transition(side, Idle)
	return nil
}

// recomputeBestTick re-derives best_tick[side] from storage: the
// centre-most outer still in the list, then the centre-most set
// position within its group.
func (b *BookOperator) recomputeBestTick(side types.Side) (types.Tick, bool) {
	r := outerindex.NewReader(b.backend, side, b.market.OuterCount(side))
	item, ok := r.Next()
	if !ok {
		return types.Tick(0), false
	}
	group := types.DecodeBitmapGroup(b.backend.Sload(types.BitmapGroupKey(item.Outer)))
	it := bitmap.NewGroupIterator(group, side, nil)
	pos, ok2 := it.Next()
	if !ok2 {
		panic(types.ErrInvariantFault.Wrapf("outer %d present in the %s list but its bitmap group is empty", item.Outer, side))
	}
	return types.NewTick(item.Outer, pos.Inner), true
}

// FillLine is one resting order crossed by a MatchTaker call.
type FillLine struct {
	Maker    [20]byte
	Tick     types.Tick
	ROI      types.RestingOrderIndex
	BaseLots uint64
}

// Fill is the result of a MatchTaker call.
type Fill struct {
	FilledBaseLots uint64
	Lines          []FillLine
}

// limitViolated reports whether restingTick falls outside the taker's
// limit bound: a bid taker will not pay above its limit, an ask taker
// will not sell below its floor.
func limitViolated(takerSide types.Side, restingTick, limitTick types.Tick) bool {
	if takerSide == types.Bid {
		return restingTick > limitTick
	}
	return restingTick < limitTick
}

// MatchTaker crosses a taker order on takerSide, owned by taker,
// against resting orders on the opposite side (spec.md §4.7), stopping
// once maxBaseLots is filled, the opposite side is exhausted, the next
// resting tick would violate limitTick (nil means unbounded), or
// config.MaxTicksPerMatch distinct outer indices have been visited —
// the last a defensive cutoff against unbounded work in one call, not
// an error. Depleted positions, groups, and outer indices are retired
// as part of the same call; a partially-filled head order is written
// back with its remaining quantity, still resting.
//
// Two resting orders never reach a fill line: one that has expired
// (order.IsExpired(now)) is evicted in place, its bit cleared and
// nothing credited, and the walk continues past it; one owned by taker
// itself aborts the whole call with ErrSelfTrade (spec.md §4.8, §7.1) —
// any bits already cleared earlier in this same walk stay cleared, the
// same way an invariant-fault panic already leaves prior writes in
// place, since rolling back here relies on the caller's own
// transaction boundary (msg_server's per-message branched store in a
// real deployment) rather than manual undo logic in this method.
func (b *BookOperator) MatchTaker(takerSide types.Side, taker [20]byte, maxBaseLots uint64, limitTick *types.Tick, now uint32) (*Fill, error) {
	opp := takerSide.Opposite()
	b.transition(opp, Scanning)

	remaining := maxBaseLots
	fill := &Fill{}
	depletedOuters := uint32(0)

	r := outerindex.NewReader(b.backend, opp, b.market.OuterCount(opp))
	b.transition(opp, Draining)

	limitHit := false
	ticksCrossed := uint32(0)
	for remaining > 0 && !limitHit {
		if b.config.MaxTicksPerMatch > 0 && ticksCrossed >= b.config.MaxTicksPerMatch {
			break
		}
		item, ok := r.Next()
		if !ok {
			break
		}
		ticksCrossed++
		outerVal := item.Outer

		sr := bitmap.NewSequentialRemover(b.backend, opp, outerVal)
		outerDepleted := true

		for remaining > 0 {
			pos, ok2 := sr.Next()
			if !ok2 {
				break
			}
			tick := types.NewTick(outerVal, pos.Inner)
			if limitTick != nil && limitViolated(takerSide, tick, *limitTick) {
				outerDepleted = false
				limitHit = true
				break
			}

			okey := types.RestingOrderKey(tick, pos.ROI)
			oraw := b.backend.Sload(okey)
			rOrder := types.DecodeRestingOrder(oraw)
			if rOrder.IsZero() {
				panic(types.ErrInvariantFault.Wrapf("bit set at tick %d roi %d but resting order slot is empty", tick, pos.ROI))
			}

			if rOrder.IsExpired(now) {
				slotstore.CommitIfChanged(b.backend, okey, oraw, [32]byte{})
				sr.Clear()
				continue
			}
			if rOrder.Trader == taker {
				return nil, types.ErrSelfTrade
			}

			matchQty := remaining
			if rOrder.BaseLots < matchQty {
				matchQty = rOrder.BaseLots
			}
			fill.Lines = append(fill.Lines, FillLine{Maker: rOrder.Trader, Tick: tick, ROI: pos.ROI, BaseLots: matchQty})
			fill.FilledBaseLots += matchQty
			remaining -= matchQty

			if matchQty == rOrder.BaseLots {
				slotstore.CommitIfChanged(b.backend, okey, oraw, [32]byte{})
				sr.Clear()
			} else {
				rOrder.BaseLots -= matchQty
				slotstore.CommitIfChanged(b.backend, okey, oraw, rOrder.Encode())
				outerDepleted = false
			}
		}

		if !sr.IsEmpty() {
			outerDepleted = false
		}
		sr.Commit()
		// An emptied group is never written back — its outer leaving the
		// list is what makes it unreachable (spec.md §4.6).

		if !outerDepleted {
			break
		}
		depletedOuters++
	}

	b.transition(opp, Committing)
	if depletedOuters > 0 {
		seq := outerindex.NewSequentialRemover(b.backend, opp, b.market.OuterCount(opp))
		for i := uint32(0); i < depletedOuters; i++ {
			if _, ok := seq.Next(); !ok {
				break
			}
		}
		b.market = b.market.SetOuterCount(opp, seq.CommitRemoval())
	}

	if fill.FilledBaseLots > 0 {
		tick, ok := b.recomputeBestTick(opp)
		b.market = b.market.SetBestTick(opp, tick, ok)
	}

	b.transition(opp, Idle)
	return fill, nil
}
