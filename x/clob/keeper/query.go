package keeper

import "github.com/goblin-trade/goblin-core-v1/x/clob/types"

// The three read-only selectors (spec.md §6 0x0A, plus the two this
// repo's dispatch table adds in SPEC_FULL.md §12: get_market_state
// 0x0B and get_best_tick 0x0C). Each is a pure read against the
// current committed state — no staging, no commit-skip bookkeeping,
// since nothing is written.

// QueryTraderState answers selector 0x0A.
func (k *Keeper) QueryTraderState(trader, token [20]byte) types.TraderState {
	return k.TraderState(trader, token)
}

// QueryMarketState answers selector 0x0B.
func (k *Keeper) QueryMarketState() types.MarketState {
	return k.MarketState()
}

// QueryBestTick answers selector 0x0C.
func (k *Keeper) QueryBestTick(side types.Side) (types.Tick, bool) {
	return k.MarketState().BestTick(side)
}
