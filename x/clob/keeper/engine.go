package keeper

import (
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"

	"github.com/goblin-trade/goblin-core-v1/metrics"
	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// Config carries the tunables a production deployment leaves as
// constants elsewhere: batch-size and match-depth bounds (protecting
// against unbounded gas use), a price band on where resting orders may
// be placed, and whether the metrics collector is wired.
type Config struct {
	MaxBatchCalls    uint32
	MaxTicksPerMatch uint32
	PriceBandTicks   uint32
	MetricsEnabled   bool
}

func DefaultConfig() Config {
	return Config{MaxBatchCalls: 100, MaxTicksPerMatch: 64, PriceBandTicks: 2000, MetricsEnabled: true}
}

// Engine is the L5 layer (spec.md §2): PlaceOrder/CancelOrder/MatchOrder
// against the BookOperator, plus the trader-balance accounting and fee
// rounding the book itself has no notion of. One Engine serves one
// market; baseToken/quoteToken identify the two legs a deposit/withdraw
// selector can target, and trader accounts are addressed at
// H("trader", trader, marketToken) — both legs of a market share one
// TraderState slot (spec.md §3 keys TraderState per (trader, token), and
// "token" here names the market, not the leg, so a single account holds
// both base and quote balances for it).
type Engine struct {
	backend     slotstore.Backend
	tracking    *slotstore.Tracking
	logger      log.Logger
	config      Config
	baseToken   [20]byte
	quoteToken  [20]byte
	marketToken [20]byte
}

func NewEngine(backend slotstore.Backend, logger log.Logger, config Config, baseToken, quoteToken, marketToken [20]byte) *Engine {
	return &Engine{
		backend:     backend,
		tracking:    slotstore.NewTracking(backend),
		logger:      logger.With("component", "engine"),
		config:      config,
		baseToken:   baseToken,
		quoteToken:  quoteToken,
		marketToken: marketToken,
	}
}

// marketLabel identifies this engine's market for metrics, as a short
// hex string rather than the raw 20 bytes.
func (e *Engine) marketLabel() string {
	return fmt.Sprintf("%x", e.marketToken)
}

// MarketLabel exposes marketLabel to callers outside the package (the
// dispatch layer, to label per-call commit latency by market).
func (e *Engine) MarketLabel() string {
	return e.marketLabel()
}

// flushMetrics drains the tracking backend's load/write/skip counters
// into the Prometheus collector and resets them. Called once per
// top-level engine operation — no in-memory state, including these
// counters, survives across one (spec.md §5).
func (e *Engine) flushMetrics() {
	if e.config.MetricsEnabled {
		metrics.GetCollector().RecordSlotTraffic(e.marketLabel(), e.tracking.Loads, e.tracking.Writes, e.tracking.Skips)
	}
	e.tracking.Reset()
}

func (e *Engine) loadMarket() types.MarketState {
	return types.DecodeMarketState(e.tracking.Sload(types.MarketStateKey()))
}

func (e *Engine) commitMarket(orig, m types.MarketState) {
	e.tracking.CommitIfChangedTracked(types.MarketStateKey(), orig.Encode(), m.Encode())
	if e.config.MetricsEnabled {
		best := func(tick types.Tick, ok bool) int64 {
			if !ok {
				return -1
			}
			return int64(tick)
		}
		bidTick, hasBid := m.BestTick(types.Bid)
		askTick, hasAsk := m.BestTick(types.Ask)
		metrics.GetCollector().UpdateBookShape(e.marketLabel(), "bid", m.OuterCount(types.Bid), best(bidTick, hasBid))
		metrics.GetCollector().UpdateBookShape(e.marketLabel(), "ask", m.OuterCount(types.Ask), best(askTick, hasAsk))
	}
}

func (e *Engine) traderKey(trader [20]byte) [32]byte {
	return types.TraderStateKey(trader, e.marketToken)
}

func (e *Engine) loadTrader(trader [20]byte) (types.TraderState, [32]byte) {
	key := e.traderKey(trader)
	return types.DecodeTraderState(e.tracking.Sload(key)), key
}

func (e *Engine) commitTrader(key [32]byte, orig, t types.TraderState) {
	e.tracking.CommitIfChangedTracked(key, orig.Encode(), t.Encode())
}

// roundUpFee computes num*bps/10000, rounding up (spec.md §6: "Fee
// computations round up: (num + den - 1) / den"). math.Int is used so
// the intermediate product never risks overflowing a machine word.
func roundUpFee(num uint64, bps uint16) uint64 {
	if num == 0 || bps == 0 {
		return 0
	}
	product := math.NewIntFromUint64(num).MulRaw(int64(bps))
	den := math.NewInt(10000)
	sum := product.Add(den).SubRaw(1)
	return sum.Quo(den).Uint64()
}

// Deposit credits trader's balance for token (spec.md §6 selector
// 0x01). token must be the market's configured base or quote leg.
func (e *Engine) Deposit(trader [20]byte, token [20]byte, lots uint64) error {
	defer e.flushMetrics()
	t, key := e.loadTrader(trader)
	orig := t
	switch token {
	case e.baseToken:
		t.DepositedBase += lots
	case e.quoteToken:
		t.DepositedQuote += lots
	default:
		return types.ErrInvalidEncoding.Wrap("token does not match this market's base or quote leg")
	}
	e.commitTrader(key, orig, t)
	return nil
}

// Withdraw debits trader's free (unlocked) balance for token (spec.md §6
// selector 0x02).
func (e *Engine) Withdraw(trader [20]byte, token [20]byte, lots uint64) error {
	defer e.flushMetrics()
	t, key := e.loadTrader(trader)
	orig := t
	switch token {
	case e.baseToken:
		if t.FreeBase() < lots {
			return types.ErrInsufficientBalance
		}
		t.DepositedBase -= lots
	case e.quoteToken:
		if t.FreeQuote() < lots {
			return types.ErrInsufficientBalance
		}
		t.DepositedQuote -= lots
	default:
		return types.ErrInvalidEncoding.Wrap("token does not match this market's base or quote leg")
	}
	e.commitTrader(key, orig, t)
	return nil
}

// lockForPlace reserves the collateral a resting order of this side/qty
// backs itself with: asks lock base lots, bids lock quote lots (spec.md
// §1 delegates the actual price-to-quote conversion to the external
// token collaborator; this engine locks qty 1:1 against the leg the
// side trades away, which is exact for asks and a documented
// simplification for bids absent a tick-to-quote scale in scope here).
func (e *Engine) lockForPlace(trader [20]byte, side types.Side, qty uint64) error {
	t, key := e.loadTrader(trader)
	orig := t
	if side == types.Ask {
		if t.FreeBase() < qty {
			return types.ErrInsufficientBalance
		}
		t.LockedBase += qty
	} else {
		if t.FreeQuote() < qty {
			return types.ErrInsufficientBalance
		}
		t.LockedQuote += qty
	}
	e.commitTrader(key, orig, t)
	return nil
}

func (e *Engine) unlockForCancel(trader [20]byte, side types.Side, qty uint64) {
	t, key := e.loadTrader(trader)
	orig := t
	if side == types.Ask {
		t.LockedBase -= qty
	} else {
		t.LockedQuote -= qty
	}
	e.commitTrader(key, orig, t)
}

// PlaceOrder locks the trader's collateral and stages the resting order
// with the book operator (spec.md §4.7, §6 selectors 0x03/0x04's
// resting leg). flags bit 0 is post-only; expiry is a unix-seconds
// deadline (0 = none) checked by IsExpired on a later match or cancel
// (spec.md §4.8). The compact dispatch payload carries no expiry field,
// so dispatch-originated orders always pass 0 here — only the
// lower-level msg_server/engine API surface can set one.
func (e *Engine) PlaceOrder(side types.Side, id types.OrderID, trader [20]byte, qty uint64, postOnly bool, expiry uint32) error {
	defer e.flushMetrics()
	if err := e.lockForPlace(trader, side, qty); err != nil {
		return err
	}

	origMarket := e.loadMarket()
	book := NewBookOperator(e.backend, e.logger, origMarket, e.config)
	order := types.RestingOrder{Trader: trader, BaseLots: qty, PostOnly: postOnly, Expiry: expiry}
	if err := book.Place(side, id, order); err != nil {
		e.unlockForCancel(trader, side, qty)
		return err
	}
	e.commitMarket(origMarket, book.Market())
	return nil
}

// PlaceAtTick assigns the first free resting-order index at tick and
// places there — the compact dispatch payload for selectors 0x03/0x04
// (spec.md §6) carries side/tick/qty/flags but no roi, so the engine
// itself resolves the next open slot among the 8 available.
func (e *Engine) PlaceAtTick(side types.Side, tick types.Tick, trader [20]byte, qty uint64, postOnly bool, expiry uint32) (types.RestingOrderIndex, error) {
	for roi := types.RestingOrderIndex(0); roi <= types.MaxRestingOrderIndex; roi++ {
		if types.DecodeRestingOrder(e.backend.Sload(types.RestingOrderKey(tick, roi))).IsZero() {
			id := types.OrderID{Side: side, Tick: tick, ROI: roi}
			if err := e.PlaceOrder(side, id, trader, qty, postOnly, expiry); err != nil {
				return 0, err
			}
			return roi, nil
		}
	}
	return 0, types.ErrOrderBookFull
}

// PlaceLimit implements selector 0x04: match against the opposite side
// up to qty bounded by tick as the taker's limit, then rest whatever
// remains at tick as an ordinary (non-post-only) resting order. now is
// the caller's current block/wall time, used to evict expired resting
// orders encountered while matching (spec.md §4.8).
func (e *Engine) PlaceLimit(side types.Side, trader [20]byte, tick types.Tick, qty uint64, now uint32) (*MatchResult, error) {
	result, err := e.MatchOrder(side, trader, qty, &tick, now)
	if err != nil {
		return nil, err
	}
	if result.RemainLots > 0 {
		if _, err := e.PlaceAtTick(side, tick, trader, result.RemainLots, false, 0); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// CancelOrder removes the resting order and releases its locked
// collateral (spec.md §4.7 cancel). now lets an expired resting order
// be evicted by anyone, not only its owner (spec.md §4.8).
func (e *Engine) CancelOrder(side types.Side, id types.OrderID, trader [20]byte, now uint32) error {
	defer e.flushMetrics()
	key := types.RestingOrderKey(id.Tick, id.ROI)
	existing := types.DecodeRestingOrder(e.backend.Sload(key))

	origMarket := e.loadMarket()
	book := NewBookOperator(e.backend, e.logger, origMarket, e.config)
	if err := book.Cancel(side, id, trader, now); err != nil {
		return err
	}
	e.commitMarket(origMarket, book.Market())
	e.unlockForCancel(existing.Trader, side, existing.BaseLots)
	return nil
}

// MatchResult is one engine-level match: the aggregate fill plus the
// fee lots collected from the taker and each maker.
type MatchResult struct {
	Fill       *Fill
	TakerFee   uint64
	MakerFees  []uint64
	RemainLots uint64 // unfilled remainder, relevant for place_limit's resting leg
}

// MatchOrder crosses a taker order against the opposite side (spec.md
// §4.7, §6 selector 0x04's matching leg), charging taker/maker fees
// (rounded up per §6) out of the filled notional and crediting the
// opposite legs of the traders' balances. Collateral movement again
// simplifies to 1:1 lot accounting for the reason given on
// lockForPlace; token transfer itself remains the external
// collaborator's job (spec.md §1). now is used to evict any expired
// resting order the walk encounters (spec.md §4.8); a self-trade
// against taker's own resting order aborts the whole call with
// ErrSelfTrade (§4.8, §7.1) without any state committed by this Engine
// call — msg_server's branched per-message store discards the partial
// book writes MatchTaker may have already issued earlier in the same
// walk, the same guarantee an invariant-fault panic already relies on.
func (e *Engine) MatchOrder(takerSide types.Side, taker [20]byte, maxBaseLots uint64, limitTick *types.Tick, now uint32) (*MatchResult, error) {
	defer e.flushMetrics()
	takerT, _ := e.loadTrader(taker)
	if takerSide == types.Bid {
		if takerT.FreeQuote() < maxBaseLots {
			return nil, types.ErrInsufficientBalance
		}
	} else if takerT.FreeBase() < maxBaseLots {
		return nil, types.ErrInsufficientBalance
	}

	origMarket := e.loadMarket()
	book := NewBookOperator(e.backend, e.logger, origMarket, e.config)

	fill, err := book.MatchTaker(takerSide, taker, maxBaseLots, limitTick, now)
	if err != nil {
		return nil, err
	}

	market := book.Market()
	result := &MatchResult{Fill: fill, RemainLots: maxBaseLots - fill.FilledBaseLots}

	if fill.FilledBaseLots > 0 {
		result.TakerFee = roundUpFee(fill.FilledBaseLots, market.TakerFeeBps)
		// The taker never rests, so it never locked collateral (unlike a
		// maker) — matching only moves its free balance directly.
		takerT, takerKey := e.loadTrader(taker)
		origTakerT := takerT
		if takerSide == types.Bid {
			takerT.DepositedBase += fill.FilledBaseLots - result.TakerFee
			takerT.DepositedQuote -= fill.FilledBaseLots
		} else {
			takerT.DepositedQuote += fill.FilledBaseLots - result.TakerFee
			takerT.DepositedBase -= fill.FilledBaseLots
		}
		e.commitTrader(takerKey, origTakerT, takerT)

		market.CollectedFees += uint32(result.TakerFee)

		for _, line := range fill.Lines {
			makerFee := roundUpFee(line.BaseLots, market.MakerFeeBps)
			result.MakerFees = append(result.MakerFees, makerFee)
			market.CollectedFees += uint32(makerFee)

			makerT, makerKey := e.loadTrader(line.Maker)
			origMakerT := makerT
			// The maker rested on the opposite side of the taker.
			if takerSide == types.Bid {
				makerT.DepositedQuote += line.BaseLots - makerFee
				makerT.LockedBase -= line.BaseLots
				makerT.DepositedBase -= line.BaseLots
			} else {
				makerT.DepositedBase += line.BaseLots - makerFee
				makerT.LockedQuote -= line.BaseLots
				makerT.DepositedQuote -= line.BaseLots
			}
			e.commitTrader(makerKey, origMakerT, makerT)
		}
	}

	e.commitMarket(origMarket, market)
	return result, nil
}
