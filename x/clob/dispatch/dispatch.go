// Package dispatch parses the packed calldata batch format (spec.md
// §6) and fans each call out to the engine, one call at a time —
// spec.md §1's Non-goals rule out parallelism, so unlike the teacher's
// PlaceOrderBatch (which validates concurrently before writing
// sequentially), every call here both validates and commits in strict
// program order.
package dispatch

import (
	"context"
	"encoding/binary"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"

	"github.com/goblin-trade/goblin-core-v1/metrics"
	"github.com/goblin-trade/goblin-core-v1/x/clob/keeper"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

const (
	selectorDeposit         = 0x01
	selectorWithdraw        = 0x02
	selectorPlacePostOnly   = 0x03
	selectorPlaceLimit      = 0x04
	selectorCancel          = 0x05
	selectorGetTraderState  = 0x0A
	selectorGetMarketState  = 0x0B
	selectorGetBestTick     = 0x0C
)

// Dispatcher is the L6 entry point: Run(batch) fans out to Keeper.Engine()
// per call, aggregating one exit-code byte per call (spec.md §6 "exit
// codes: 0 = success; non-zero = error kind ordinal").
type Dispatcher struct {
	keeper *keeper.Keeper
	logger log.Logger
}

func NewDispatcher(k *keeper.Keeper, logger log.Logger) *Dispatcher {
	return &Dispatcher{keeper: k, logger: logger.With("component", "dispatch")}
}

// Result is the outcome of one call within a batch: its selector, exit
// code, and (for read selectors) the encoded read payload.
type Result struct {
	Selector byte
	ExitCode byte
	Read     []byte
}

// Run parses and executes a calldata batch. A malformed batch, unknown
// selector, truncated payload, or batch-size overflow is a protocol
// error and aborts the whole batch (§7.2) — returned as err, with no
// partial results. An invariant fault (recovered from the panic
// book.go raises) also aborts the whole batch. A request error aborts
// only its own call; the batch continues, matching §7.1's "preserve
// all other calls" rule, and is reported solely via that call's
// ExitCode.
func (d *Dispatcher) Run(ctx context.Context, caller [20]byte, calldata []byte) ([]Result, error) {
	if len(calldata) < 1 {
		return nil, types.ErrTruncatedPayload
	}
	numCalls := int(calldata[0])
	if uint32(numCalls) > d.keeper.Config().MaxBatchCalls {
		return nil, types.ErrBatchTooLarge
	}

	batchID := uuid.New().String()
	logger := d.logger.With("batch_id", batchID)
	metricsOn := d.keeper.Config().MetricsEnabled
	now := blockTime(ctx)

	rest := calldata[1:]
	results := make([]Result, 0, numCalls)

	for i := 0; i < numCalls; i++ {
		if len(rest) < 1 {
			return nil, types.ErrTruncatedPayload
		}
		selector := rest[0]
		rest = rest[1:]

		n, ok := payloadLen(selector)
		if !ok {
			return nil, types.ErrUnknownSelector
		}
		if len(rest) < n {
			return nil, types.ErrTruncatedPayload
		}
		payload := rest[:n]
		rest = rest[n:]

		start := time.Now()
		read, err := d.execute(ctx, caller, now, selector, payload)
		code := exitCode(err)
		if metricsOn {
			c := metrics.GetCollector()
			c.RecordCall(selectorName(selector), code)
			c.RecordCommitLatency(d.keeper.Engine().MarketLabel(), selectorName(selector), time.Since(start).Seconds())
		}
		if err != nil && types.ErrInvariantFault.Is(err) {
			if metricsOn {
				metrics.GetCollector().RecordInvariantFault()
			}
			return nil, err
		}
		results = append(results, Result{Selector: selector, ExitCode: code, Read: read})
		logger.Debug("dispatched call", "selector", selector, "exit_code", code)
	}
	return results, nil
}

// selectorName maps a selector byte to its log/metric label.
func selectorName(selector byte) string {
	switch selector {
	case selectorDeposit:
		return "deposit"
	case selectorWithdraw:
		return "withdraw"
	case selectorPlacePostOnly:
		return "place_post_only"
	case selectorPlaceLimit:
		return "place_limit"
	case selectorCancel:
		return "cancel"
	case selectorGetTraderState:
		return "get_trader_state"
	case selectorGetMarketState:
		return "get_market_state"
	case selectorGetBestTick:
		return "get_best_tick"
	default:
		return "unknown"
	}
}

// payloadLen reports the fixed payload size for a recognized selector
// (spec.md §6's table), or ok=false for anything else.
func payloadLen(selector byte) (n int, ok bool) {
	switch selector {
	case selectorDeposit:
		return 20 + 20 + 20 + 8, true
	case selectorWithdraw:
		return 20 + 20 + 8, true
	case selectorPlacePostOnly, selectorPlaceLimit:
		return 1 + 3 + 8 + 1, true
	case selectorCancel:
		return 5, true
	case selectorGetTraderState:
		return 20 + 20, true
	case selectorGetMarketState:
		return 0, true
	case selectorGetBestTick:
		return 1, true
	default:
		return 0, false
	}
}

// blockTime extracts the current block time from ctx for expiry checks
// (spec.md §4.8). Calldata dispatch isn't guaranteed a real sdk.Context
// — unlike msg_server's handlers, which always unwrap one — so this
// falls back to 0 (no order ever appears expired) rather than panicking
// the way sdk.UnwrapSDKContext would on a plain context.Context.
func blockTime(ctx context.Context) uint32 {
	sdkCtx, ok := ctx.(sdk.Context)
	if !ok {
		return 0
	}
	return uint32(sdkCtx.BlockTime().Unix())
}

func (d *Dispatcher) execute(ctx context.Context, caller [20]byte, now uint32, selector byte, payload []byte) (read []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if fault, ok := r.(error); ok && types.ErrInvariantFault.Is(fault) {
				err = fault
				return
			}
			panic(r)
		}
	}()

	switch selector {
	case selectorDeposit:
		var token, recipient [20]byte
		copy(token[:], payload[0:20])
		// payload[20:40] is the sender, informational only — the actual
		// value movement already happened via the external token
		// collaborator (spec.md §1).
		copy(recipient[:], payload[40:60])
		lots := binary.LittleEndian.Uint64(payload[60:68])
		return nil, d.keeper.Engine().Deposit(recipient, token, lots)

	case selectorWithdraw:
		var token [20]byte
		copy(token[:], payload[0:20])
		lots := binary.LittleEndian.Uint64(payload[40:48])
		return nil, d.keeper.Engine().Withdraw(caller, token, lots)

	case selectorPlacePostOnly, selectorPlaceLimit:
		side := types.Side(payload[0])
		tick := types.Tick(uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3]))
		qty := binary.LittleEndian.Uint64(payload[4:12])
		flags := payload[12]
		postOnly := flags&0x01 != 0

		if !side.Valid() || !tick.Valid() {
			return nil, types.ErrInvalidEncoding
		}
		if selector == selectorPlacePostOnly {
			_, err := d.keeper.Engine().PlaceAtTick(side, tick, caller, qty, postOnly, 0)
			return nil, err
		}
		_, err := d.keeper.Engine().PlaceLimit(side, caller, tick, qty, now)
		return nil, err

	case selectorCancel:
		var raw [5]byte
		copy(raw[:], payload)
		id, decodeErr := types.DecodeOrderID(raw)
		if decodeErr != nil {
			return nil, decodeErr
		}
		return nil, d.keeper.Engine().CancelOrder(id.Side, id, caller, now)

	case selectorGetTraderState:
		var trader, token [20]byte
		copy(trader[:], payload[0:20])
		copy(token[:], payload[20:40])
		state := d.keeper.QueryTraderState(trader, token)
		enc := state.Encode()
		return enc[:], nil

	case selectorGetMarketState:
		state := d.keeper.QueryMarketState()
		enc := state.Encode()
		return enc[:], nil

	case selectorGetBestTick:
		side := types.Side(payload[0])
		if !side.Valid() {
			return nil, types.ErrInvalidEncoding
		}
		tick, ok := d.keeper.QueryBestTick(side)
		out := make([]byte, 5)
		if ok {
			out[0] = 1
			out[1] = byte(tick >> 16)
			out[2] = byte(tick >> 8)
			out[3] = byte(tick)
		}
		return out, nil

	default:
		return nil, types.ErrUnknownSelector
	}
}

// exitCode maps a named error to its registered ordinal (spec.md §6/§7);
// nil maps to 0 (success), and any error outside the named taxonomy maps
// to 255 rather than silently passing as success.
func exitCode(err error) byte {
	switch {
	case err == nil:
		return 0
	case types.ErrWouldCross.Is(err):
		return 1
	case types.ErrNotOwner.Is(err):
		return 2
	case types.ErrExpired.Is(err):
		return 3
	case types.ErrPriceOutOfBand.Is(err):
		return 4
	case types.ErrSelfTrade.Is(err):
		return 5
	case types.ErrInsufficientBalance.Is(err):
		return 6
	case types.ErrOrderBookFull.Is(err):
		return 7
	case types.ErrDuplicateOrderID.Is(err):
		return 8
	case types.ErrOrderNotFound.Is(err):
		return 9
	case types.ErrMalformedCalldata.Is(err):
		return 20
	case types.ErrUnknownSelector.Is(err):
		return 21
	case types.ErrTruncatedPayload.Is(err):
		return 22
	case types.ErrBatchTooLarge.Is(err):
		return 23
	case types.ErrInvariantFault.Is(err):
		return 40
	case types.ErrInvalidEncoding.Is(err):
		return 41
	default:
		return 255
	}
}
