package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

// msgServer is the hand-rolled counterpart to the teacher's
// msgServer{Keeper} (keeper/msg_server.go) — no .proto compilation
// backs these message types, matching the teacher's own choice not to
// generate protobuf bindings inside x/orderbook, and the calldata
// dispatcher (x/clob/dispatch) is the actual on-chain entry point.
// This type exists for callers that already hold an sdk.Context (the
// msg-router path a full chain integration would use) and want event
// emission for each write.
type msgServer struct {
	keeper *Keeper
}

func NewMsgServer(keeper *Keeper) *msgServer {
	return &msgServer{keeper: keeper}
}

type MsgDeposit struct {
	Token, Sender, Recipient [20]byte
	Lots                     uint64
}

type MsgWithdraw struct {
	Token, Recipient [20]byte
	Lots             uint64
}

type MsgPlaceOrder struct {
	Trader   [20]byte
	Side     types.Side
	Tick     types.Tick
	ROI      types.RestingOrderIndex
	Qty      uint64
	PostOnly bool
	Expiry   uint32 // unix seconds, 0 = none (spec.md §4.8)
}

type MsgCancelOrder struct {
	Trader [20]byte
	OrderID types.OrderID
}

type MsgMatchOrder struct {
	Trader      [20]byte
	Side        types.Side
	MaxBaseLots uint64
	LimitTick   *types.Tick
}

// Deposit handles selector 0x01's external leg: a token collaborator
// has already moved funds in; this call only credits the ledger.
func (m *msgServer) Deposit(ctx context.Context, msg *MsgDeposit) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := m.keeper.engine.Deposit(msg.Recipient, msg.Token, msg.Lots); err != nil {
		return err
	}
	sdkCtx.EventManager().EmitEvent(sdk.NewEvent(
		"clob_deposit",
		sdk.NewAttribute("recipient", fmt.Sprintf("%x", msg.Recipient)),
		sdk.NewAttribute("token", fmt.Sprintf("%x", msg.Token)),
		sdk.NewAttribute("lots", fmt.Sprintf("%d", msg.Lots)),
	))
	return nil
}

// Withdraw handles selector 0x02.
func (m *msgServer) Withdraw(ctx context.Context, trader [20]byte, msg *MsgWithdraw) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := m.keeper.engine.Withdraw(trader, msg.Token, msg.Lots); err != nil {
		return err
	}
	sdkCtx.EventManager().EmitEvent(sdk.NewEvent(
		"clob_withdraw",
		sdk.NewAttribute("trader", fmt.Sprintf("%x", trader)),
		sdk.NewAttribute("token", fmt.Sprintf("%x", msg.Token)),
		sdk.NewAttribute("lots", fmt.Sprintf("%d", msg.Lots)),
	))
	return nil
}

// PlaceOrder handles selectors 0x03/0x04's resting leg.
func (m *msgServer) PlaceOrder(ctx context.Context, msg *MsgPlaceOrder) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	id := types.OrderID{Side: msg.Side, Tick: msg.Tick, ROI: msg.ROI}
	if err := m.keeper.engine.PlaceOrder(msg.Side, id, msg.Trader, msg.Qty, msg.PostOnly, msg.Expiry); err != nil {
		return err
	}
	sdkCtx.EventManager().EmitEvent(sdk.NewEvent(
		"clob_place_order",
		sdk.NewAttribute("trader", fmt.Sprintf("%x", msg.Trader)),
		sdk.NewAttribute("side", msg.Side.String()),
		sdk.NewAttribute("tick", fmt.Sprintf("%d", msg.Tick)),
		sdk.NewAttribute("qty", fmt.Sprintf("%d", msg.Qty)),
	))
	return nil
}

// CancelOrder handles selector 0x05.
func (m *msgServer) CancelOrder(ctx context.Context, msg *MsgCancelOrder) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := uint32(sdkCtx.BlockTime().Unix())
	if err := m.keeper.engine.CancelOrder(msg.OrderID.Side, msg.OrderID, msg.Trader, now); err != nil {
		return err
	}
	sdkCtx.EventManager().EmitEvent(sdk.NewEvent(
		"clob_cancel_order",
		sdk.NewAttribute("trader", fmt.Sprintf("%x", msg.Trader)),
		sdk.NewAttribute("order_id", msg.OrderID.String()),
	))
	return nil
}

// MatchOrder handles selector 0x04's matching leg.
func (m *msgServer) MatchOrder(ctx context.Context, msg *MsgMatchOrder) (*MatchResult, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := uint32(sdkCtx.BlockTime().Unix())
	result, err := m.keeper.engine.MatchOrder(msg.Side, msg.Trader, msg.MaxBaseLots, msg.LimitTick, now)
	if err != nil {
		return nil, err
	}
	sdkCtx.EventManager().EmitEvent(sdk.NewEvent(
		"clob_match_order",
		sdk.NewAttribute("trader", fmt.Sprintf("%x", msg.Trader)),
		sdk.NewAttribute("side", msg.Side.String()),
		sdk.NewAttribute("filled_lots", fmt.Sprintf("%d", result.Fill.FilledBaseLots)),
		sdk.NewAttribute("taker_fee", fmt.Sprintf("%d", result.TakerFee)),
	))
	return result, nil
}
