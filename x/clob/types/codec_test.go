package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestRoundTrip_ListSlot covers R1 for ListSlot.
func TestRoundTrip_ListSlot(t *testing.T) {
	cases := []ListSlot{
		{},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		{0xFFFF, 0, 0x8000, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
	}
	for i, want := range cases {
		got := DecodeListSlot(want.Encode())
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("case %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

// TestRoundTrip_BitmapGroup covers R1 for BitmapGroup.
func TestRoundTrip_BitmapGroup(t *testing.T) {
	var g BitmapGroup
	g.Set(0, 0)
	g.Set(31, 7)
	g.Set(15, 3)
	got := DecodeBitmapGroup(g.Encode())
	if diff := cmp.Diff(g, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if !got.IsActive() {
		t.Fatal("expected active group")
	}
	var empty BitmapGroup
	if empty.IsActive() {
		t.Fatal("zero-valued group must not be active")
	}
}

// TestRoundTrip_RestingOrder covers R1 for RestingOrder, including the
// expiry/flags word sharing a single 32-bit field.
func TestRoundTrip_RestingOrder(t *testing.T) {
	cases := []RestingOrder{
		{},
		{Trader: [20]byte{1, 2, 3}, BaseLots: 12345, Expiry: 0, PostOnly: false},
		{Trader: [20]byte{0xAA}, BaseLots: 1 << 40, Expiry: 1700000000, PostOnly: true},
	}
	for i, want := range cases {
		got := DecodeRestingOrder(want.Encode())
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("case %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

// TestRoundTrip_MarketState covers R1 for MarketState, including the
// "no best tick" sentinel on each side independently.
func TestRoundTrip_MarketState(t *testing.T) {
	cases := []MarketState{
		{},
		{HasBestBid: true, BestBidTick: 100, HasBestAsk: true, BestAskTick: 200, OuterCountBid: 3, OuterCountAsk: 5, TakerFeeBps: 10, MakerFeeBps: 2, Nonce: 7, CollectedFees: 42},
		{HasBestBid: true, BestBidTick: MaxTick},
	}
	for i, want := range cases {
		got := DecodeMarketState(want.Encode())
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("case %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

// TestRoundTrip_TraderState covers R1 for TraderState.
func TestRoundTrip_TraderState(t *testing.T) {
	want := TraderState{DepositedBase: 10, DepositedQuote: 20, LockedBase: 3, LockedQuote: 4}
	got := DecodeTraderState(want.Encode())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.FreeBase() != 7 || got.FreeQuote() != 16 {
		t.Fatalf("unexpected free balances: base=%d quote=%d", got.FreeBase(), got.FreeQuote())
	}
}

func TestTick_OuterInner(t *testing.T) {
	tick := NewTick(0x100, 3)
	if tick.Outer() != 0x100 || tick.Inner() != 3 {
		t.Fatalf("got outer=%d inner=%d", tick.Outer(), tick.Inner())
	}
	if !tick.Valid() {
		t.Fatal("expected valid tick")
	}
	if Tick(1 << 21).Valid() {
		t.Fatal("tick at 2^21 must be invalid")
	}
}

func TestOrderID_EncodeDecode(t *testing.T) {
	want := OrderID{Side: Ask, Tick: NewTick(0x8000, 3), ROI: 5}
	got, err := DecodeOrderID(EncodeOrderID(want))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
