package types

import "encoding/binary"

// TraderState is the per-(trader, token) slot at H("trader", trader_id,
// token_id) (spec.md §3). Layout, big-endian, four u64 lot counters:
//
//	[0:8]   deposited base lots
//	[8:16]  deposited quote lots
//	[16:24] locked base lots
//	[24:32] locked quote lots
type TraderState struct {
	DepositedBase  uint64
	DepositedQuote uint64
	LockedBase     uint64
	LockedQuote    uint64
}

func (t TraderState) Encode() [32]byte {
	var b [32]byte
	binary.BigEndian.PutUint64(b[0:8], t.DepositedBase)
	binary.BigEndian.PutUint64(b[8:16], t.DepositedQuote)
	binary.BigEndian.PutUint64(b[16:24], t.LockedBase)
	binary.BigEndian.PutUint64(b[24:32], t.LockedQuote)
	return b
}

func DecodeTraderState(b [32]byte) TraderState {
	return TraderState{
		DepositedBase:  binary.BigEndian.Uint64(b[0:8]),
		DepositedQuote: binary.BigEndian.Uint64(b[8:16]),
		LockedBase:     binary.BigEndian.Uint64(b[16:24]),
		LockedQuote:    binary.BigEndian.Uint64(b[24:32]),
	}
}

// FreeBase is the base-lot balance available to back new orders.
func (t TraderState) FreeBase() uint64 {
	return t.DepositedBase - t.LockedBase
}

// FreeQuote is the quote-lot balance available to back new orders.
func (t TraderState) FreeQuote() uint64 {
	return t.DepositedQuote - t.LockedQuote
}
