package types

import "encoding/binary"

// MarketState is the single per-market slot (spec.md §3, keyed at
// H("market")). Layout, big-endian:
//
//	[0:4]   best bid tick (0xFFFFFFFF sentinel = no bids)
//	[4:8]   best ask tick (0xFFFFFFFF sentinel = no asks)
//	[8:12]  outer_index_count[Bid]
//	[12:16] outer_index_count[Ask]
//	[16:18] taker fee, basis points
//	[18:20] maker fee, basis points
//	[20:28] nonce
//	[28:32] collected fees (lots)
type MarketState struct {
	BestBidTick   Tick
	BestAskTick   Tick
	HasBestBid    bool
	HasBestAsk    bool
	OuterCountBid uint32
	OuterCountAsk uint32
	TakerFeeBps   uint16
	MakerFeeBps   uint16
	Nonce         uint64
	CollectedFees uint32
}

// noBestTickSentinel marks "no best tick on this side" across the 21-bit
// tick domain (any value above MaxTick works; the full uint32 max keeps
// the encoding unambiguous without a separate boolean bit).
const noBestTickSentinel uint32 = 0xFFFFFFFF

func (m MarketState) Encode() [32]byte {
	var b [32]byte
	bid := noBestTickSentinel
	if m.HasBestBid {
		bid = uint32(m.BestBidTick)
	}
	ask := noBestTickSentinel
	if m.HasBestAsk {
		ask = uint32(m.BestAskTick)
	}
	binary.BigEndian.PutUint32(b[0:4], bid)
	binary.BigEndian.PutUint32(b[4:8], ask)
	binary.BigEndian.PutUint32(b[8:12], m.OuterCountBid)
	binary.BigEndian.PutUint32(b[12:16], m.OuterCountAsk)
	binary.BigEndian.PutUint16(b[16:18], m.TakerFeeBps)
	binary.BigEndian.PutUint16(b[18:20], m.MakerFeeBps)
	binary.BigEndian.PutUint64(b[20:28], m.Nonce)
	binary.BigEndian.PutUint32(b[28:32], m.CollectedFees)
	return b
}

func DecodeMarketState(b [32]byte) MarketState {
	var m MarketState
	bid := binary.BigEndian.Uint32(b[0:4])
	ask := binary.BigEndian.Uint32(b[4:8])
	if bid != noBestTickSentinel {
		m.BestBidTick = Tick(bid)
		m.HasBestBid = true
	}
	if ask != noBestTickSentinel {
		m.BestAskTick = Tick(ask)
		m.HasBestAsk = true
	}
	m.OuterCountBid = binary.BigEndian.Uint32(b[8:12])
	m.OuterCountAsk = binary.BigEndian.Uint32(b[12:16])
	m.TakerFeeBps = binary.BigEndian.Uint16(b[16:18])
	m.MakerFeeBps = binary.BigEndian.Uint16(b[18:20])
	m.Nonce = binary.BigEndian.Uint64(b[20:28])
	m.CollectedFees = binary.BigEndian.Uint32(b[28:32])
	return m
}

// OuterCount returns outer_index_count[side].
func (m MarketState) OuterCount(side Side) uint32 {
	if side == Bid {
		return m.OuterCountBid
	}
	return m.OuterCountAsk
}

// SetOuterCount returns a copy of m with outer_index_count[side] updated.
func (m MarketState) SetOuterCount(side Side, count uint32) MarketState {
	if side == Bid {
		m.OuterCountBid = count
	} else {
		m.OuterCountAsk = count
	}
	return m
}

// BestTick returns (tick, ok) for the given side.
func (m MarketState) BestTick(side Side) (Tick, bool) {
	if side == Bid {
		return m.BestBidTick, m.HasBestBid
	}
	return m.BestAskTick, m.HasBestAsk
}

// SetBestTick returns a copy of m with best_tick[side] updated.
func (m MarketState) SetBestTick(side Side, tick Tick, ok bool) MarketState {
	if side == Bid {
		m.BestBidTick, m.HasBestBid = tick, ok
	} else {
		m.BestAskTick, m.HasBestAsk = tick, ok
	}
	return m
}

// Crossed reports whether I4 would be violated: best_tick[Bid] must be
// strictly less than best_tick[Ask] whenever both sides are non-empty.
func (m MarketState) Crossed() bool {
	return m.HasBestBid && m.HasBestAsk && m.BestBidTick >= m.BestAskTick
}
