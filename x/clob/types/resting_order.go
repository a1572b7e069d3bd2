package types

import "encoding/binary"

// RestingOrder is persisted at key H("order", tick, roi) in one 32-byte
// slot (spec.md §3, §6). Layout, big-endian throughout per the
// endianness-straddle convention in §9:
//
//	[0:20]  trader address
//	[20:28] base-lot quantity (u64)
//	[28:32] expiry-and-flags (u32): bit 31 is the post-only flag, bits
//	        [0:31) are a unix-second expiry (0 = no expiry)
//
// A full 20-byte trader address plus an 8-byte quantity and a 4-byte
// expiry/flags word exactly fill the slot, so RestingOrder carries the
// trader's address directly rather than an indirection table.
type RestingOrder struct {
	Trader   [20]byte
	BaseLots uint64
	Expiry   uint32 // unix seconds, 0 = none
	PostOnly bool
}

const postOnlyFlagBit = uint32(1) << 31

// IsZero reports whether this is the zero-valued RestingOrder, which by
// invariant I1 must never coexist with a set bit for its coordinate.
func (r RestingOrder) IsZero() bool {
	return r == RestingOrder{}
}

// Encode packs r into its 32-byte slot representation (R1 round-trip law).
func (r RestingOrder) Encode() [32]byte {
	var b [32]byte
	copy(b[0:20], r.Trader[:])
	binary.BigEndian.PutUint64(b[20:28], r.BaseLots)
	flags := r.Expiry & (postOnlyFlagBit - 1)
	if r.PostOnly {
		flags |= postOnlyFlagBit
	}
	binary.BigEndian.PutUint32(b[28:32], flags)
	return b
}

// DecodeRestingOrder is the inverse of Encode.
func DecodeRestingOrder(b [32]byte) RestingOrder {
	var r RestingOrder
	copy(r.Trader[:], b[0:20])
	r.BaseLots = binary.BigEndian.Uint64(b[20:28])
	flags := binary.BigEndian.Uint32(b[28:32])
	r.PostOnly = flags&postOnlyFlagBit != 0
	r.Expiry = flags &^ postOnlyFlagBit
	return r
}

// IsExpired reports whether the order's expiry has passed as of nowUnix.
// An expiry of 0 means the order never expires.
func (r RestingOrder) IsExpired(nowUnix uint32) bool {
	return r.Expiry != 0 && r.Expiry <= nowUnix
}
