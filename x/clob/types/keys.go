package types

import (
	"crypto/sha256"
	"encoding/binary"
)

// Keys are derived deterministically per spec.md §6. Each function
// returns the 32-byte key the L0 storage collaborator is addressed by;
// the engine never constructs a raw key any other way, so a change to
// this file is the only place a slot layout's address can drift.

func hash(parts ...[]byte) [32]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ListSlotKey addresses the ListSlot at slotIndex for side.
func ListSlotKey(side Side, slotIndex uint32) [32]byte {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], slotIndex)
	return hash([]byte("list"), []byte{byte(side)}, idx[:])
}

// BitmapGroupKey addresses the BitmapGroup for outer.
func BitmapGroupKey(outer uint16) [32]byte {
	var o [2]byte
	binary.BigEndian.PutUint16(o[:], outer)
	return hash([]byte("group"), o[:])
}

// RestingOrderKey addresses the RestingOrder at (tick, roi).
func RestingOrderKey(tick Tick, roi RestingOrderIndex) [32]byte {
	var t [4]byte
	binary.BigEndian.PutUint32(t[:], uint32(tick))
	return hash([]byte("order"), t[:], []byte{byte(roi)})
}

// MarketStateKey addresses the single per-market MarketState slot.
func MarketStateKey() [32]byte {
	return hash([]byte("market"))
}

// TraderStateKey addresses the TraderState for (trader, token).
func TraderStateKey(trader [20]byte, token [20]byte) [32]byte {
	return hash([]byte("trader"), trader[:], token[:])
}
