package types

import "encoding/binary"

// SlotOuterCount is how many outer indices one ListSlot holds.
const SlotOuterCount = 16

// ListSlot packs 16 u16 outer indices into one 32-byte slot (spec.md §3).
// Per §9's endianness-straddle note, the source under study reinterprets
// this slot as a raw [16]uint16 array and so packs it little-endian,
// unlike the big-endian struct convention used elsewhere; this codec
// documents that boundary explicitly rather than silently diverging.
type ListSlot [SlotOuterCount]uint16

// Encode packs l into its 32-byte slot representation, little-endian.
func (l ListSlot) Encode() [32]byte {
	var b [32]byte
	for i, v := range l {
		binary.LittleEndian.PutUint16(b[i*2:i*2+2], v)
	}
	return b
}

// DecodeListSlot is the inverse of Encode.
func DecodeListSlot(b [32]byte) ListSlot {
	var l ListSlot
	for i := range l {
		l[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	return l
}

// SlotIndexFor splits a logical list position into the ListSlot it lives
// in and its offset within that slot.
func SlotIndexFor(position uint32) (slotIndex uint32, relativeIndex uint8) {
	return position / SlotOuterCount, uint8(position % SlotOuterCount)
}
