package outerindex

import (
	"testing"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

func seedList(t *testing.T, backend slotstore.Backend, side types.Side, outers []uint16) {
	t.Helper()
	for pos, outer := range outers {
		slotIndex, relIndex := types.SlotIndexFor(uint32(pos))
		key := types.ListSlotKey(side, slotIndex)
		slot := types.DecodeListSlot(backend.Sload(key))
		slot[relIndex] = outer
		backend.Sstore(key, slot.Encode())
	}
}

func TestReader_CentreMostFirst(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	outers := []uint16{10, 20, 30, 40, 50}
	seedList(t, backend, types.Bid, outers)

	r := NewReader(backend, types.Bid, uint32(len(outers)))
	var got []uint16
	for {
		item, ok := r.Next()
		if !ok {
			break
		}
		got = append(got, item.Outer)
	}

	want := []uint16{50, 40, 30, 20, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v entries, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %d, want %d", i, got[i], want[i])
		}
	}
	if r.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", r.Remaining())
	}
}

func TestReader_ReloadAcrossSlotBoundary(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	outers := make([]uint16, 20)
	for i := range outers {
		outers[i] = uint16(i + 1)
	}
	seedList(t, backend, types.Bid, outers)

	r := NewReader(backend, types.Bid, uint32(len(outers)))
	count := 0
	for {
		_, ok := r.Next()
		if !ok {
			break
		}
		count++
	}
	if count != len(outers) {
		t.Fatalf("got %d entries, want %d", count, len(outers))
	}
}

func TestReader_Empty(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	r := NewReader(backend, types.Bid, 0)
	if _, ok := r.Next(); ok {
		t.Fatal("expected exhaustion on empty list")
	}
}
