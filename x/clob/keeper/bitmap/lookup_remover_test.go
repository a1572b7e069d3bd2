package bitmap

import (
	"testing"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

func TestLookupRemover_ClearsBitKeepsGroupAlive(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	var seed types.BitmapGroup
	seed.Set(0, 0)
	seed.Set(0, 1)
	backend.Sstore(types.BitmapGroupKey(5), seed.Encode())

	lr := NewLookupRemover(backend)
	pendingRemoval := lr.Deactivate(5, 0, 0)
	if pendingRemoval {
		t.Fatal("group still has a bit set, should not be pending removal")
	}

	got := types.DecodeBitmapGroup(backend.Sload(types.BitmapGroupKey(5)))
	if got.IsSet(0, 0) {
		t.Fatal("expected bit (0,0) cleared")
	}
	if !got.IsSet(0, 1) {
		t.Fatal("expected bit (0,1) to remain set")
	}
}

func TestLookupRemover_SignalsEmptyGroupWithoutWriting(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	var seed types.BitmapGroup
	seed.Set(2, 4)
	key := types.BitmapGroupKey(9)
	backend.Sstore(key, seed.Encode())

	lr := NewLookupRemover(backend)
	if !lr.Deactivate(9, 2, 4) {
		t.Fatal("expected group to report pending removal once its only bit clears")
	}

	// The slot bytes are left exactly as before the deactivation: the
	// caller is responsible for making the group unreachable via the
	// outer-index list, not by zeroing the slot.
	got := backend.Sload(key)
	if got != seed.Encode() {
		t.Fatalf("expected slot left untouched, got %v", got)
	}
}
