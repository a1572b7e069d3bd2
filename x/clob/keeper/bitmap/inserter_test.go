package bitmap

import (
	"testing"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

func TestInserter_ActivatesAndFlushesOnOuterChange(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()

	ins := NewInserter(backend)
	ins.Activate(10, 0, 3, true)
	ins.Activate(10, 0, 5, true)
	// Switching outer should flush group 10 before loading group 20.
	ins.Activate(20, 1, 0, true)
	ins.WriteLastBitmapGroup()

	g10 := types.DecodeBitmapGroup(backend.Sload(types.BitmapGroupKey(10)))
	if !g10.IsSet(0, 3) || !g10.IsSet(0, 5) {
		t.Fatalf("group 10 missing expected bits: %v", g10)
	}

	g20 := types.DecodeBitmapGroup(backend.Sload(types.BitmapGroupKey(20)))
	if !g20.IsSet(1, 0) {
		t.Fatalf("group 20 missing expected bit: %v", g20)
	}
}

func TestInserter_LoadsExistingGroupWhenNotEmpty(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	var seed types.BitmapGroup
	seed.Set(4, 2)
	backend.Sstore(types.BitmapGroupKey(7), seed.Encode())

	ins := NewInserter(backend)
	ins.Activate(7, 4, 6, false)
	ins.WriteLastBitmapGroup()

	got := types.DecodeBitmapGroup(backend.Sload(types.BitmapGroupKey(7)))
	if !got.IsSet(4, 2) || !got.IsSet(4, 6) {
		t.Fatalf("expected both bits set, got %v", got)
	}
}
