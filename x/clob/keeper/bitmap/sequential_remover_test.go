package bitmap

import (
	"testing"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

func TestSequentialRemover_DrainsAndEmpties(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	var seed types.BitmapGroup
	seed.Set(0, 0)
	seed.Set(0, 1)
	key := types.BitmapGroupKey(3)
	backend.Sstore(key, seed.Encode())

	sr := NewSequentialRemover(backend, types.Ask, 3)

	pos1, ok := sr.Next()
	if !ok || pos1 != (Position{Inner: 0, ROI: 0}) {
		t.Fatalf("expected first position (0,0), got %+v ok=%v", pos1, ok)
	}
	sr.Clear()
	if sr.IsEmpty() {
		t.Fatal("group should still have one bit left")
	}

	pos2, ok := sr.Next()
	if !ok || pos2 != (Position{Inner: 0, ROI: 1}) {
		t.Fatalf("expected second position (0,1), got %+v ok=%v", pos2, ok)
	}
	sr.Clear()
	if !sr.IsEmpty() {
		t.Fatal("expected group to be empty after draining both bits")
	}

	sr.Commit()

	// Emptied groups are never written back.
	got := backend.Sload(key)
	if got != seed.Encode() {
		t.Fatalf("expected slot left untouched when group emptied, got %v", got)
	}
}

func TestSequentialRemover_PartialDrainCommitsRemainder(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	var seed types.BitmapGroup
	seed.Set(0, 0)
	seed.Set(5, 2)
	key := types.BitmapGroupKey(11)
	backend.Sstore(key, seed.Encode())

	sr := NewSequentialRemover(backend, types.Ask, 11)
	if _, ok := sr.Next(); !ok {
		t.Fatal("expected a position")
	}
	sr.Clear()
	sr.Commit()

	got := types.DecodeBitmapGroup(backend.Sload(key))
	if got.IsSet(0, 0) {
		t.Fatal("expected (0,0) cleared")
	}
	if !got.IsSet(5, 2) {
		t.Fatal("expected (5,2) to remain set")
	}
}

func TestSequentialRemover_NextWithoutClearLeavesPositionSet(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	var seed types.BitmapGroup
	seed.Set(0, 0)
	key := types.BitmapGroupKey(7)
	backend.Sstore(key, seed.Encode())

	sr := NewSequentialRemover(backend, types.Ask, 7)
	if _, ok := sr.Next(); !ok {
		t.Fatal("expected a position")
	}
	// A partially-filled resting order stays set: the caller just never
	// calls Clear for it.
	sr.Commit()

	got := types.DecodeBitmapGroup(backend.Sload(key))
	if !got.IsSet(0, 0) {
		t.Fatal("expected position left set when Clear was never called")
	}
}

func TestSequentialRemover_ClearWithoutPriorNextIsNoOp(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	var seed types.BitmapGroup
	seed.Set(0, 0)
	key := types.BitmapGroupKey(9)
	backend.Sstore(key, seed.Encode())

	sr := NewSequentialRemover(backend, types.Ask, 9)
	sr.Clear() // no Next call yet — must not panic or touch the group
	sr.Commit()

	got := backend.Sload(key)
	if got != seed.Encode() {
		t.Fatalf("expected slot untouched, got %v", got)
	}
}
