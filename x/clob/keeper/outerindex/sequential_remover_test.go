package outerindex

import (
	"testing"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

func TestSequentialRemover_StripsCentreMostRun(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	seedList(t, backend, types.Bid, []uint16{10, 20, 30, 40, 50})

	sr := NewSequentialRemover(backend, types.Bid, 5)
	first, ok := sr.Next()
	if !ok || first != 50 {
		t.Fatalf("expected first removal to be 50 (centre-most), got %d ok=%v", first, ok)
	}
	second, ok := sr.Next()
	if !ok || second != 40 {
		t.Fatalf("expected second removal to be 40, got %d ok=%v", second, ok)
	}

	count := sr.CommitRemoval()
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}

	got := readAll(backend, types.Bid, count)
	want := []uint16{30, 20, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSequentialRemover_DrainsEntireList(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	seedList(t, backend, types.Bid, []uint16{1, 2, 3})

	sr := NewSequentialRemover(backend, types.Bid, 3)
	n := 0
	for {
		if _, ok := sr.Next(); !ok {
			break
		}
		n++
	}
	if n != 3 {
		t.Fatalf("expected to drain 3 entries, got %d", n)
	}
	if count := sr.CommitRemoval(); count != 0 {
		t.Fatalf("expected count 0 after draining everything, got %d", count)
	}
}
