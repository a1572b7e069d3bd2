package outerindex

import (
	"testing"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

func TestRemover_RemovesArbitraryPosition(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	seedList(t, backend, types.Ask, []uint16{10, 20, 30, 40, 50})

	rm := NewRemover(backend, types.Ask, 5)
	if !rm.Remove(30) {
		t.Fatal("expected to find 30")
	}
	count := rm.Commit()

	got := readAll(backend, types.Ask, count)
	want := []uint16{50, 40, 20, 10}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRemover_NotFound(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	seedList(t, backend, types.Ask, []uint16{10, 20, 30})

	rm := NewRemover(backend, types.Ask, 3)
	if rm.Remove(999) {
		t.Fatal("expected 999 to be absent")
	}
	count := rm.Commit()
	if count != 3 {
		t.Fatalf("nothing matched, so every entry should be retained; got count %d", count)
	}

	got := readAll(backend, types.Ask, count)
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

func TestRemover_RemoveCentreMostEntry(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	seedList(t, backend, types.Bid, []uint16{50, 40, 30, 20, 10})

	rm := NewRemover(backend, types.Bid, 5)
	if !rm.Remove(50) {
		t.Fatal("expected to find 50")
	}
	count := rm.Commit()

	got := readAll(backend, types.Bid, count)
	want := []uint16{10, 20, 30, 40}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %d, want %d", i, got[i], want[i])
		}
	}
}
