package outerindex

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/goblin-trade/goblin-core-v1/pkg/slotstore"
	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

func readAll(backend slotstore.Backend, side types.Side, count uint32) []uint16 {
	r := NewReader(backend, side, count)
	var got []uint16
	for {
		item, ok := r.Next()
		if !ok {
			break
		}
		got = append(got, item.Outer)
	}
	return got
}

func TestInserter_InsertsIntoEmptyList(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()

	ins := NewInserter(backend, types.Ask, 0)
	if ok := ins.Prepare(100); !ok {
		t.Fatal("expected new insert to report true")
	}
	count := ins.Commit()

	got := readAll(backend, types.Ask, count)
	want := []uint16{100}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestInserter_SkipsDuplicate(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	seedList(t, backend, types.Ask, []uint16{10, 20, 30})

	ins := NewInserter(backend, types.Ask, 3)
	if ok := ins.Prepare(20); ok {
		t.Fatal("expected duplicate insert to report false")
	}
	count := ins.Commit()
	if count != 3 {
		t.Fatalf("count should be unchanged at 3, got %d", count)
	}
}

func TestInserter_MergeAsk(t *testing.T) {
	backend := slotstore.NewInMemoryBackend()
	seedList(t, backend, types.Ask, []uint16{10, 30, 50})

	ins := NewInserter(backend, types.Ask, 3)
	ins.Prepare(20)
	ins.Prepare(40)
	count := ins.Commit()

	// readAll yields centre-most first; on the ask side that's the
	// smallest tick first, so the merged list comes back ascending.
	got := readAll(backend, types.Ask, count)
	want := []uint16{10, 20, 30, 40, 50}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

// TestInserter_RandomizedMergeStaysSorted feeds randomized insertion
// sequences, in arbitrary order, into both an empty and a pre-populated
// list and asserts the committed list comes back sorted centre-most
// first with no duplicates.
func TestInserter_RandomizedMergeStaysSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		side := types.Ask
		if trial%2 == 1 {
			side = types.Bid
		}
		backend := slotstore.NewInMemoryBackend()

		seedCount := rng.Intn(10)
		existing := randomDistinctSorted(rng, side, seedCount, nil)
		seedList(t, backend, side, existing)

		newCount := 1 + rng.Intn(10)
		seen := map[uint16]bool{}
		for _, v := range existing {
			seen[v] = true
		}
		fresh := randomDistinctSorted(rng, side, newCount, seen)

		rng.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })

		ins := NewInserter(backend, side, uint32(len(existing)))
		for _, x := range fresh {
			ins.Prepare(x)
		}
		count := ins.Commit()

		got := readAll(backend, side, count)
		seenAgain := map[uint16]bool{}
		for i, v := range got {
			if seenAgain[v] {
				t.Fatalf("trial %d side %v: duplicate value %d in %v", trial, side, v, got)
			}
			seenAgain[v] = true
			if i > 0 && side.Farther(types.Tick(got[i-1]), types.Tick(v)) {
				t.Fatalf("trial %d side %v: list not centre-most-first sorted: %v", trial, side, got)
			}
		}
	}
}

// randomDistinctSorted generates n outer indices distinct from exclude.
// The sort is only so seedList lays out a well-formed starting list;
// Inserter.Prepare itself accepts any order.
func randomDistinctSorted(rng *rand.Rand, side types.Side, n int, exclude map[uint16]bool) []uint16 {
	set := map[uint16]bool{}
	var out []uint16
	for len(out) < n {
		v := uint16(rng.Intn(2000))
		if set[v] || exclude[v] {
			continue
		}
		set[v] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if side == types.Ask {
			return out[i] > out[j]
		}
		return out[i] < out[j]
	})
	return out
}
