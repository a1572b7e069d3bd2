package bitmap

import (
	"testing"

	"github.com/goblin-trade/goblin-core-v1/x/clob/types"
)

func TestGroupIterator_AskOrder(t *testing.T) {
	var g types.BitmapGroup
	g.Set(0, 3)
	g.Set(0, 5)
	g.Set(2, 0)
	g.Set(31, 7)

	it := NewGroupIterator(g, types.Ask, nil)
	want := []Position{
		{Inner: 0, ROI: 3},
		{Inner: 0, ROI: 5},
		{Inner: 2, ROI: 0},
		{Inner: 31, ROI: 7},
	}
	for i, w := range want {
		pos, ok := it.Next()
		if !ok {
			t.Fatalf("position %d: exhausted early", i)
		}
		if pos != w {
			t.Errorf("position %d: got %+v, want %+v", i, pos, w)
		}
	}
	if _, ok := it.Next(); ok {
		t.Fatal("expected exhaustion")
	}
}

func TestGroupIterator_BidOrder(t *testing.T) {
	var g types.BitmapGroup
	g.Set(0, 3)
	g.Set(31, 7)
	g.Set(31, 2)

	it := NewGroupIterator(g, types.Bid, nil)
	want := []Position{
		{Inner: 31, ROI: 7},
		{Inner: 31, ROI: 2},
		{Inner: 0, ROI: 3},
	}
	for i, w := range want {
		pos, ok := it.Next()
		if !ok {
			t.Fatalf("position %d: exhausted early", i)
		}
		if pos != w {
			t.Errorf("position %d: got %+v, want %+v", i, pos, w)
		}
	}
	if _, ok := it.Next(); ok {
		t.Fatal("expected exhaustion")
	}
}

func TestGroupIterator_ExcludesStart(t *testing.T) {
	var g types.BitmapGroup
	g.Set(0, 0)
	g.Set(0, 1)
	g.Set(0, 2)

	start := Position{Inner: 0, ROI: 1}
	it := NewGroupIterator(g, types.Ask, &start)

	pos, ok := it.Next()
	if !ok || pos != (Position{Inner: 0, ROI: 2}) {
		t.Fatalf("expected (0,2) immediately after excluded start, got %+v ok=%v", pos, ok)
	}
	if _, ok := it.Next(); ok {
		t.Fatal("expected exhaustion")
	}
}

func TestGroupIterator_Empty(t *testing.T) {
	var g types.BitmapGroup
	it := NewGroupIterator(g, types.Ask, nil)
	if _, ok := it.Next(); ok {
		t.Fatal("expected no positions in an empty group")
	}
}
