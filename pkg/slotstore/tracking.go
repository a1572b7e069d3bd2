package slotstore

// Tracking wraps a Backend and counts slot traffic, so the skip-the-write
// optimization (spec.md §4.7, I6) is observable from outside. Engine
// wraps its backend in one for its own market and trader slots and
// drains the counters into the metrics collector once per top-level
// operation (Engine.flushMetrics); the book operator's bitmap, list and
// resting-order slots do not pass through it.
type Tracking struct {
	Backend
	Loads  uint64
	Writes uint64
	Skips  uint64
}

func NewTracking(b Backend) *Tracking {
	return &Tracking{Backend: b}
}

func (t *Tracking) Sload(key [32]byte) [32]byte {
	t.Loads++
	return t.Backend.Sload(key)
}

func (t *Tracking) Sstore(key [32]byte, val [32]byte) {
	t.Writes++
	t.Backend.Sstore(key, val)
}

// CommitIfChangedTracked mirrors CommitIfChanged but also records a skip
// in the wrapping Tracking backend when the write was elided.
func (t *Tracking) CommitIfChangedTracked(key [32]byte, orig [32]byte, val [32]byte) bool {
	if orig == val {
		t.Skips++
		return false
	}
	t.Sstore(key, val)
	return true
}

// Reset zeroes the counters, used between top-level operations since no
// in-memory cache — including these counters — survives across them
// (spec.md §5 invariant).
func (t *Tracking) Reset() {
	t.Loads, t.Writes, t.Skips = 0, 0, 0
}
