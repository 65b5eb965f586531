package rank

type walkState int

const (
	stateCollecting walkState = iota
	stateDone
)

// keyed is an item with its pass key already evaluated.
type keyed[T, K any] struct {
	item Item[T]
	key  K
}

// walker partitions a sorted slice into maximal runs of equal keys and
// ranks each run. The current group is the window sorted[start:pos], so a
// group of any size costs no copying and the walk never recurses.
type walker[T, K any] struct {
	sorted []keyed[T, K]
	equal  func(a, b K) bool

	state walkState
	base  int // items already flushed with lower ranks
	start int // first item of the buffered group
	pos   int // next item to pull from the sorted source

	out emitter[T, K]
}

// newWalker starts collecting with base 0 and sorted[0] preloaded.
// sorted must be non-empty.
func newWalker[T, K any](sorted []keyed[T, K], equal func(a, b K) bool) *walker[T, K] {
	return &walker[T, K]{
		sorted: sorted,
		equal:  equal,
		state:  stateCollecting,
		pos:    1,
	}
}

func (w *walker[T, K]) next() (float64, Item[T], bool) {
	for {
		if r, it, ok := w.out.next(); ok {
			return r, it, true
		}
		if w.state == stateDone {
			var zero Item[T]
			return 0, zero, false
		}
		w.step()
	}
}

// step pulls from the source until the buffered group closes, then loads
// it into the emitter.
func (w *walker[T, K]) step() {
	head := w.sorted[w.start].key
	for w.pos < len(w.sorted) && w.equal(w.sorted[w.pos].key, head) {
		w.pos++
	}
	group := w.sorted[w.start:w.pos]
	dups := len(group)
	w.out = emitter[T, K]{rank: fractionalRank(w.base, dups), group: group}

	if w.pos == len(w.sorted) {
		w.state = stateDone
		return
	}
	w.base += dups
	w.start = w.pos
	w.pos++
}

// fractionalRank is the mean of the integer ranks base+1 .. base+dups.
func fractionalRank(base, dups int) float64 {
	return float64(base+1+base+dups) / 2
}
