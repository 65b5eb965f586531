package rank

// emitter hands out (rank, item) for one closed tie group, in group order.
// It is single-pass: once drained it stays drained.
type emitter[T, K any] struct {
	rank  float64
	group []keyed[T, K]
	i     int
}

func (e *emitter[T, K]) next() (float64, Item[T], bool) {
	if e.i >= len(e.group) {
		var zero Item[T]
		return 0, zero, false
	}
	it := e.group[e.i].item
	e.i++
	return e.rank, it, true
}
