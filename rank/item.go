// Package rank assigns fractional ("average") rank order to a collection
// and accumulates one rank per pass into each item's rank history.
package rank

// Item pairs the ranks an element has accumulated so far with the element
// itself. Items are values: every pass builds new ones, nothing is mutated.
type Item[T any] struct {
	ranks []float64
	raw   T
}

// NewItem returns an Item holding a copy of ranks.
func NewItem[T any](ranks []float64, raw T) Item[T] {
	return Item[T]{ranks: cloneRanks(ranks, 0), raw: raw}
}

// Raw returns the ranked element.
func (it Item[T]) Raw() T { return it.raw }

// Ranks returns a copy of the rank history, oldest pass first.
func (it Item[T]) Ranks() []float64 { return cloneRanks(it.ranks, 0) }

// Pass reports how many ranking passes the item has been through.
func (it Item[T]) Pass() int { return len(it.ranks) }

// Last returns the rank from the most recent pass, or false for an item
// that was never ranked.
func (it Item[T]) Last() (float64, bool) {
	if len(it.ranks) == 0 {
		return 0, false
	}
	return it.ranks[len(it.ranks)-1], true
}

// with returns a new Item whose history is it.ranks plus r.
// The new history never shares a backing array with the old one.
func (it Item[T]) with(r float64) Item[T] {
	h := cloneRanks(it.ranks, 1)
	h = append(h, r)
	return Item[T]{ranks: h, raw: it.raw}
}

func cloneRanks(src []float64, extra int) []float64 {
	out := make([]float64, len(src), len(src)+extra)
	copy(out, src)
	return out
}
