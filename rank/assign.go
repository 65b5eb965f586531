package rank

import (
	"cmp"
	"iter"
	"slices"
)

// Assign runs one ranking pass over items, ordering them by key. It yields
// (rank, item) pairs in ascending key order; equal keys share the mean of
// the ranks they span and keep their input order.
//
// The items are not reordered or modified. The returned sequence can be
// ranged more than once and produces the same pairs each time.
func Assign[T any, K cmp.Ordered](items []Item[T], key func(T) K) (iter.Seq2[float64, Item[T]], error) {
	return AssignFunc(items, key, cmp.Compare[K])
}

// AssignFunc is Assign with a caller supplied comparator. compare must be a
// total order: negative, zero or positive as a sorts before, with, or after b.
func AssignFunc[T, K any](items []Item[T], key func(T) K, compare func(a, b K) int) (iter.Seq2[float64, Item[T]], error) {
	if len(items) == 0 {
		return nil, ErrEmptyInput
	}
	return sortAndWalk(keyAll(items, key), compare), nil
}

// AssignAny ranks by dynamically typed keys. All keys of one pass must be of
// the same kind (numbers, strings, bools or times); anything else fails with
// an *IncomparableKeyError before a single pair is produced.
func AssignAny[T any](items []Item[T], key func(T) any) (iter.Seq2[float64, Item[T]], error) {
	if len(items) == 0 {
		return nil, ErrEmptyInput
	}
	ks := keyAll(items, key)
	k, err := commonKind(ks)
	if err != nil {
		return nil, err
	}
	return sortAndWalk(ks, func(a, b any) int { return compareKind(k, a, b) }), nil
}

// keyAll evaluates key exactly once per item.
func keyAll[T, K any](items []Item[T], key func(T) K) []keyed[T, K] {
	out := make([]keyed[T, K], len(items))
	for i, it := range items {
		out[i] = keyed[T, K]{item: it, key: key(it.raw)}
	}
	return out
}

func sortAndWalk[T, K any](ks []keyed[T, K], compare func(a, b K) int) iter.Seq2[float64, Item[T]] {
	slices.SortStableFunc(ks, func(a, b keyed[T, K]) int {
		return compare(a.key, b.key)
	})
	equal := func(a, b K) bool { return compare(a, b) == 0 }

	return func(yield func(float64, Item[T]) bool) {
		w := newWalker(ks, equal)
		for {
			r, it, ok := w.next()
			if !ok || !yield(r, it) {
				return
			}
		}
	}
}
