package rank

import (
	"cmp"
	"iter"
	"slices"
)

// Rank ranks raw data by key. Each output item carries a one-element rank
// history. Output follows ascending key order, not input order.
func Rank[T any, K cmp.Ordered](data []T, key func(T) K) (iter.Seq[Item[T]], error) {
	return RankFunc(data, key, cmp.Compare[K])
}

// RankFunc is Rank with a caller supplied comparator.
func RankFunc[T, K any](data []T, key func(T) K, compare func(a, b K) int) (iter.Seq[Item[T]], error) {
	return RerankFunc(wrap(data), key, compare)
}

// RankAny is Rank for dynamically typed keys; see AssignAny.
func RankAny[T any](data []T, key func(T) any) (iter.Seq[Item[T]], error) {
	return RerankAny(wrap(data), key)
}

// RankValues ranks ordered values by themselves.
func RankValues[K cmp.Ordered](data []K) (iter.Seq[Item[K]], error) {
	return Rank(data, Identity[K])
}

// RankSeq ranks a single-pass source. Ranking needs the whole collection
// (one sort, then a grouping scan), so seq is drained into a slice first.
func RankSeq[T any, K cmp.Ordered](seq iter.Seq[T], key func(T) K) (iter.Seq[Item[T]], error) {
	return Rank(slices.Collect(seq), key)
}

// Rerank runs one more pass over already ranked items and appends the new
// rank to every history. Earlier ranks keep their order.
func Rerank[T any, K cmp.Ordered](items []Item[T], key func(T) K) (iter.Seq[Item[T]], error) {
	return RerankFunc(items, key, cmp.Compare[K])
}

// RerankFunc is Rerank with a caller supplied comparator.
func RerankFunc[T, K any](items []Item[T], key func(T) K, compare func(a, b K) int) (iter.Seq[Item[T]], error) {
	pairs, err := AssignFunc(items, key, compare)
	if err != nil {
		return nil, err
	}
	return appendRanks(pairs), nil
}

// RerankAny is Rerank for dynamically typed keys; see AssignAny.
func RerankAny[T any](items []Item[T], key func(T) any) (iter.Seq[Item[T]], error) {
	pairs, err := AssignAny(items, key)
	if err != nil {
		return nil, err
	}
	return appendRanks(pairs), nil
}

// Identity is the default key: the value itself.
func Identity[K any](v K) K { return v }

func wrap[T any](data []T) []Item[T] {
	items := make([]Item[T], len(data))
	for i, d := range data {
		items[i] = Item[T]{raw: d}
	}
	return items
}

func appendRanks[T any](pairs iter.Seq2[float64, Item[T]]) iter.Seq[Item[T]] {
	return func(yield func(Item[T]) bool) {
		for r, it := range pairs {
			if !yield(it.with(r)) {
				return
			}
		}
	}
}
