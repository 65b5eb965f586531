package rank_test

import (
	"fmt"

	"rankorder/rank"
)

func ExampleRankValues() {
	seq, err := rank.RankValues([]float64{0.8, 1.2, 1.2, 2.3, 18})
	if err != nil {
		panic(err)
	}
	for it := range seq {
		fmt.Println(it.Ranks(), it.Raw())
	}
	// Output:
	// [1] 0.8
	// [2.5] 1.2
	// [2.5] 1.2
	// [4] 2.3
	// [5] 18
}

func ExampleRerank() {
	type point struct{ X, Y float64 }
	points := []point{{2, 0.8}, {3, 1.2}, {5, 1.2}, {7, 2.3}, {11, 18}}

	byX, err := rank.Rank(points, func(p point) float64 { return p.X })
	if err != nil {
		panic(err)
	}
	var ranked []rank.Item[point]
	for it := range byX {
		ranked = append(ranked, it)
	}

	byY, err := rank.Rerank(ranked, func(p point) float64 { return p.Y })
	if err != nil {
		panic(err)
	}
	for it := range byY {
		fmt.Println(it.Ranks(), it.Raw())
	}
	// Output:
	// [1 1] {2 0.8}
	// [2 2.5] {3 1.2}
	// [3 2.5] {5 1.2}
	// [4 4] {7 2.3}
	// [5 5] {11 18}
}
