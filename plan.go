package main

import (
	"fmt"
	"slices"

	"rankorder/rank"
)

type indexedRow struct {
	idx int
	row Row
}

func (p Plan) validate() error {
	switch p.Order {
	case "", OrderRanked, OrderInput:
	default:
		return fmt.Errorf("%w %q (want %s|%s)", ErrBadOrder, p.Order, OrderRanked, OrderInput)
	}
	if p.Limit < 0 {
		return fmt.Errorf("%w %d", ErrBadLimit, p.Limit)
	}
	return nil
}

// ApplyPlan ranks rows by each pass column in turn: the first pass ranks the
// raw rows, every later pass reranks the previous output. Each result row
// carries one rank per pass.
func ApplyPlan(rows []Row, p Plan) ([]RankedRow, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(p.Passes) == 0 {
		return nil, ErrNoPasses
	}
	for _, col := range p.Passes {
		for _, r := range rows {
			if _, ok := r.Values[col]; !ok {
				return nil, fmt.Errorf("%w %q in row %q", ErrUnknownColumn, col, r.ID)
			}
		}
	}

	in := make([]indexedRow, len(rows))
	for i, r := range rows {
		in[i] = indexedRow{idx: i, row: r}
	}

	seq, err := rank.RankAny(in, columnKey(p.Passes[0]))
	if err != nil {
		return nil, fmt.Errorf("pass %q: %w", p.Passes[0], err)
	}
	items := slices.Collect(seq)
	for _, col := range p.Passes[1:] {
		seq, err := rank.RerankAny(items, columnKey(col))
		if err != nil {
			return nil, fmt.Errorf("pass %q: %w", col, err)
		}
		items = slices.Collect(seq)
	}

	out := make([]RankedRow, len(items))
	for i, it := range items {
		r := it.Raw()
		out[i] = RankedRow{
			ID:     r.row.ID,
			Index:  r.idx,
			Ranks:  it.Ranks(),
			Values: r.row.Values,
		}
	}

	if p.Order == OrderInput {
		slices.SortFunc(out, func(a, b RankedRow) int { return a.Index - b.Index })
	}
	if p.Limit > 0 && p.Limit < len(out) {
		out = out[:p.Limit]
	}
	return out, nil
}

func columnKey(col string) func(indexedRow) any {
	return func(r indexedRow) any { return r.row.Values[col] }
}
