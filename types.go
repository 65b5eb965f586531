package main

import "errors"

const (
	OrderRanked = "ranked" // ascending by the last pass key, as the ranker emits
	OrderInput  = "input"  // original row order
)

const (
	SourceCLI        = "cli"
	SourceDataset    = "dataset"
	SourceRequest    = "request"
	SourceClickHouse = "clickhouse"
)

var (
	ErrNoPasses      = errors.New("no ranking passes")
	ErrUnknownColumn = errors.New("unknown column")
	ErrBadOrder      = errors.New("bad order")
	ErrDuplicateRow  = errors.New("duplicate row id")
	ErrTooManyRows   = errors.New("too many rows")
	ErrBadLimit      = errors.New("bad limit")
	ErrUnsafeQuery   = errors.New("unsafe query")
)

// Row is one element to rank: an id plus named column values.
type Row struct {
	ID     string         `json:"id" yaml:"id"`
	Values map[string]any `json:"values" yaml:"values"`
}

// Plan names the columns to rank by, one pass per column, in order.
type Plan struct {
	Passes []string `json:"passes" yaml:"passes"`
	Order  string   `json:"order,omitempty" yaml:"order"`
	Limit  int      `json:"limit,omitempty" yaml:"limit"`
}

// RankedRow carries one rank per pass, oldest first.
type RankedRow struct {
	ID     string         `json:"id"`
	Index  int            `json:"index"`
	Ranks  []float64      `json:"ranks"`
	Values map[string]any `json:"values"`
}
