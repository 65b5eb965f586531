package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDataset_When_FileValid(t *testing.T) {
	t.Parallel()

	ds, err := LoadDataset(filepath.Join("testdata", "pairs.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "pairs", ds.Name)
	assert.Equal(t, []string{"x", "y"}, ds.Plan.Passes)
	assert.Equal(t, OrderRanked, ds.Plan.Order)
	require.Len(t, ds.Rows, 5)
	assert.Equal(t, "a", ds.Rows[0].ID)
	assert.Equal(t, 2, ds.Rows[0].Values["x"])
	assert.Equal(t, 0.8, ds.Rows[0].Values["y"])
}

func TestLoadDataset_When_FileMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadDataset(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseDataset_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no rows", "dataset:\n  name: x\n  rows: []\n", "no rows"},
		{"missing id", "dataset:\n  rows:\n    - values: {x: 1}\n", "missing id"},
		{"duplicate id", "dataset:\n  rows:\n    - id: a\n    - id: ' a '\n", "duplicate row id"},
		{"bad order", "dataset:\n  order: sideways\n  rows:\n    - id: a\n", "bad order"},
		{"bad yaml", "dataset: [\n", "yaml"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseDataset([]byte(c.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

func TestParseDataset_CleansInput(t *testing.T) {
	t.Parallel()

	ds, err := ParseDataset([]byte(`
dataset:
  passes: [" score ", "", age]
  order: " INPUT "
  rows:
    - id: "  r1 "
    - id: r2
      values: {score: 3}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"score", "age"}, ds.Plan.Passes)
	assert.Equal(t, OrderInput, ds.Plan.Order)
	assert.Equal(t, "r1", ds.Rows[0].ID)
	assert.NotNil(t, ds.Rows[0].Values)
}
