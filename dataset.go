package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type datasetFile struct {
	Dataset struct {
		Name   string   `yaml:"name"`
		Passes []string `yaml:"passes"`
		Order  string   `yaml:"order"`
		Limit  int      `yaml:"limit"`
		Rows   []Row    `yaml:"rows"`
	} `yaml:"dataset"`
}

// Dataset is a named set of rows with a default ranking plan.
type Dataset struct {
	Name string
	Path string
	Plan Plan
	Rows []Row
}

func LoadDataset(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ds, err := ParseDataset(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Path = path
	return ds, nil
}

func ParseDataset(b []byte) (*Dataset, error) {
	var df datasetFile
	if err := yaml.Unmarshal(b, &df); err != nil {
		return nil, err
	}
	d := df.Dataset

	plan := Plan{
		Passes: cleanPasses(d.Passes),
		Order:  strings.ToLower(strings.TrimSpace(d.Order)),
		Limit:  d.Limit,
	}
	if err := plan.validate(); err != nil {
		return nil, err
	}

	rows, err := cleanRows(d.Rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows found in dataset")
	}

	return &Dataset{
		Name: strings.TrimSpace(d.Name),
		Plan: plan,
		Rows: rows,
	}, nil
}

func cleanRows(in []Row) ([]Row, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]Row, 0, len(in))
	for i, r := range in {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return nil, fmt.Errorf("row %d: missing id", i)
		}
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRow, id)
		}
		seen[id] = struct{}{}
		if r.Values == nil {
			r.Values = map[string]any{}
		}
		r.ID = id
		out = append(out, r)
	}
	return out, nil
}

func cleanPasses(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
