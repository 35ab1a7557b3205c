package dataprep

import (
	"fmt"

	"github.com/finml/go-marketcap/dataset"
)

// Bound is an inclusive upper limit on a named column. Bounds are domain
// constants chosen to drop extreme magnitude companies, not derived
// statistically.
type Bound struct {
	Column string
	Max    float64
}

// Filter returns a copy of the table retaining only rows within every bound.
// Bounds are conjunctive so their order does not matter. Rows with a missing
// value in a bounded column are dropped.
func Filter(t *dataset.Table, bounds []Bound) (*dataset.Table, error) {
	cols := make(map[string][]float64, len(bounds))
	for _, b := range bounds {
		if _, exists := cols[b.Column]; exists {
			continue
		}
		col, err := t.Column(b.Column)
		if err != nil {
			return nil, fmt.Errorf("bound column, %w", err)
		}
		cols[b.Column] = col
	}

	return t.Retain(func(row int) bool {
		for _, b := range bounds {
			if !(cols[b.Column][row] <= b.Max) {
				return false
			}
		}
		return true
	}), nil
}
