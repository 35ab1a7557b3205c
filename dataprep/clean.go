// Package dataprep prepares the raw financial table for model fitting:
// zero-as-missing cleaning, fixed threshold outlier filtering, column
// standardization, and the train/test split.
package dataprep

import (
	"fmt"
	"math"

	"github.com/finml/go-marketcap/dataset"
)

// CleanZeros returns a copy of the table where every literal zero cell is
// replaced with a missing marker. Unreported fields in the source filings
// come through as zeros, which also masks genuine zero values.
func CleanZeros(t *dataset.Table) *dataset.Table {
	out := t.Copy()
	for i := 0; i < out.NumRows(); i++ {
		for _, col := range out.Columns() {
			v, _ := out.At(i, col)
			if v == 0.0 {
				_ = out.Set(i, col, math.NaN())
			}
		}
	}
	return out
}

// DropMissingTarget returns a copy of the table keeping only rows with a known
// value in the target column.
func DropMissingTarget(t *dataset.Table, target string) (*dataset.Table, error) {
	y, err := t.Column(target)
	if err != nil {
		return nil, fmt.Errorf("target column, %w", err)
	}
	return t.Retain(func(row int) bool {
		return !math.IsNaN(y[row])
	}), nil
}
