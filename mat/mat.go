package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch        = errors.New("column size mismatch")
	ErrUninitializedArray = errors.New("uninitialized array")
)

// NewDenseFromArray flattens a row-oriented 2D slice into a gonum dense matrix.
// All rows must have the same number of columns.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if m == 0 || n <= 0 {
		return nil, ErrUninitializedArray
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewTargetVector wraps a target slice as a m x 1 dense matrix for model fitting.
func NewTargetVector(y []float64) (*mat.Dense, error) {
	if len(y) == 0 {
		return nil, ErrUninitializedArray
	}
	data := make([]float64, len(y))
	copy(data, y)
	return mat.NewDense(len(y), 1, data), nil
}
