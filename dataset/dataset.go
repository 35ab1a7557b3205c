// Package dataset holds the tabular company financials used throughout the
// report pipeline. A Table is a fixed schema of named numeric columns where
// one row is one company and missing cells are NaN.
package dataset

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoColumns      = errors.New("no columns in table")
	ErrNoRows         = errors.New("no rows in table")
	ErrColMismatch    = errors.New("row width does not match column count")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrRowOutOfBounds = errors.New("row is out of bounds")
)

// Table is an ordered collection of rows sharing a fixed column schema.
// Pipeline stages never mutate their input and instead return a new table.
type Table struct {
	cols   []string
	colIdx map[string]int
	data   [][]float64
}

// New creates a table from column names and row major data. Rows are copied
// and each must match the column count.
func New(cols []string, rows [][]float64) (*Table, error) {
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}

	colIdx := make(map[string]int, len(cols))
	for i, c := range cols {
		colIdx[c] = i
	}

	data := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("at row %d got width %d with %d columns, %w", i, len(row), len(cols), ErrColMismatch)
		}
		data[i] = make([]float64, len(row))
		copy(data[i], row)
	}

	colsCopy := make([]string, len(cols))
	copy(colsCopy, cols)

	return &Table{
		cols:   colsCopy,
		colIdx: colIdx,
		data:   data,
	}, nil
}

// Columns returns the schema in column order
func (t *Table) Columns() []string {
	cols := make([]string, len(t.cols))
	copy(cols, t.cols)
	return cols
}

func (t *Table) NumRows() int {
	return len(t.data)
}

func (t *Table) NumCols() int {
	return len(t.cols)
}

func (t *Table) HasColumn(name string) bool {
	_, exists := t.colIdx[name]
	return exists
}

// Copy returns a deep copy of the table
func (t *Table) Copy() *Table {
	cp, _ := New(t.cols, t.data)
	return cp
}

// At returns the value at a row and named column
func (t *Table) At(row int, col string) (float64, error) {
	j, exists := t.colIdx[col]
	if !exists {
		return 0, fmt.Errorf("%s, %w", col, ErrUnknownColumn)
	}
	if row < 0 || row >= len(t.data) {
		return 0, fmt.Errorf("row %d of %d, %w", row, len(t.data), ErrRowOutOfBounds)
	}
	return t.data[row][j], nil
}

// Set overwrites the value at a row and named column
func (t *Table) Set(row int, col string, val float64) error {
	j, exists := t.colIdx[col]
	if !exists {
		return fmt.Errorf("%s, %w", col, ErrUnknownColumn)
	}
	if row < 0 || row >= len(t.data) {
		return fmt.Errorf("row %d of %d, %w", row, len(t.data), ErrRowOutOfBounds)
	}
	t.data[row][j] = val
	return nil
}

// Column returns a copy of the values for a named column
func (t *Table) Column(name string) ([]float64, error) {
	j, exists := t.colIdx[name]
	if !exists {
		return nil, fmt.Errorf("%s, %w", name, ErrUnknownColumn)
	}
	col := make([]float64, len(t.data))
	for i, row := range t.data {
		col[i] = row[j]
	}
	return col, nil
}

// Row returns a copy of the values for a row in column order
func (t *Table) Row(i int) ([]float64, error) {
	if i < 0 || i >= len(t.data) {
		return nil, fmt.Errorf("row %d of %d, %w", i, len(t.data), ErrRowOutOfBounds)
	}
	row := make([]float64, len(t.data[i]))
	copy(row, t.data[i])
	return row, nil
}

// Select returns a new table restricted to the named columns in the given order
func (t *Table) Select(cols []string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, exists := t.colIdx[c]
		if !exists {
			return nil, fmt.Errorf("%s, %w", c, ErrUnknownColumn)
		}
		idx[i] = j
	}

	rows := make([][]float64, len(t.data))
	for i, row := range t.data {
		sel := make([]float64, len(idx))
		for k, j := range idx {
			sel[k] = row[j]
		}
		rows[i] = sel
	}
	return New(cols, rows)
}

// SelectRows returns a new table holding copies of the rows at the given indices
func (t *Table) SelectRows(idx []int) (*Table, error) {
	rows := make([][]float64, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= len(t.data) {
			return nil, fmt.Errorf("row %d of %d, %w", i, len(t.data), ErrRowOutOfBounds)
		}
		rows = append(rows, t.data[i])
	}
	return New(t.cols, rows)
}

// Retain returns a new table keeping only rows where the predicate holds
func (t *Table) Retain(keep func(row int) bool) *Table {
	rows := make([][]float64, 0, len(t.data))
	for i, row := range t.data {
		if keep(i) {
			rows = append(rows, row)
		}
	}
	nt, _ := New(t.cols, rows)
	return nt
}

// RowHasMissing reports whether any cell of the row is NaN
func (t *Table) RowHasMissing(row int) (bool, error) {
	if row < 0 || row >= len(t.data) {
		return false, fmt.Errorf("row %d of %d, %w", row, len(t.data), ErrRowOutOfBounds)
	}
	for _, v := range t.data[row] {
		if math.IsNaN(v) {
			return true, nil
		}
	}
	return false, nil
}

// NumMissing counts the NaN cells across the whole table
func (t *Table) NumMissing() int {
	var n int
	for _, row := range t.data {
		for _, v := range row {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// Matrix builds a design matrix from the named columns for model fitting
func (t *Table) Matrix(cols []string) (*mat.Dense, error) {
	if len(t.data) == 0 {
		return nil, ErrNoRows
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, exists := t.colIdx[c]
		if !exists {
			return nil, fmt.Errorf("%s, %w", c, ErrUnknownColumn)
		}
		idx[i] = j
	}

	data := make([]float64, 0, len(t.data)*len(idx))
	for _, row := range t.data {
		for _, j := range idx {
			data = append(data, row[j])
		}
	}
	return mat.NewDense(len(t.data), len(idx), data), nil
}

// TargetVector builds a single column matrix from the named target column
func (t *Table) TargetVector(col string) (*mat.Dense, error) {
	if len(t.data) == 0 {
		return nil, ErrNoRows
	}
	y, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(len(y), 1, y), nil
}
