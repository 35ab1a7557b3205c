package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New(
		[]string{"Revenue.2022", "EBIT.2022", "MarketCap.2022"},
		[][]float64{
			{10.0, 1.0, 100.0},
			{20.0, 2.0, 200.0},
			{30.0, 3.0, 300.0},
		},
	)
	require.Nil(t, err)
	return tbl
}

func TestNew(t *testing.T) {
	testData := map[string]struct {
		cols []string
		rows [][]float64
		err  error
	}{
		"valid": {
			cols: []string{"a", "b"},
			rows: [][]float64{{1, 2}},
		},
		"no columns": {
			err: ErrNoColumns,
		},
		"ragged row": {
			cols: []string{"a", "b"},
			rows: [][]float64{{1}},
			err:  ErrColMismatch,
		},
		"no rows ok": {
			cols: []string{"a"},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			tbl, err := New(td.cols, td.rows)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.cols, tbl.Columns())
			assert.Equal(t, len(td.rows), tbl.NumRows())
		})
	}
}

func TestNewCopiesInput(t *testing.T) {
	rows := [][]float64{{1.0, 2.0}}
	tbl, err := New([]string{"a", "b"}, rows)
	require.Nil(t, err)

	rows[0][0] = 99.0
	v, err := tbl.At(0, "a")
	require.Nil(t, err)
	assert.Equal(t, 1.0, v)
}

func TestColumn(t *testing.T) {
	tbl := testTable(t)

	col, err := tbl.Column("EBIT.2022")
	require.Nil(t, err)
	assert.Equal(t, []float64{1.0, 2.0, 3.0}, col)

	_, err = tbl.Column("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSelect(t *testing.T) {
	tbl := testTable(t)

	sel, err := tbl.Select([]string{"MarketCap.2022", "Revenue.2022"})
	require.Nil(t, err)
	assert.Equal(t, []string{"MarketCap.2022", "Revenue.2022"}, sel.Columns())

	v, err := sel.At(1, "MarketCap.2022")
	require.Nil(t, err)
	assert.Equal(t, 200.0, v)

	_, err = tbl.Select([]string{"nope"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSelectRows(t *testing.T) {
	tbl := testTable(t)

	sub, err := tbl.SelectRows([]int{2, 0})
	require.Nil(t, err)
	require.Equal(t, 2, sub.NumRows())

	v, err := sub.At(0, "Revenue.2022")
	require.Nil(t, err)
	assert.Equal(t, 30.0, v)

	_, err = tbl.SelectRows([]int{5})
	assert.ErrorIs(t, err, ErrRowOutOfBounds)
}

func TestRetain(t *testing.T) {
	tbl := testTable(t)

	kept := tbl.Retain(func(row int) bool { return row != 1 })
	assert.Equal(t, 2, kept.NumRows())
	assert.Equal(t, 3, tbl.NumRows())
}

func TestMissing(t *testing.T) {
	tbl := testTable(t)
	require.Nil(t, tbl.Set(1, "EBIT.2022", math.NaN()))

	assert.Equal(t, 1, tbl.NumMissing())

	missing, err := tbl.RowHasMissing(1)
	require.Nil(t, err)
	assert.True(t, missing)

	missing, err = tbl.RowHasMissing(0)
	require.Nil(t, err)
	assert.False(t, missing)
}

func TestMatrixAndTargetVector(t *testing.T) {
	tbl := testTable(t)

	x, err := tbl.Matrix([]string{"Revenue.2022", "EBIT.2022"})
	require.Nil(t, err)
	m, n := x.Dims()
	assert.Equal(t, 3, m)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2.0, x.At(1, 1))

	y, err := tbl.TargetVector("MarketCap.2022")
	require.Nil(t, err)
	ym, yn := y.Dims()
	assert.Equal(t, 3, ym)
	assert.Equal(t, 1, yn)
	assert.Equal(t, 300.0, y.At(2, 0))
}

func TestSimulate(t *testing.T) {
	cols := []string{"a", "b", "c"}
	t1 := Simulate(cols, 20, 1.0, 100.0, 42)
	t2 := Simulate(cols, 20, 1.0, 100.0, 42)

	require.Equal(t, 20, t1.NumRows())
	assert.Equal(t, 0, t1.NumMissing())

	for i := 0; i < t1.NumRows(); i++ {
		for _, c := range cols {
			v1, err := t1.At(i, c)
			require.Nil(t, err)
			v2, err := t2.At(i, c)
			require.Nil(t, err)
			assert.Equal(t, v1, v2)
			assert.GreaterOrEqual(t, v1, 1.0)
			assert.LessOrEqual(t, v1, 100.0)
		}
	}
}
