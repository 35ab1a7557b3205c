package dataset

import (
	"math/rand/v2"
)

// Simulate generates a dense table of positive values for tests and examples.
// Values are uniform in (lo, hi) and reproducible for a given seed.
func Simulate(cols []string, numRows int, lo, hi float64, seed uint64) *Table {
	rnd := rand.New(rand.NewPCG(seed, 0))

	rows := make([][]float64, numRows)
	for i := range rows {
		row := make([]float64, len(cols))
		for j := range row {
			row[j] = lo + rnd.Float64()*(hi-lo)
		}
		rows[i] = row
	}

	t, _ := New(cols, rows)
	return t
}
