package dataprep

import (
	"testing"

	"github.com/finml/go-marketcap/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	tbl, err := dataset.New(
		[]string{"Revenue.2022", "MarketCap.2022"},
		[][]float64{
			{10.0, 100.0},
			{50.0, 100.0},
			{10.0, 500.0},
			{10.0, 200.0},
		},
	)
	require.Nil(t, err)

	testData := map[string]struct {
		bounds  []Bound
		err     error
		numRows int
	}{
		"single bound": {
			bounds:  []Bound{{Column: "Revenue.2022", Max: 20.0}},
			numRows: 3,
		},
		"conjunctive": {
			bounds: []Bound{
				{Column: "Revenue.2022", Max: 20.0},
				{Column: "MarketCap.2022", Max: 200.0},
			},
			numRows: 2,
		},
		"inclusive upper bound": {
			bounds:  []Bound{{Column: "MarketCap.2022", Max: 100.0}},
			numRows: 2,
		},
		"unknown column": {
			bounds: []Bound{{Column: "nope", Max: 1.0}},
			err:    dataset.ErrUnknownColumn,
		},
		"no bounds keeps all": {
			numRows: 4,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			out, err := Filter(tbl, td.bounds)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.numRows, out.NumRows())

			// every retained row satisfies every bound
			for _, b := range td.bounds {
				col, err := out.Column(b.Column)
				require.Nil(t, err)
				for _, v := range col {
					assert.LessOrEqual(t, v, b.Max)
				}
			}
		})
	}
}

func TestFilterExactThresholdScenario(t *testing.T) {
	// 5 rows above the threshold, 15 at or below
	rows := make([][]float64, 20)
	for i := range rows {
		if i < 5 {
			rows[i] = []float64{1000.0 + float64(i)}
		} else {
			rows[i] = []float64{float64(i)}
		}
	}
	tbl, err := dataset.New([]string{"MarketCap.2023"}, rows)
	require.Nil(t, err)

	out, err := Filter(tbl, []Bound{{Column: "MarketCap.2023", Max: 500.0}})
	require.Nil(t, err)
	assert.Equal(t, 15, out.NumRows())
}
