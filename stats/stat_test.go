package stats

import (
	"testing"

	"github.com/finml/go-marketcap/dataset"
	"github.com/finml/go-marketcap/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutlierIndices(t *testing.T) {
	testData := map[string]struct {
		y           []float64
		lowerPerc   float64
		upperPerc   float64
		tukeyFactor float64
		expected    []int
	}{
		"single high outlier": {
			y:           []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 1000},
			lowerPerc:   0.1,
			upperPerc:   0.9,
			tukeyFactor: 1.0,
			expected:    []int{9},
		},
		"low and high": {
			y:           []float64{-500, 2, 3, 4, 5, 6, 7, 8, 9, 1000},
			lowerPerc:   0.1,
			upperPerc:   0.9,
			tukeyFactor: 0.5,
			expected:    []int{0, 9},
		},
		"no outliers": {
			y:           []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			lowerPerc:   0.0,
			upperPerc:   1.0,
			tukeyFactor: 1.0,
			expected:    nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := OutlierIndices(td.y, td.lowerPerc, td.upperPerc, td.tukeyFactor)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestCorrelations(t *testing.T) {
	tbl, err := dataset.New(
		[]string{"a", "b", "c"},
		[][]float64{
			{1.0, 2.0, 4.0},
			{2.0, 4.0, 3.0},
			{3.0, 6.0, 2.0},
			{4.0, 8.0, 1.0},
		},
	)
	require.Nil(t, err)

	corr, err := Correlations(tbl, []string{"a", "b", "c"})
	require.Nil(t, err)

	assert.InDelta(t, 1.0, corr["a"]["a"], 1e-12)
	assert.InDelta(t, 1.0, corr["a"]["b"], 1e-12)
	assert.InDelta(t, -1.0, corr["a"]["c"], 1e-12)
	assert.InDelta(t, corr["b"]["c"], corr["c"]["b"], 1e-12)
}

func TestCorrelationsUnknownColumn(t *testing.T) {
	tbl, err := dataset.New([]string{"a"}, [][]float64{{1.0}, {2.0}})
	require.Nil(t, err)

	_, err = Correlations(tbl, []string{"nope"})
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestVarianceInflationFactor(t *testing.T) {
	// c is a near copy of a so both should inflate, b is independent
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	b := []float64{5, 1, 4, 8, 2, 7, 3, 6}
	c := []float64{1.01, 2.0, 3.02, 3.99, 5.01, 6.0, 7.02, 7.98}

	vif, err := VarianceInflationFactor(map[string][]float64{
		"a": a,
		"b": b,
		"c": c,
	})
	require.Nil(t, err)

	assert.Greater(t, vif["a"], 10.0)
	assert.Greater(t, vif["c"], 10.0)
	assert.Less(t, vif["b"], 10.0)
}

func TestVarianceInflationFactorErrors(t *testing.T) {
	testData := map[string]struct {
		features map[string][]float64
		err      error
	}{
		"too few features": {
			features: map[string][]float64{"a": {1, 2, 3}},
			err:      ErrMinimumFeatures,
		},
		"too few points": {
			features: map[string][]float64{"a": {1}, "b": {2}},
			err:      ErrFeatureLen,
		},
		"length mismatch": {
			features: map[string][]float64{"a": {1, 2, 3}, "b": {1, 2}},
			err:      models.ErrFeatureLenMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := VarianceInflationFactor(td.features)
			assert.ErrorIs(t, err, td.err)
		})
	}
}
