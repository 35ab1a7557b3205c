package models

import (
	"testing"

	mat_ "github.com/finml/go-marketcap/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKNNOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *KNNOptions
		err      error
		expected *KNNOptions
	}{
		"nil": {nil, nil, NewDefaultKNNOptions()},
		"zero neighbors": {
			opt: &KNNOptions{K: 0},
			err: ErrNonPositiveNeighbors,
		},
		"defaults parallelization": {
			opt:      &KNNOptions{K: 3},
			expected: &KNNOptions{K: 3, Parallelization: 1},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestKNNRegression(t *testing.T) {
	x, err := mat_.NewDenseFromArray([][]float64{
		{0.0, 0.0},
		{1.0, 1.0},
		{2.0, 2.0},
		{10.0, 10.0},
	})
	require.Nil(t, err)
	y, err := mat_.NewTargetVector([]float64{0.0, 1.0, 2.0, 10.0})
	require.Nil(t, err)

	testData := map[string]struct {
		k        int
		query    [][]float64
		expected []float64
	}{
		"k1 exact training row": {
			k:        1,
			query:    [][]float64{{1.0, 1.0}},
			expected: []float64{1.0},
		},
		"k2 averages two nearest": {
			k:        2,
			query:    [][]float64{{0.4, 0.4}},
			expected: []float64{0.5},
		},
		"k3 ignores the far row": {
			k:        3,
			query:    [][]float64{{1.0, 1.0}},
			expected: []float64{1.0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			model, err := NewKNNRegression(&KNNOptions{K: td.k})
			require.Nil(t, err)
			require.Nil(t, model.Fit(x, y))

			q, err := mat_.NewDenseFromArray(td.query)
			require.Nil(t, err)

			res, err := model.Predict(q)
			require.Nil(t, err)
			assert.InDeltaSlice(t, td.expected, res, 1e-12)
		})
	}
}

func TestKNNRegressionFeatureMismatch(t *testing.T) {
	x, err := mat_.NewDenseFromArray([][]float64{
		{0.0, 0.0, 0.0},
		{1.0, 1.0, 1.0},
	})
	require.Nil(t, err)
	y, err := mat_.NewTargetVector([]float64{0.0, 1.0})
	require.Nil(t, err)

	model, err := NewKNNRegression(&KNNOptions{K: 1})
	require.Nil(t, err)
	require.Nil(t, model.Fit(x, y))

	// narrower query pads to the same width as the training rows
	q, err := mat_.NewDenseFromArray([][]float64{{1.0, 1.0}})
	require.Nil(t, err)

	_, err = model.Predict(q)
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)
}

func TestKNNRegressionPredictBeforeFit(t *testing.T) {
	model, err := NewKNNRegression(nil)
	require.Nil(t, err)

	q, err := mat_.NewDenseFromArray([][]float64{{1.0, 1.0}})
	require.Nil(t, err)

	_, err = model.Predict(q)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestKNNRegressionScorePerfect(t *testing.T) {
	x, err := mat_.NewDenseFromArray([][]float64{
		{0.0}, {1.0}, {2.0}, {3.0},
	})
	require.Nil(t, err)
	y, err := mat_.NewTargetVector([]float64{0.0, 2.0, 4.0, 6.0})
	require.Nil(t, err)

	model, err := NewKNNRegression(&KNNOptions{K: 1})
	require.Nil(t, err)
	require.Nil(t, model.Fit(x, y))

	r2, err := model.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, 1e-12)
}
