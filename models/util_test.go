package models

import (
	"testing"

	"math/rand/v2"

	mat_ "github.com/finml/go-marketcap/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testLinearModel(t *testing.T, model *LinearRegression, x, y mat.Matrix, intercept float64, coef []float64, tol float64) {
	err := model.Fit(x, y)
	require.Nil(t, err)

	assert.InDelta(t, intercept, model.Intercept(), tol)

	c := model.Coef()
	assert.InDeltaSlice(t, coef, c, tol)

	r2, err := model.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, tol)
}

func generateBenchData(numObs, numFeat int) (mat.Matrix, mat.Matrix, error) {
	rnd := rand.New(rand.NewPCG(42, 0))

	data := make([][]float64, numObs)
	target := make([]float64, numObs)
	for i := 0; i < numObs; i++ {
		data[i] = make([]float64, numFeat)
		for j := 0; j < numFeat; j++ {
			data[i][j] = rnd.Float64()
			target[i] += float64(j+1) * data[i][j]
		}
	}

	x, err := mat_.NewDenseFromArray(data)
	if err != nil {
		return nil, nil, err
	}
	y, err := mat_.NewTargetVector(target)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}
