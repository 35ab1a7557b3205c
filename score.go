package marketcap

import (
	"errors"
	"fmt"
	"math"

	"github.com/finml/go-marketcap/dataprep"
	"github.com/finml/go-marketcap/models"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// MAE computes the mean absolute error between predicted and actual values
func MAE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, ErrResLenMismatch
	}

	mae := 0.0
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		mae += math.Abs(actual[i] - predicted[i])
	}
	mae /= float64(len(actual))
	return mae, nil
}

// Evaluate scores a fitted model on a standardized test set. Predictions are
// inverted back to raw target units. Raw predictions below zero have no
// physical meaning for a capitalization so they are clamped to their absolute
// value and counted.
func Evaluate(name string, m models.Model, x mat.Matrix, yScaled []float64, scaler *dataprep.StandardScaler, target string) (*Evaluation, error) {
	predScaled, err := m.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("unable to predict with %s, %w", name, err)
	}

	maeScaled, err := MAE(predScaled, yScaled)
	if err != nil {
		return nil, err
	}
	r2 := stat.RSquaredFrom(predScaled, yScaled, nil)

	predicted, err := scaler.Inverse(target, predScaled)
	if err != nil {
		return nil, err
	}
	actual, err := scaler.Inverse(target, yScaled)
	if err != nil {
		return nil, err
	}

	var negative int
	for i, v := range predicted {
		if v < 0 {
			negative++
			predicted[i] = math.Abs(v)
		}
	}

	residuals := make([]float64, len(actual))
	for i := range actual {
		residuals[i] = actual[i] - predicted[i]
	}
	maeRaw, err := MAE(predicted, actual)
	if err != nil {
		return nil, err
	}

	return &Evaluation{
		Model:               name,
		MAEScaled:           maeScaled,
		MAERaw:              maeRaw,
		RSquared:            r2,
		NegativePredictions: negative,
		Predicted:           predicted,
		Actual:              actual,
		Residuals:           residuals,
	}, nil
}
