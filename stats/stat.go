// Package stats provides diagnostic statistics over feature tables. These
// inform feature selection and threshold choices before modeling but are not
// part of the fit path.
package stats

import (
	"errors"
	"math"
	"sort"

	"github.com/finml/go-marketcap/dataset"
	mat_ "github.com/finml/go-marketcap/mat"
	"github.com/finml/go-marketcap/models"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrMinimumFeatures = errors.New("need at least 2 features to compute VIF")
	ErrFeatureLen      = errors.New("must have at least 2 points per feature")
)

// OutlierIndices returns the indices of y falling outside the widened
// percentile band. The band between the lower and upper percentile values is
// expanded on both sides by tukeyFactor times its width.
func OutlierIndices(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	sorted := make([]float64, len(y))
	copy(sorted, y)
	sort.Float64s(sorted)

	lowerIdx := int(math.Floor(float64(len(sorted)) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(sorted)) * upperPerc))
	if upperIdx >= len(sorted) {
		upperIdx = len(sorted) - 1
	}

	lower := sorted[lowerIdx]
	upper := sorted[upperIdx]
	band := upper - lower
	lower -= band * tukeyFactor
	upper += band * tukeyFactor

	var outlierIdx []int
	for i, v := range y {
		if v <= lower || v >= upper {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// Correlations computes the pairwise Pearson correlation of the requested
// table columns keyed by column pair.
func Correlations(t *dataset.Table, cols []string) (map[string]map[string]float64, error) {
	series := make(map[string][]float64, len(cols))
	for _, c := range cols {
		vals, err := t.Column(c)
		if err != nil {
			return nil, err
		}
		series[c] = vals
	}

	out := make(map[string]map[string]float64, len(cols))
	for _, a := range cols {
		out[a] = make(map[string]float64, len(cols))
		for _, b := range cols {
			out[a][b] = stat.Correlation(series[a], series[b], nil)
		}
	}
	return out, nil
}

// VarianceInflationFactor regresses each feature on all the others and
// reports 1/(1-R2) per feature. Values above roughly 10 flag collinear
// features worth dropping before model comparison.
func VarianceInflationFactor(features map[string][]float64) (map[string]float64, error) {
	if len(features) < 2 {
		return nil, ErrMinimumFeatures
	}
	var m int
	for _, feature := range features {
		if len(feature) < 2 {
			return nil, ErrFeatureLen
		}
		if m == 0 {
			m = len(feature)
			continue
		}
		if m != len(feature) {
			return nil, models.ErrFeatureLenMismatch
		}
	}

	labels := make([]string, 0, len(features))
	for label := range features {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	vif := make(map[string]float64, len(labels))
	for _, label := range labels {
		rows := make([][]float64, m)
		for i := 0; i < m; i++ {
			row := make([]float64, 0, len(labels)-1)
			for _, other := range labels {
				if other == label {
					continue
				}
				row = append(row, features[other][i])
			}
			rows[i] = row
		}
		x, err := mat_.NewDenseFromArray(rows)
		if err != nil {
			return nil, err
		}
		y, err := mat_.NewTargetVector(features[label])
		if err != nil {
			return nil, err
		}

		lr, err := models.NewLinearRegression(nil)
		if err != nil {
			return nil, err
		}
		if err := lr.Fit(x, y); err != nil {
			return nil, err
		}
		r2, err := lr.Score(x, y)
		if err != nil {
			return nil, err
		}
		vif[label] = 1.0 / (1.0 - r2)
	}
	return vif, nil
}
