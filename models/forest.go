package models

import (
	"errors"
	"fmt"
	"sync"

	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultNumTrees        = 100
	DefaultMinSamplesSplit = 2
	DefaultMinSamplesLeaf  = 1
)

var (
	ErrNonPositiveTrees = errors.New("tree count must be positive")
	ErrNegativeSplit    = errors.New("negative sample split limits")
)

// ForestOptions represents input options to run the random forest regression
type ForestOptions struct {
	// NumTrees is the number of bootstrapped trees averaged into a prediction.
	NumTrees int

	// MaxFeatures is the number of candidate features considered at each split.
	// 0 defaults to a third of the feature count.
	MaxFeatures int

	// MaxDepth limits tree depth. 0 means grow until the leaf limits stop splitting.
	MaxDepth int

	MinSamplesSplit int
	MinSamplesLeaf  int

	// Seed makes bootstrap sampling and feature subsampling reproducible.
	Seed uint64

	// Parallelization sets how many trees to fit concurrently.
	Parallelization int
}

// Validate runs basic validation on forest options
func (f *ForestOptions) Validate() (*ForestOptions, error) {
	if f == nil {
		f = NewDefaultForestOptions()
	}
	if f.NumTrees <= 0 {
		return nil, ErrNonPositiveTrees
	}
	if f.MinSamplesSplit < 0 || f.MinSamplesLeaf < 0 {
		return nil, ErrNegativeSplit
	}
	if f.MinSamplesSplit < 2 {
		f.MinSamplesSplit = DefaultMinSamplesSplit
	}
	if f.MinSamplesLeaf < 1 {
		f.MinSamplesLeaf = DefaultMinSamplesLeaf
	}
	if f.Parallelization <= 0 {
		f.Parallelization = 1
	}
	return f, nil
}

// NewDefaultForestOptions returns a default set of random forest regression options
func NewDefaultForestOptions() *ForestOptions {
	return &ForestOptions{
		NumTrees:        DefaultNumTrees,
		MinSamplesSplit: DefaultMinSamplesSplit,
		MinSamplesLeaf:  DefaultMinSamplesLeaf,
		Parallelization: 1,
	}
}

// RegressionForest averages an ensemble of regression trees each fit on a
// bootstrap sample with random feature subsets per split.
type RegressionForest struct {
	opt *ForestOptions

	trees       []*regressionTree
	numFeatures int
}

// NewRegressionForest initializes a random forest model ready for fitting
func NewRegressionForest(opt *ForestOptions) (*RegressionForest, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &RegressionForest{
		opt: opt,
	}, nil
}

// Fit grows the ensemble against the given training data
func (f *RegressionForest) Fit(x, y mat.Matrix) error {
	if f.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()
	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	rows := make([][]float64, m)
	for i := 0; i < m; i++ {
		rows[i] = mat.Row(nil, i, x)
	}
	target := mat.Col(nil, 0, y)

	maxFeatures := f.opt.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = n / 3
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	f.numFeatures = n
	f.trees = make([]*regressionTree, f.opt.NumTrees)

	sem := make(chan struct{}, f.opt.Parallelization)
	var wg sync.WaitGroup
	for i := 0; i < f.opt.NumTrees; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer func() {
				wg.Done()
				<-sem
			}()
			rnd := rand.New(rand.NewPCG(f.opt.Seed, uint64(i)))

			// bootstrap by index to avoid copying rows
			sample := make([]int, m)
			for j := 0; j < m; j++ {
				sample[j] = rnd.IntN(m)
			}

			tree := &regressionTree{
				cfg: treeConfig{
					maxDepth:        f.opt.MaxDepth,
					minSamplesSplit: f.opt.MinSamplesSplit,
					minSamplesLeaf:  f.opt.MinSamplesLeaf,
					maxFeatures:     maxFeatures,
				},
			}
			tree.fit(rows, target, sample, n, rnd)
			f.trees[i] = tree
		}(i)
	}
	wg.Wait()

	return nil
}

// Predict computes the average of the per tree leaf estimates per design matrix row
func (f *RegressionForest) Predict(x mat.Matrix) ([]float64, error) {
	if f.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if len(f.trees) == 0 {
		return nil, ErrNotFitted
	}
	m, n := x.Dims()
	if n != f.numFeatures {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, f.numFeatures, ErrFeatureLenMismatch)
	}

	out := make([]float64, m)
	for i := 0; i < m; i++ {
		row := mat.Row(nil, i, x)
		sum := 0.0
		for _, tree := range f.trees {
			sum += tree.predictRow(row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

// Score computes the coefficient of determination of the prediction
func (f *RegressionForest) Score(x, y mat.Matrix) (float64, error) {
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()
	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := f.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)
	return stat.RSquaredFrom(res, ySlice, nil), nil
}

// FeatureImportances returns the impurity reduction summed per feature across
// all trees, normalized to sum to 1.0. Order follows the training matrix columns.
func (f *RegressionForest) FeatureImportances() ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, ErrNotFitted
	}

	imp := make([]float64, f.numFeatures)
	for _, tree := range f.trees {
		for j, v := range tree.importance {
			imp[j] += v
		}
	}

	var total float64
	for _, v := range imp {
		total += v
	}
	if total > 0 {
		for j := range imp {
			imp[j] /= total
		}
	}
	return imp, nil
}
