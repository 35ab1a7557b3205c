package models

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/finml/go-marketcap/floatsunrolled"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultNeighbors = 5
)

var (
	ErrNonPositiveNeighbors = errors.New("neighbor count must be positive")
)

// KNNOptions represents input options to run the k-nearest neighbor regression
type KNNOptions struct {
	// K is the number of nearest training rows averaged into a prediction.
	K int

	// Parallelization sets how many prediction workers to run concurrently.
	Parallelization int
}

// Validate runs basic validation on KNN options
func (k *KNNOptions) Validate() (*KNNOptions, error) {
	if k == nil {
		k = NewDefaultKNNOptions()
	}
	if k.K <= 0 {
		return nil, ErrNonPositiveNeighbors
	}
	if k.Parallelization <= 0 {
		k.Parallelization = 1
	}
	return k, nil
}

// NewDefaultKNNOptions returns a default set of KNN regression options
func NewDefaultKNNOptions() *KNNOptions {
	return &KNNOptions{
		K:               DefaultNeighbors,
		Parallelization: 1,
	}
}

// KNNRegression predicts the mean target of the k training rows closest to the
// query row by euclidean distance. Fitting only stores the training data.
type KNNRegression struct {
	opt *KNNOptions

	// training rows zero padded so the unrolled distance kernel can be used
	x [][]float64
	y []float64

	numFeatures int
}

// NewKNNRegression initializes a KNN model ready for fitting
func NewKNNRegression(opt *KNNOptions) (*KNNRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &KNNRegression{
		opt: opt,
	}, nil
}

// Fit stores the training observations and targets
func (k *KNNRegression) Fit(x, y mat.Matrix) error {
	if k.opt == nil {
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

	k.numFeatures = n
	k.x = make([][]float64, m)
	for i := 0; i < m; i++ {
		k.x[i] = floatsunrolled.Pad(mat.Row(nil, i, x))
	}
	k.y = mat.Col(nil, 0, y)
	return nil
}

// Predict computes the mean target of the k nearest training rows per query row
func (k *KNNRegression) Predict(x mat.Matrix) ([]float64, error) {
	if k.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if len(k.x) == 0 {
		return nil, ErrNotFitted
	}

	m, n := x.Dims()
	if n != k.numFeatures {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, k.numFeatures, ErrFeatureLenMismatch)
	}

	out := make([]float64, m)

	sem := make(chan struct{}, k.opt.Parallelization)
	var wg sync.WaitGroup
	for i := 0; i < m; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer func() {
				wg.Done()
				<-sem
			}()
			out[i] = k.predictRow(floatsunrolled.Pad(mat.Row(nil, i, x)))
		}(i)
	}
	wg.Wait()

	return out, nil
}

type neighbor struct {
	dist float64
	val  float64
}

func (k *KNNRegression) predictRow(row []float64) float64 {
	nbrs := make([]neighbor, 0, k.opt.K+1)
	for j, xj := range k.x {
		d := floatsunrolled.SquaredDistance(row, xj)
		if len(nbrs) < k.opt.K {
			nbrs = append(nbrs, neighbor{dist: d, val: k.y[j]})
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].dist < nbrs[b].dist })
			continue
		}
		if d < nbrs[len(nbrs)-1].dist {
			nbrs[len(nbrs)-1] = neighbor{dist: d, val: k.y[j]}
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].dist < nbrs[b].dist })
		}
	}

	sum := 0.0
	for _, nb := range nbrs {
		sum += nb.val
	}
	return sum / float64(len(nbrs))
}

// Score computes the coefficient of determination of the prediction
func (k *KNNRegression) Score(x, y mat.Matrix) (float64, error) {
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

	res, err := k.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)
	return stat.RSquaredFrom(res, ySlice, nil), nil
}
