package models

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultLearningRate = 0.01
	DefaultEpochs       = 500
	DefaultTolerance    = 1e-6
)

var (
	ErrNoHiddenLayers       = errors.New("no hidden layer widths provided")
	ErrNonPositiveWidth     = errors.New("hidden layer width must be positive")
	ErrNonPositiveRate      = errors.New("learning rate must be positive")
	ErrNonPositiveEpochs    = errors.New("epoch count must be positive")
	ErrNegativeNetTolerance = errors.New("negative tolerance")
)

// NetOptions represents input options to run the feed forward network regression
type NetOptions struct {
	// HiddenLayers is the width of each hidden layer, e.g. {8, 4} or {40, 20, 10}.
	HiddenLayers []int

	// LearningRate scales each gradient descent weight update.
	LearningRate float64

	// Epochs is the maximum number of full passes over the training set.
	Epochs int

	// Tolerance is the smallest relative epoch loss improvement before stopping early.
	Tolerance float64

	// BoundedOutput applies a sigmoid to the output unit instead of leaving it linear.
	BoundedOutput bool

	// Seed makes weight initialization and sample ordering reproducible.
	Seed uint64
}

// Validate runs basic validation on network options
func (n *NetOptions) Validate() (*NetOptions, error) {
	if n == nil {
		n = NewDefaultNetOptions()
	}
	if len(n.HiddenLayers) == 0 {
		return nil, ErrNoHiddenLayers
	}
	for _, w := range n.HiddenLayers {
		if w <= 0 {
			return nil, ErrNonPositiveWidth
		}
	}
	if n.LearningRate <= 0 {
		return nil, ErrNonPositiveRate
	}
	if n.Epochs <= 0 {
		return nil, ErrNonPositiveEpochs
	}
	if n.Tolerance < 0 {
		return nil, ErrNegativeNetTolerance
	}
	return n, nil
}

// NewDefaultNetOptions returns a default set of network regression options
func NewDefaultNetOptions() *NetOptions {
	return &NetOptions{
		HiddenLayers: []int{8, 4},
		LearningRate: DefaultLearningRate,
		Epochs:       DefaultEpochs,
		Tolerance:    DefaultTolerance,
	}
}

// NeuralNetwork is a fully connected feed forward regression network trained by
// stochastic gradient descent on squared error. Hidden units use a sigmoid
// activation and the single output unit is linear unless BoundedOutput is set.
// A fit that exhausts the epoch budget without meeting the tolerance is kept as
// a best effort model and logged as a warning rather than failed.
type NeuralNetwork struct {
	opt *NetOptions

	// weights[l][j][i] connects input i of layer l to unit j
	weights [][][]float64
	biases  [][]float64

	numFeatures int
}

// NewNeuralNetwork initializes a network model ready for fitting
func NewNeuralNetwork(opt *NetOptions) (*NeuralNetwork, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &NeuralNetwork{
		opt: opt,
	}, nil
}

// Fit trains the network weights against the given training data
func (nn *NeuralNetwork) Fit(x, y mat.Matrix) error {
	if nn.opt == nil {
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

	rnd := rand.New(rand.NewPCG(nn.opt.Seed, 0))
	nn.numFeatures = n
	nn.initialize(n, rnd)

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}

	prevLoss := math.Inf(1)
	converged := false
	for epoch := 0; epoch < nn.opt.Epochs; epoch++ {
		rnd.Shuffle(m, func(i, j int) { order[i], order[j] = order[j], order[i] })

		loss := 0.0
		for _, i := range order {
			pred := nn.backpropagate(rows[i], target[i])
			e := pred - target[i]
			loss += e * e
		}
		loss /= float64(m)

		// no improvement baseline exists until one full epoch has run
		if epoch > 0 && math.Abs(prevLoss-loss) <= nn.opt.Tolerance*math.Max(prevLoss, 1.0) {
			converged = true
			break
		}
		prevLoss = loss
	}

	if !converged {
		slog.Warn("neural network fit exhausted epoch budget before converging",
			"epochs", nn.opt.Epochs,
			"last_loss", prevLoss,
		)
	}
	return nil
}

func (nn *NeuralNetwork) initialize(numFeatures int, rnd *rand.Rand) {
	widths := append([]int{numFeatures}, nn.opt.HiddenLayers...)
	widths = append(widths, 1)

	layers := len(widths) - 1
	nn.weights = make([][][]float64, layers)
	nn.biases = make([][]float64, layers)
	for l := 0; l < layers; l++ {
		in, out := widths[l], widths[l+1]
		scale := 1.0 / math.Sqrt(float64(in))
		nn.weights[l] = make([][]float64, out)
		nn.biases[l] = make([]float64, out)
		for j := 0; j < out; j++ {
			w := make([]float64, in)
			for i := range w {
				w[i] = (rnd.Float64()*2.0 - 1.0) * scale
			}
			nn.weights[l][j] = w
		}
	}
}

// forward computes per layer activations, returning them innermost first
func (nn *NeuralNetwork) forward(row []float64) [][]float64 {
	activations := make([][]float64, len(nn.weights)+1)
	activations[0] = row
	for l := range nn.weights {
		out := make([]float64, len(nn.weights[l]))
		last := l == len(nn.weights)-1
		for j, w := range nn.weights[l] {
			z := nn.biases[l][j]
			for i, wi := range w {
				z += wi * activations[l][i]
			}
			if last && !nn.opt.BoundedOutput {
				out[j] = z
			} else {
				out[j] = sigmoid(z)
			}
		}
		activations[l+1] = out
	}
	return activations
}

// backpropagate runs one forward and backward pass on a single sample and
// applies the gradient update in place, returning the pre-update prediction.
func (nn *NeuralNetwork) backpropagate(row []float64, target float64) float64 {
	activations := nn.forward(row)
	pred := activations[len(activations)-1][0]

	// squared error gradient at the output
	outDelta := pred - target
	if nn.opt.BoundedOutput {
		outDelta *= pred * (1.0 - pred)
	}
	deltas := []float64{outDelta}

	for l := len(nn.weights) - 1; l >= 0; l-- {
		prev := activations[l]

		var nextDeltas []float64
		if l > 0 {
			nextDeltas = make([]float64, len(prev))
			for i := range prev {
				var sum float64
				for j, w := range nn.weights[l] {
					sum += w[i] * deltas[j]
				}
				nextDeltas[i] = sum * prev[i] * (1.0 - prev[i])
			}
		}

		for j, w := range nn.weights[l] {
			step := nn.opt.LearningRate * deltas[j]
			for i := range w {
				w[i] -= step * prev[i]
			}
			nn.biases[l][j] -= step
		}
		deltas = nextDeltas
	}
	return pred
}

// Predict computes one network output per design matrix row
func (nn *NeuralNetwork) Predict(x mat.Matrix) ([]float64, error) {
	if nn.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if nn.weights == nil {
		return nil, ErrNotFitted
	}
	m, n := x.Dims()
	if n != nn.numFeatures {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, nn.numFeatures, ErrFeatureLenMismatch)
	}

	out := make([]float64, m)
	for i := 0; i < m; i++ {
		activations := nn.forward(mat.Row(nil, i, x))
		out[i] = activations[len(activations)-1][0]
	}
	return out, nil
}

// Score computes the coefficient of determination of the prediction
func (nn *NeuralNetwork) Score(x, y mat.Matrix) (float64, error) {
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

	res, err := nn.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)
	return stat.RSquaredFrom(res, ySlice, nil), nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
