// Package impute fills missing table cells with chained-equations multiple
// imputation. Each column with missing values is regressed on the remaining
// columns with a random forest, missing cells are replaced with predictions,
// and the full column pass repeats for a fixed number of rounds.
package impute

import (
	"errors"
	"fmt"
	"math"

	"github.com/finml/go-marketcap/dataset"
	mat_ "github.com/finml/go-marketcap/mat"
	"github.com/finml/go-marketcap/models"
)

const (
	DefaultIterations = 5
)

var (
	ErrNonPositiveIterations = errors.New("iteration count must be positive")
	ErrColumnNotImputable    = errors.New("column has no observed rows to train on")
)

// Options represents input options to run the chained imputation
type Options struct {
	// Iterations is the number of full column passes.
	Iterations int

	// Forest configures the per column regression forest. The seed field is
	// overridden per column and iteration to keep runs reproducible.
	Forest *models.ForestOptions

	// Seed makes the imputation deterministic for a given input table.
	Seed uint64
}

// Validate runs basic validation on imputation options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Iterations <= 0 {
		return nil, ErrNonPositiveIterations
	}
	if o.Forest == nil {
		o.Forest = defaultForestOptions()
	}
	return o, nil
}

// NewDefaultOptions returns a default set of imputation options
func NewDefaultOptions() *Options {
	return &Options{
		Iterations: DefaultIterations,
		Forest:     defaultForestOptions(),
	}
}

func defaultForestOptions() *models.ForestOptions {
	return &models.ForestOptions{
		NumTrees:        25,
		MinSamplesSplit: 4,
		MinSamplesLeaf:  2,
		MaxDepth:        8,
	}
}

// Imputer fills missing cells of a table
type Imputer struct {
	opt *Options
}

// New initializes an Imputer ready to run
func New(opt *Options) (*Imputer, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Imputer{
		opt: opt,
	}, nil
}

// Impute returns a dense copy of the input table. Columns that cannot be
// trained because they have no observed rows abort the run. Rows left with
// missing cells after all passes are dropped.
func (imp *Imputer) Impute(t *dataset.Table) (*dataset.Table, error) {
	out := t.Copy()
	cols := out.Columns()

	// originally missing row indices per column, in schema order
	missing := make(map[string][]int, len(cols))
	observed := make(map[string][]int, len(cols))
	for _, c := range cols {
		vals, err := out.Column(c)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			if math.IsNaN(v) {
				missing[c] = append(missing[c], i)
			} else {
				observed[c] = append(observed[c], i)
			}
		}
		if len(missing[c]) > 0 && len(observed[c]) == 0 {
			return nil, fmt.Errorf("%s, %w", c, ErrColumnNotImputable)
		}
	}

	// prime missing cells with the column mean so every predictor is dense
	for _, c := range cols {
		if len(missing[c]) == 0 {
			continue
		}
		vals, err := out.Column(c)
		if err != nil {
			return nil, err
		}
		var sum float64
		for _, i := range observed[c] {
			sum += vals[i]
		}
		mean := sum / float64(len(observed[c]))
		for _, i := range missing[c] {
			if err := out.Set(i, c, mean); err != nil {
				return nil, err
			}
		}
	}

	for iter := 0; iter < imp.opt.Iterations; iter++ {
		for ci, c := range cols {
			if len(missing[c]) == 0 {
				continue
			}
			if err := imp.imputeColumn(out, c, predictorsOf(cols, c), observed[c], missing[c], iter, ci); err != nil {
				return nil, fmt.Errorf("imputing column %s on pass %d, %w", c, iter, err)
			}
		}
	}

	// drop any residual missing rows
	dense := out.Retain(func(row int) bool {
		hasMissing, _ := out.RowHasMissing(row)
		return !hasMissing
	})
	return dense, nil
}

func (imp *Imputer) imputeColumn(t *dataset.Table, col string, predictors []string, observed, missing []int, iter, colIdx int) error {
	trainTbl, err := t.SelectRows(observed)
	if err != nil {
		return err
	}
	x, err := trainTbl.Matrix(predictors)
	if err != nil {
		return err
	}
	yVals, err := trainTbl.Column(col)
	if err != nil {
		return err
	}
	y, err := mat_.NewTargetVector(yVals)
	if err != nil {
		return err
	}

	forestOpt := *imp.opt.Forest
	forestOpt.Seed = imp.opt.Seed + uint64(iter)*1009 + uint64(colIdx)
	forest, err := models.NewRegressionForest(&forestOpt)
	if err != nil {
		return err
	}
	if err := forest.Fit(x, y); err != nil {
		return err
	}

	queryTbl, err := t.SelectRows(missing)
	if err != nil {
		return err
	}
	q, err := queryTbl.Matrix(predictors)
	if err != nil {
		return err
	}
	preds, err := forest.Predict(q)
	if err != nil {
		return err
	}

	for k, i := range missing {
		if err := t.Set(i, col, preds[k]); err != nil {
			return err
		}
	}
	return nil
}

func predictorsOf(cols []string, target string) []string {
	out := make([]string, 0, len(cols)-1)
	for _, c := range cols {
		if c == target {
			continue
		}
		out = append(out, c)
	}
	return out
}
