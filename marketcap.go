// Package marketcap predicts company market capitalization from financial
// statement metrics. A Pipeline takes a raw metrics table, cleans zeros to
// missing, imputes with chained random forests, drops outlier rows by fixed
// caps, standardizes, splits train/test, and fits a set of regression models
// whose test errors it reports side by side.
package marketcap

import (
	"fmt"
	"sort"

	"github.com/finml/go-marketcap/dataprep"
	"github.com/finml/go-marketcap/dataset"
	"github.com/finml/go-marketcap/impute"
	"github.com/finml/go-marketcap/models"
	"gonum.org/v1/gonum/mat"
)

// Pipeline orchestrates data preparation, model fitting and evaluation.
type Pipeline struct {
	opt    *Options
	scaler *dataprep.StandardScaler
}

// New creates a new instance of a Pipeline using the given options
func New(opt *Options) (*Pipeline, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		opt: opt,
	}, nil
}

// Run executes the full pipeline over a raw table and returns per-model
// evaluations on the held-out rows.
func (p *Pipeline) Run(t *dataset.Table) (*Results, error) {
	features, err := p.featureColumns(t)
	if err != nil {
		return nil, err
	}
	target := p.opt.TargetColumn

	res := &Results{
		Target:   target,
		Features: features,
		RowCounts: RowCounts{
			Input: t.NumRows(),
		},
		Evaluations: make(map[string]*Evaluation, 4),
	}

	cleaned := dataprep.CleanZeros(t)
	cleaned, err = dataprep.DropMissingTarget(cleaned, target)
	if err != nil {
		return nil, fmt.Errorf("unable to drop rows missing the target, %w", err)
	}
	res.RowCounts.Cleaned = cleaned.NumRows()

	imputer, err := impute.New(p.seededImputeOptions())
	if err != nil {
		return nil, err
	}
	dense, err := imputer.Impute(cleaned)
	if err != nil {
		return nil, fmt.Errorf("unable to impute missing values, %w", err)
	}
	res.RowCounts.Imputed = dense.NumRows()

	filtered, err := dataprep.Filter(dense, p.opt.Bounds)
	if err != nil {
		return nil, fmt.Errorf("unable to filter outlier rows, %w", err)
	}
	res.RowCounts.Filtered = filtered.NumRows()

	trainIdx, testIdx, err := dataprep.Split(filtered.NumRows(), p.opt.TrainFraction, p.opt.Seed)
	if err != nil {
		return nil, fmt.Errorf("unable to split train/test rows, %w", err)
	}
	res.RowCounts.Train = len(trainIdx)
	res.RowCounts.Test = len(testIdx)

	scaled, err := p.scale(filtered, trainIdx, append(append([]string{}, features...), target))
	if err != nil {
		return nil, fmt.Errorf("unable to standardize columns, %w", err)
	}

	trainTbl, err := scaled.SelectRows(trainIdx)
	if err != nil {
		return nil, err
	}
	testTbl, err := scaled.SelectRows(testIdx)
	if err != nil {
		return nil, err
	}

	xTrain, err := trainTbl.Matrix(features)
	if err != nil {
		return nil, err
	}
	yTrain, err := trainTbl.TargetVector(target)
	if err != nil {
		return nil, err
	}
	xTest, err := testTbl.Matrix(features)
	if err != nil {
		return nil, err
	}
	yTestVals, err := testTbl.Column(target)
	if err != nil {
		return nil, err
	}

	forest, err := p.fitModels(res, xTrain, yTrain, xTest, yTestVals)
	if err != nil {
		return nil, err
	}

	res.Importances, err = rankImportances(forest, features)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Scaler exposes the fitted column statistics after a Run, for inspecting or
// inverting transformed values.
func (p *Pipeline) Scaler() *dataprep.StandardScaler {
	return p.scaler
}

func (p *Pipeline) featureColumns(t *dataset.Table) ([]string, error) {
	if !t.HasColumn(p.opt.TargetColumn) {
		return nil, fmt.Errorf("%s, %w", p.opt.TargetColumn, ErrTargetNotFound)
	}
	if len(p.opt.FeatureColumns) > 0 {
		for _, c := range p.opt.FeatureColumns {
			if !t.HasColumn(c) {
				return nil, fmt.Errorf("%s, %w", c, ErrFeatureNotFound)
			}
		}
		return p.opt.FeatureColumns, nil
	}
	var features []string
	for _, c := range t.Columns() {
		if c == p.opt.TargetColumn {
			continue
		}
		features = append(features, c)
	}
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	return features, nil
}

func (p *Pipeline) scale(t *dataset.Table, trainIdx []int, cols []string) (*dataset.Table, error) {
	p.scaler = dataprep.NewStandardScaler()
	if p.opt.ScaleOnFullTable {
		return p.scaler.FitTransform(t, cols)
	}
	trainTbl, err := t.SelectRows(trainIdx)
	if err != nil {
		return nil, err
	}
	if err := p.scaler.Fit(trainTbl, cols); err != nil {
		return nil, err
	}
	return p.scaler.Transform(t)
}

func (p *Pipeline) fitModels(res *Results, xTrain, yTrain, xTest mat.Matrix, yTestVals []float64) (*models.RegressionForest, error) {
	net, err := models.NewNeuralNetwork(p.seededNetOptions())
	if err != nil {
		return nil, err
	}
	knn, err := models.NewKNNRegression(p.opt.KNN)
	if err != nil {
		return nil, err
	}
	forest, err := models.NewRegressionForest(p.seededForestOptions())
	if err != nil {
		return nil, err
	}
	linear, err := models.NewLinearRegression(p.opt.Linear)
	if err != nil {
		return nil, err
	}

	fits := []struct {
		name  string
		model models.Model
	}{
		{ModelNet, net},
		{ModelKNN, knn},
		{ModelForest, forest},
		{ModelLinear, linear},
	}
	for _, f := range fits {
		if err := f.model.Fit(xTrain, yTrain); err != nil {
			return nil, fmt.Errorf("unable to fit %s, %w", f.name, err)
		}
		ev, err := Evaluate(f.name, f.model, xTest, yTestVals, p.scaler, p.opt.TargetColumn)
		if err != nil {
			return nil, err
		}
		res.Evaluations[f.name] = ev
	}
	return forest, nil
}

// seededForestOptions copies the forest options overriding an unset seed with
// the pipeline seed so a run is reproducible end to end.
func (p *Pipeline) seededForestOptions() *models.ForestOptions {
	opt := *p.opt.Forest
	if opt.Seed == 0 {
		opt.Seed = p.opt.Seed
	}
	return &opt
}

func (p *Pipeline) seededImputeOptions() *impute.Options {
	opt := *p.opt.Impute
	if opt.Seed == 0 {
		opt.Seed = p.opt.Seed
	}
	return &opt
}

func (p *Pipeline) seededNetOptions() *models.NetOptions {
	opt := *p.opt.Net
	if opt.Seed == 0 {
		opt.Seed = p.opt.Seed
	}
	return &opt
}

func rankImportances(forest *models.RegressionForest, features []string) ([]Importance, error) {
	weights, err := forest.FeatureImportances()
	if err != nil {
		return nil, err
	}
	out := make([]Importance, len(features))
	for i, f := range features {
		out[i] = Importance{Feature: f, Weight: weights[i]}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out, nil
}
