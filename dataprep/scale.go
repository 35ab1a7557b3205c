package dataprep

import (
	"errors"
	"fmt"

	"github.com/finml/go-marketcap/dataset"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrScalerNotFitted = errors.New("scaler has not been fitted")
	ErrUnscaledColumn  = errors.New("column was not fitted by the scaler")
)

// ColumnStats holds the per column standardization parameters
type ColumnStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// StandardScaler standardizes columns to zero mean and unit variance and
// retains the per column statistics so scaled predictions can be inverted
// back to raw currency units.
type StandardScaler struct {
	cols  []string
	stats map[string]ColumnStats
}

func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes the mean and standard deviation of each named column
func (s *StandardScaler) Fit(t *dataset.Table, cols []string) error {
	fitted := make(map[string]ColumnStats, len(cols))
	for _, c := range cols {
		vals, err := t.Column(c)
		if err != nil {
			return fmt.Errorf("scaling column, %w", err)
		}
		mean, std := stat.MeanStdDev(vals, nil)
		if std == 0.0 {
			// constant column, leave values untouched by the transform
			std = 1.0
		}
		fitted[c] = ColumnStats{Mean: mean, Std: std}
	}

	s.cols = make([]string, len(cols))
	copy(s.cols, cols)
	s.stats = fitted
	return nil
}

// Transform returns a copy of the table with every fitted column replaced by
// (value - mean) / std. Columns not covered by Fit pass through unchanged.
func (s *StandardScaler) Transform(t *dataset.Table) (*dataset.Table, error) {
	if s.stats == nil {
		return nil, ErrScalerNotFitted
	}

	out := t.Copy()
	for _, c := range s.cols {
		if !out.HasColumn(c) {
			return nil, fmt.Errorf("%s, %w", c, dataset.ErrUnknownColumn)
		}
		cs := s.stats[c]
		for i := 0; i < out.NumRows(); i++ {
			v, _ := out.At(i, c)
			_ = out.Set(i, c, (v-cs.Mean)/cs.Std)
		}
	}
	return out, nil
}

// FitTransform runs Fit followed by Transform
func (s *StandardScaler) FitTransform(t *dataset.Table, cols []string) (*dataset.Table, error) {
	if err := s.Fit(t, cols); err != nil {
		return nil, err
	}
	return s.Transform(t)
}

// Inverse maps scaled values for a fitted column back to raw units via
// raw = scaled*std + mean
func (s *StandardScaler) Inverse(col string, scaled []float64) ([]float64, error) {
	cs, err := s.Stats(col)
	if err != nil {
		return nil, err
	}

	raw := make([]float64, len(scaled))
	for i, v := range scaled {
		raw[i] = v*cs.Std + cs.Mean
	}
	return raw, nil
}

// Stats returns the fitted parameters for a column
func (s *StandardScaler) Stats(col string) (ColumnStats, error) {
	if s.stats == nil {
		return ColumnStats{}, ErrScalerNotFitted
	}
	cs, exists := s.stats[col]
	if !exists {
		return ColumnStats{}, fmt.Errorf("%s, %w", col, ErrUnscaledColumn)
	}
	return cs, nil
}
