package marketcap

import (
	"errors"

	"github.com/finml/go-marketcap/dataprep"
	"github.com/finml/go-marketcap/impute"
	"github.com/finml/go-marketcap/models"
)

const DefaultTrainFraction = 0.5

var (
	ErrNoTargetColumn  = errors.New("no target column set")
	ErrBadFraction     = errors.New("train fraction must be in (0, 1)")
	ErrNoFeatures      = errors.New("table has no feature columns besides the target")
	ErrTargetNotFound  = errors.New("target column not present in table")
	ErrFeatureNotFound = errors.New("feature column not present in table")
)

// Options configures a full pipeline run from raw table to per-model
// evaluations.
type Options struct {
	// TargetColumn is the column the models predict, e.g. "MarketCap.2023".
	TargetColumn string

	// FeatureColumns restricts the predictors. Empty uses every non-target
	// column of the input table.
	FeatureColumns []string

	// Bounds drops rows exceeding fixed per-column caps before modeling.
	Bounds []dataprep.Bound

	// TrainFraction is the share of rows assigned to training.
	TrainFraction float64

	// Seed drives the split permutation and every model seed.
	Seed uint64

	// ScaleOnFullTable fits the scaler on all rows before splitting instead
	// of on the training rows only. Training rows then leak test statistics,
	// so this exists only to reproduce older runs.
	ScaleOnFullTable bool

	Impute *impute.Options

	Linear *models.LinearOptions
	KNN    *models.KNNOptions
	Forest *models.ForestOptions
	Net    *models.NetOptions
}

// NewDefaultOptions returns a default set of pipeline options. The target
// column has no sensible default and must be set by the caller.
func NewDefaultOptions() *Options {
	return &Options{
		TrainFraction: DefaultTrainFraction,
		Impute:        impute.NewDefaultOptions(),
		Linear:        models.NewDefaultLinearOptions(),
		KNN:           models.NewDefaultKNNOptions(),
		Forest:        models.NewDefaultForestOptions(),
		Net:           models.NewDefaultNetOptions(),
	}
}

// Validate runs basic validation on pipeline options filling in defaults
// where fields are left unset
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return nil, ErrNoTargetColumn
	}
	if o.TargetColumn == "" {
		return nil, ErrNoTargetColumn
	}
	if o.TrainFraction == 0 {
		o.TrainFraction = DefaultTrainFraction
	}
	if o.TrainFraction <= 0 || o.TrainFraction >= 1 {
		return nil, ErrBadFraction
	}

	var err error
	if o.Impute, err = o.Impute.Validate(); err != nil {
		return nil, err
	}
	if o.Linear, err = o.Linear.Validate(); err != nil {
		return nil, err
	}
	if o.KNN, err = o.KNN.Validate(); err != nil {
		return nil, err
	}
	if o.Forest, err = o.Forest.Validate(); err != nil {
		return nil, err
	}
	if o.Net, err = o.Net.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}
