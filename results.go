package marketcap

// Model names used as evaluation keys and report labels.
const (
	ModelLinear = "linear_regression"
	ModelKNN    = "knn"
	ModelForest = "random_forest"
	ModelNet    = "neural_net"
)

// RowCounts traces how many rows survive each preparation stage.
type RowCounts struct {
	Input    int `json:"input"`
	Cleaned  int `json:"cleaned"`
	Imputed  int `json:"imputed"`
	Filtered int `json:"filtered"`
	Train    int `json:"train"`
	Test     int `json:"test"`
}

// Importance is one feature's share of the forest impurity decrease.
type Importance struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Evaluation holds one model's test-set performance. Predicted and Actual
// are in raw target units after inverting the standardization.
type Evaluation struct {
	Model               string    `json:"model"`
	MAEScaled           float64   `json:"mae_scaled"`
	MAERaw              float64   `json:"mae_raw"`
	RSquared            float64   `json:"r_squared"`
	NegativePredictions int       `json:"negative_predictions"`
	Predicted           []float64 `json:"predicted"`
	Actual              []float64 `json:"actual"`
	Residuals           []float64 `json:"residuals"`
}

// Results is the full output of a pipeline run.
type Results struct {
	Target      string                 `json:"target"`
	Features    []string               `json:"features"`
	RowCounts   RowCounts              `json:"row_counts"`
	Evaluations map[string]*Evaluation `json:"evaluations"`
	Importances []Importance           `json:"importances"`
}

// Best returns the evaluation with the lowest raw-unit mean absolute error.
func (r *Results) Best() *Evaluation {
	var best *Evaluation
	for _, ev := range r.Evaluations {
		if best == nil || ev.MAERaw < best.MAERaw {
			best = ev
		}
	}
	return best
}
