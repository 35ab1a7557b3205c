package marketcap

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ScatterEval generates an echart scatter of actual against predicted target
// values for each evaluated model. A perfect model would sit on the diagonal.
func ScatterEval(title string, evals map[string]*Evaluation) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithXAxisOpts(
			opts.XAxis{
				Name: "actual",
				Type: "value",
			},
		),
		charts.WithYAxisOpts(
			opts.YAxis{
				Name: "predicted",
				Type: "value",
			},
		),
	)

	for name, ev := range evals {
		data := make([]opts.ScatterData, 0, len(ev.Actual))
		for i := range ev.Actual {
			data = append(data, opts.ScatterData{Value: []interface{}{ev.Actual[i], ev.Predicted[i]}})
		}
		scatter.AddSeries(name, data)
	}
	return scatter
}

// ScatterResiduals generates an echart scatter of actual target values
// against prediction residuals per model.
func ScatterResiduals(title string, evals map[string]*Evaluation) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithXAxisOpts(
			opts.XAxis{
				Name: "actual",
				Type: "value",
			},
		),
		charts.WithYAxisOpts(
			opts.YAxis{
				Name: "residual",
				Type: "value",
			},
		),
	)

	for name, ev := range evals {
		data := make([]opts.ScatterData, 0, len(ev.Actual))
		for i := range ev.Actual {
			data = append(data, opts.ScatterData{Value: []interface{}{ev.Actual[i], ev.Residuals[i]}})
		}
		scatter.AddSeries(name, data)
	}
	return scatter
}

// BarImportances generates an echart bar chart of forest feature importances
// ordered from most to least important.
func BarImportances(title string, importances []Importance) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	features := make([]string, 0, len(importances))
	data := make([]opts.BarData, 0, len(importances))
	for _, imp := range importances {
		features = append(features, imp.Feature)
		data = append(data, opts.BarData{Value: imp.Weight})
	}
	bar.SetXAxis(features).AddSeries("importance", data)
	return bar
}

// PlotEval uses the Apache Echarts library to generate an html file showing
// actual vs predicted values, residuals, and forest feature importances.
func (r *Results) PlotEval(path string) error {
	page := components.NewPage()
	page.AddCharts(
		ScatterEval(fmt.Sprintf("%s Predicted vs Actual", r.Target), r.Evaluations),
		ScatterResiduals(fmt.Sprintf("%s Residuals", r.Target), r.Evaluations),
		BarImportances("Forest Feature Importances", r.Importances),
	)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	return page.Render(io.MultiWriter(file))
}
