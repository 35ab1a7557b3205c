// Command capreport fits market capitalization models over a spreadsheet of
// S&P 500 financial metrics and writes an evaluation report. Execution
// parameters are deliberate constants so two runs over the same file agree.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/finml/go-marketcap"
	"github.com/finml/go-marketcap/dataprep"
	"github.com/finml/go-marketcap/dataset"
	"github.com/finml/go-marketcap/stats"
	"github.com/goccy/go-json"
)

const (
	defaultInput = "financials.xlsx"
	sheetName    = "" // first sheet

	targetColumn = "MarketCap.2023"

	// inclusive caps in millions of dollars applied per year
	revenueMax   = 250_000.0
	marketCapMax = 1_000_000.0

	trainFraction = 0.5
	seed          = 42

	// outlier diagnostic band on the raw target
	lowerPercentile = 0.1
	upperPercentile = 0.9
	tukeyFactor     = 1.0

	resultsPath = "capreport.json"
	plotPath    = "capreport.html"
)

var boundYears = []string{"2018", "2019", "2020", "2021", "2022", "2023"}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	input := defaultInput
	if len(os.Args) > 1 {
		input = os.Args[1]
	}
	if err := run(input); err != nil {
		slog.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(input string) error {
	tbl, err := dataset.ReadXLSX(input, sheetName)
	if err != nil {
		return fmt.Errorf("unable to load %s, %w", input, err)
	}
	slog.Info("loaded table", "rows", tbl.NumRows(), "columns", tbl.NumCols())

	if !tbl.HasColumn(targetColumn) {
		return fmt.Errorf("%s, %w", targetColumn, marketcap.ErrTargetNotFound)
	}

	target, err := tbl.Column(targetColumn)
	if err != nil {
		return err
	}
	outliers := stats.OutlierIndices(target, lowerPercentile, upperPercentile, tukeyFactor)
	slog.Info("target outlier diagnostic", "column", targetColumn, "outliers", len(outliers))

	opt := marketcap.NewDefaultOptions()
	opt.TargetColumn = targetColumn
	opt.TrainFraction = trainFraction
	opt.Seed = seed
	opt.Bounds = bounds(tbl)

	p, err := marketcap.New(opt)
	if err != nil {
		return err
	}
	res, err := p.Run(tbl)
	if err != nil {
		return err
	}

	printReport(res)
	if err := diagnostics(tbl, res.Features); err != nil {
		return err
	}

	bytes, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(resultsPath, bytes, 0o644); err != nil {
		return err
	}
	slog.Info("wrote results", "path", resultsPath)

	if err := res.PlotEval(plotPath); err != nil {
		return fmt.Errorf("unable to render plots, %w", err)
	}
	slog.Info("wrote plots", "path", plotPath)
	return nil
}

// bounds caps the revenue and market cap columns of every year present in
// the table.
func bounds(tbl *dataset.Table) []dataprep.Bound {
	var out []dataprep.Bound
	for _, year := range boundYears {
		if c := "Revenue." + year; tbl.HasColumn(c) {
			out = append(out, dataprep.Bound{Column: c, Max: revenueMax})
		}
		if c := "MarketCap." + year; tbl.HasColumn(c) {
			out = append(out, dataprep.Bound{Column: c, Max: marketCapMax})
		}
	}
	return out
}

func printReport(res *marketcap.Results) {
	fmt.Printf("target: %s\n", res.Target)
	fmt.Printf("rows: input=%d cleaned=%d imputed=%d filtered=%d train=%d test=%d\n",
		res.RowCounts.Input, res.RowCounts.Cleaned, res.RowCounts.Imputed,
		res.RowCounts.Filtered, res.RowCounts.Train, res.RowCounts.Test)

	names := make([]string, 0, len(res.Evaluations))
	for name := range res.Evaluations {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return res.Evaluations[names[i]].MAERaw < res.Evaluations[names[j]].MAERaw
	})

	fmt.Printf("\n%-20s %12s %12s %10s %10s\n", "model", "mae (raw)", "mae (scaled)", "r2", "neg preds")
	for _, name := range names {
		ev := res.Evaluations[name]
		fmt.Printf("%-20s %12.2f %12.4f %10.4f %10d\n",
			name, ev.MAERaw, ev.MAEScaled, ev.RSquared, ev.NegativePredictions)
	}

	fmt.Println("\nforest feature importances:")
	for _, imp := range res.Importances {
		fmt.Printf("  %-30s %.4f\n", imp.Feature, imp.Weight)
	}
}

// diagnostics reports collinear feature pairs and variance inflation for the
// final-year feature columns.
func diagnostics(tbl *dataset.Table, features []string) error {
	finalYear := make([]string, 0, len(features))
	for _, c := range features {
		if strings.HasSuffix(c, ".2022") {
			finalYear = append(finalYear, c)
		}
	}
	if len(finalYear) < 2 {
		return nil
	}

	dense := tbl.Retain(func(row int) bool {
		hasMissing, _ := tbl.RowHasMissing(row)
		return !hasMissing
	})

	corr, err := stats.Correlations(dense, finalYear)
	if err != nil {
		return err
	}
	fmt.Println("\nhighly correlated feature pairs (|r| > 0.9):")
	for i, a := range finalYear {
		for _, b := range finalYear[i+1:] {
			if r := corr[a][b]; r > 0.9 || r < -0.9 {
				fmt.Printf("  %s ~ %s: %.3f\n", a, b, r)
			}
		}
	}

	series := make(map[string][]float64, len(finalYear))
	for _, c := range finalYear {
		vals, err := dense.Column(c)
		if err != nil {
			return err
		}
		series[c] = vals
	}
	vif, err := stats.VarianceInflationFactor(series)
	if err != nil {
		return err
	}
	fmt.Println("\nvariance inflation factors:")
	keys := make([]string, 0, len(vif))
	for k := range vif {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-30s %.2f\n", k, vif[k])
	}
	return nil
}
