package marketcap

import (
	"math/rand/v2"
	"testing"

	"github.com/finml/go-marketcap/dataset"
	"github.com/pkg/profile"
)

var benchRes *Results

func setupBenchTable(numRows int) *dataset.Table {
	cols := []string{"Revenue.2022", "EBIT.2022", "NetIncome.2022", "MarketCap.2023"}
	rnd := rand.New(rand.NewPCG(17, 0))

	rows := make([][]float64, numRows)
	for i := range rows {
		rev := 100.0 + 900.0*rnd.Float64()
		ebit := 0.2*rev + 10.0*rnd.Float64()
		ni := 0.7*ebit + 5.0*rnd.Float64()
		cap := 4.0*rev + 10.0*ebit + 2.0*ni + 50.0*rnd.Float64()
		rows[i] = []float64{rev, ebit, ni, cap}
	}
	tbl, err := dataset.New(cols, rows)
	if err != nil {
		panic(err)
	}
	return tbl
}

func BenchmarkPipelineRun(b *testing.B) {
	tbl := setupBenchTable(200)

	opt := NewDefaultOptions()
	opt.TargetColumn = "MarketCap.2023"
	opt.Seed = 42
	opt.Net.Epochs = 100
	opt.Forest.NumTrees = 50

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		p, err := New(opt)
		if err != nil {
			panic(err)
		}
		benchRes, err = p.Run(tbl)
		if err != nil {
			panic(err)
		}
	}
}
