package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/KaramelBytes/salesstat/internal/dataset"
	"github.com/KaramelBytes/salesstat/internal/plot"
)

var (
	northSales = []float64{100, 104, 98, 101, 103, 99, 102, 97}
	southSales = []float64{200, 205, 198, 202, 199, 201, 203, 196}
)

// retailTable interleaves the two regions so first-encountered order is
// North then South, with products alternating A/B.
func retailTable(t *testing.T) *dataset.Table {
	t.Helper()
	records := [][]string{{"Date", "Total Sales", "Region", "Product Category", "Units"}}
	for i := range northSales {
		for j, r := range []struct {
			region string
			v      float64
		}{{"North", northSales[i]}, {"South", southSales[i]}} {
			product := "A"
			if (i+j)%2 == 1 {
				product = "B"
			}
			records = append(records, []string{
				fmt.Sprintf("2024-01-%02d", i+1),
				fmt.Sprintf("%g", r.v),
				r.region,
				product,
				fmt.Sprintf("%d", int(r.v)/10+i%3),
			})
		}
	}
	tbl, err := dataset.FromRecords(records)
	require.NoError(t, err)
	tbl.Name = "retail.csv"
	return tbl
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	opt := DefaultOptions()
	opt.PlotDir = dir
	rep, err := NewAnalyzer(zaptest.NewLogger(t), opt).Run(context.Background(), retailTable(t))
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 16, rep.Rows)
	assert.Equal(t, dataset.Roles{Sales: "total_sales", Region: "region", Product: "product_category"}, rep.Roles)
	assert.Equal(t, 16, rep.Sales.Count)
	assert.InDelta(t, 150.5, float64(rep.Sales.Mean), 1e-9)

	require.NotNil(t, rep.Normality)
	assert.Equal(t, 16, rep.Normality.N)
	// two well separated clusters are far from normal
	assert.Less(t, float64(rep.Normality.PValue), 0.05)

	require.NotNil(t, rep.Correlation)
	assert.Equal(t, []string{"total_sales", "units"}, rep.Correlation.Columns)
	assert.Greater(t, float64(rep.Correlation.Values[0][1]), 0.9)

	assert.Equal(t, ReferenceSampleMean, rep.OneSample.Reference)
	assert.InDelta(t, 1.0, float64(rep.OneSample.PValue), 1e-9)
	assert.False(t, rep.Significant)
	assert.Equal(t, VerdictNotSignificant, rep.Verdict())
	assert.True(t, rep.SelfComparison())

	require.NotNil(t, rep.RegionTest)
	assert.Equal(t, []string{"North", "South"}, rep.RegionTest.Groups)
	assert.Less(t, float64(rep.RegionTest.PValue), 0.05)

	require.NotNil(t, rep.ProductANOVA)
	assert.Equal(t, []string{"A", "B"}, rep.ProductANOVA.Groups)
	assert.Equal(t, 1.0, float64(rep.ProductANOVA.DoF))
	assert.Equal(t, 14.0, float64(rep.ProductANOVA.DoF2))

	assert.Equal(t, 0.95, rep.Interval.Level)
	assert.Greater(t, float64(rep.Interval.Margin), 0.0)
	assert.InDelta(t, float64(rep.Interval.Margin), float64(rep.Interval.Upper-rep.Interval.Mean), 1e-9)

	require.Len(t, rep.Groups, 4)
	assert.Equal(t, GroupStat{Column: "region", Key: "North", Count: 8, Mean: 100.5, Total: "804.00"}, rep.Groups[0])
	assert.Equal(t, "1604.00", rep.Groups[1].Total)
	assert.Equal(t, "product_category", rep.Groups[2].Column)

	require.Len(t, rep.Plots, 2)
	for _, name := range []string{plot.HistogramFile, plot.HeatmapFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	assert.Empty(t, rep.Warnings)
}

func TestRunWithBenchmark(t *testing.T) {
	opt := DefaultOptions()
	opt.Plots = false
	bench := 50.0
	opt.Benchmark = &bench
	rep, err := NewAnalyzer(nil, opt).Run(context.Background(), retailTable(t))
	require.NoError(t, err)

	assert.Equal(t, ReferenceBenchmark, rep.OneSample.Reference)
	require.NotNil(t, rep.OneSample.Mu0)
	assert.Equal(t, 50.0, float64(*rep.OneSample.Mu0))
	assert.Less(t, float64(rep.OneSample.PValue), 0.05)
	assert.True(t, rep.Significant)
	assert.Equal(t, VerdictSignificant, rep.Verdict())
	assert.False(t, rep.SelfComparison())
	assert.Empty(t, rep.Plots)
}

func TestRunWithoutSalesColumnStops(t *testing.T) {
	tbl, err := dataset.FromRecords([][]string{{"date", "region", "units"}, {"d1", "North", "3"}})
	require.NoError(t, err)
	dir := t.TempDir()
	opt := DefaultOptions()
	opt.PlotDir = dir

	rep, err := NewAnalyzer(nil, opt).Run(context.Background(), tbl)
	assert.ErrorIs(t, err, dataset.ErrNoSalesColumn)
	assert.Nil(t, rep)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no plots after a failed detection")
}

func TestRunNonNumericSales(t *testing.T) {
	tbl, err := dataset.FromRecords([][]string{{"sales"}, {"lots"}, {"few"}})
	require.NoError(t, err)
	_, err = NewAnalyzer(nil, DefaultOptions()).Run(context.Background(), tbl)
	assert.ErrorIs(t, err, dataset.ErrNotNumeric)
}

func TestRunSingleRegionSkipsTTest(t *testing.T) {
	tbl, err := dataset.FromRecords([][]string{
		{"revenue", "area"},
		{"10", "East"}, {"12", "East"}, {"11", "East"}, {"15", "East"},
	})
	require.NoError(t, err)
	opt := DefaultOptions()
	opt.Plots = false
	rep, err := NewAnalyzer(nil, opt).Run(context.Background(), tbl)
	require.NoError(t, err)

	assert.Nil(t, rep.RegionTest)
	assert.Nil(t, rep.ProductANOVA)
	require.NotEmpty(t, rep.Warnings)
	assert.Contains(t, rep.Warnings[0], "region t-test")
}

func TestRunRegionOrderSkipsMissing(t *testing.T) {
	tbl, err := dataset.FromRecords([][]string{
		{"sales", "region"},
		{"5", ""}, {"10", "West"}, {"11", "West"}, {"30", "East"}, {"31", "East"}, {"50", "North"},
	})
	require.NoError(t, err)
	opt := DefaultOptions()
	opt.Plots = false
	rep, err := NewAnalyzer(nil, opt).Run(context.Background(), tbl)
	require.NoError(t, err)
	require.NotNil(t, rep.RegionTest)
	assert.Equal(t, []string{"West", "East"}, rep.RegionTest.Groups)
}

func TestRunFailedTestsDoNotStopPipeline(t *testing.T) {
	tbl, err := dataset.FromRecords([][]string{{"sales", "product"}, {"7", "A"}})
	require.NoError(t, err)
	opt := DefaultOptions()
	opt.Plots = false
	rep, err := NewAnalyzer(nil, opt).Run(context.Background(), tbl)
	require.NoError(t, err)

	assert.Nil(t, rep.Normality)
	assert.NotEmpty(t, rep.OneSample.Error)
	assert.False(t, rep.OneSample.PValue.Valid())
	assert.False(t, rep.Interval.Margin.Valid())
	assert.False(t, rep.Significant)
	assert.GreaterOrEqual(t, len(rep.Warnings), 3)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opt := DefaultOptions()
	opt.Plots = false
	_, err := NewAnalyzer(nil, opt).Run(ctx, retailTable(t))
	assert.ErrorIs(t, err, context.Canceled)
}
