package plot

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/salesstat/internal/stats"
)

func TestBins(t *testing.T) {
	assert.Equal(t, 1, Bins(nil))
	assert.Equal(t, 1, Bins([]float64{4, 4, 4}))

	xs := make([]float64, 100)
	for i := range xs {
		xs[i] = float64(i)
	}
	// uniform 0..99: sturges gives 8 bins, FD gives a wider bin
	assert.Equal(t, 8, Bins(xs))

	// a long tail makes FD finer than sturges
	tail := append(append([]float64(nil), xs...), 10000)
	assert.Greater(t, Bins(tail), 8)
	assert.LessOrEqual(t, Bins(tail), 200)
}

func TestRenderHistogram(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	r := NewRenderer(dir)
	xs := []float64{120, 340, 95, 410, 230, 180, 510, 275, 260, 300}

	path, err := r.Histogram(xs, "total_sales")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, HistogramFile), path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = r.Histogram(nil, "total_sales")
	assert.ErrorIs(t, err, stats.ErrEmptySample)
}

func TestRenderHeatmap(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir)
	m := stats.CorrMatrix{
		Columns: []string{"sales", "units", "discount"},
		Values: [][]float64{
			{1, 0.8, math.NaN()},
			{0.8, 1, -0.2},
			{math.NaN(), -0.2, 1},
		},
	}
	path, err := r.Heatmap(m)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = r.Heatmap(stats.CorrMatrix{Columns: []string{"sales"}, Values: [][]float64{{1}}})
	assert.ErrorIs(t, err, ErrTooFewColumns)
}

func TestCorrGridOrientation(t *testing.T) {
	g := corrGrid{m: [][]float64{{1, 0.5}, {0.5, 1}}}
	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	// grid row 1 is matrix row 0
	assert.Equal(t, 1.0, g.Z(0, 1))
	assert.Equal(t, 0.5, g.Z(1, 1))

	nan := corrGrid{m: [][]float64{{1, math.NaN()}, {math.NaN(), 1}}}
	assert.Equal(t, 0.0, nan.Z(1, 1))
}
