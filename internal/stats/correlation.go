package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// CorrelationMatrix computes pairwise Pearson correlations. Each pair uses
// the rows where both values are present (NaN marks a missing value). Pairs
// with fewer than two shared rows, or a constant side, are NaN.
func CorrelationMatrix(names []string, cols [][]float64) CorrMatrix {
	n := len(cols)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
		mat[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			r := pearson(cols[a], cols[b])
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return CorrMatrix{Columns: append([]string(nil), names...), Values: mat}
}

func pearson(x, y []float64) float64 {
	m := len(x)
	if len(y) < m {
		m = len(y)
	}
	xs := make([]float64, 0, m)
	ys := make([]float64, 0, m)
	for i := 0; i < m; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.StdDev(xs, nil) == 0 || stat.StdDev(ys, nil) == 0 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// TopPairs lists the off-diagonal pairs ordered by |r|, strongest first.
// NaN pairs are skipped.
func (c CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := len(c.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.IsNaN(c.Values[i][j]) {
				continue
			}
			pairs = append(pairs, PairCorr{A: c.Columns[i], B: c.Columns[j], R: c.Values[i][j]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}
