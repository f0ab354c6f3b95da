package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmptySample is returned when a statistic is requested on no values.
	ErrEmptySample = errors.New("sample is empty")
	// ErrSampleSize is returned when a sample is too small for the statistic.
	ErrSampleSize = errors.New("sample is too small")
	// ErrZeroRange is returned when every value in a sample is identical.
	ErrZeroRange = errors.New("sample values are all identical")
	// ErrTooFewGroups is returned when a group comparison has fewer than two groups.
	ErrTooFewGroups = errors.New("at least two groups are required")
)

// Summary is the count/moments/five-number description of one column.
type Summary struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
	Min    float64 `json:"min" yaml:"min"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Median float64 `json:"median" yaml:"median"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Max    float64 `json:"max" yaml:"max"`
	Mode   float64 `json:"mode" yaml:"mode"`
}

// Describe summarizes xs. Std is the sample standard deviation (n-1) and is
// NaN for a single value. Quartiles interpolate linearly between order
// statistics. Mode ties resolve to the smallest value.
func Describe(xs []float64) (Summary, error) {
	if len(xs) == 0 {
		return Summary{}, ErrEmptySample
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	s := Summary{
		Count:  len(xs),
		Mean:   stat.Mean(xs, nil),
		Std:    math.NaN(),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
	if len(xs) > 1 {
		s.Std = stat.StdDev(xs, nil)
	}
	s.Mode, _ = stat.Mode(sorted, nil)
	return s, nil
}

// Quantile returns the q-th quantile of xs using linear interpolation.
func Quantile(xs []float64, q float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return quantile(sorted, q)
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
