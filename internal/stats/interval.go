package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ConfidenceInterval is a t-based interval for a sample mean.
type ConfidenceInterval struct {
	Level  float64
	N      int
	Mean   float64
	SEM    float64
	Margin float64
	Lower  float64
	Upper  float64
}

// MeanInterval returns mean ± t(1-(1-level)/2, n-1) * s/sqrt(n).
func MeanInterval(xs []float64, level float64) (ConfidenceInterval, error) {
	if level <= 0 || level >= 1 {
		return ConfidenceInterval{}, fmt.Errorf("confidence level must be in (0, 1), got %v", level)
	}
	n := len(xs)
	if n < 2 {
		return ConfidenceInterval{}, fmt.Errorf("confidence interval: %w: need at least 2 values, got %d", ErrSampleSize, n)
	}
	mean := stat.Mean(xs, nil)
	sem := stat.StdDev(xs, nil) / math.Sqrt(float64(n))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - (1-level)/2)
	margin := t * sem
	return ConfidenceInterval{
		Level:  level,
		N:      n,
		Mean:   mean,
		SEM:    sem,
		Margin: margin,
		Lower:  mean - margin,
		Upper:  mean + margin,
	}, nil
}
