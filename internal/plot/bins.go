package plot

import (
	"math"

	"github.com/KaramelBytes/salesstat/internal/stats"
)

// Bins picks a histogram bin count as the finer of Sturges' rule and the
// Freedman-Diaconis rule, falling back to Sturges when the IQR is zero.
func Bins(xs []float64) int {
	n := len(xs)
	if n < 2 {
		return 1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range xs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		return 1
	}
	width := span / (math.Log2(float64(n)) + 1)
	iqr := stats.Quantile(xs, 0.75) - stats.Quantile(xs, 0.25)
	if fd := 2 * iqr * math.Pow(float64(n), -1.0/3.0); fd > 0 && fd < width {
		width = fd
	}
	bins := int(math.Ceil(span / width))
	if bins < 1 {
		bins = 1
	}
	// guard against a tiny IQR exploding the bin count
	if bins > 200 {
		bins = 200
	}
	return bins
}
