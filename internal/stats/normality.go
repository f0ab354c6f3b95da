package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// NormalityResult is the outcome of a Shapiro-Wilk test.
type NormalityResult struct {
	N      int
	W      float64
	PValue float64
	// Warning is set when the p-value is outside the approximation's
	// validated range.
	Warning string
}

// Royston (1995) polynomial approximations for the Shapiro-Wilk weights and
// the null distribution of W.
var (
	swG  = []float64{-2.273, 0.459}
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
)

const swMaxN = 5000

// ShapiroWilk tests the null hypothesis that xs was drawn from a normal
// distribution. It needs at least three values that are not all identical.
func ShapiroWilk(xs []float64) (NormalityResult, error) {
	n := len(xs)
	res := NormalityResult{N: n, W: math.NaN(), PValue: math.NaN()}
	if n < 3 {
		return res, fmt.Errorf("%w: shapiro-wilk needs at least 3 values, got %d", ErrSampleSize, n)
	}
	x := make([]float64, n)
	copy(x, xs)
	sort.Float64s(x)
	if x[n-1]-x[0] == 0 {
		return res, ErrZeroRange
	}

	a := swCoefficients(n)
	mean := stat.Mean(x, nil)
	var ssq float64
	for _, v := range x {
		d := v - mean
		ssq += d * d
	}
	var b float64
	for i := range a {
		b += a[i] * (x[n-1-i] - x[i])
	}
	w := b * b / ssq
	if w > 1 {
		w = 1
	}
	res.W = w
	res.PValue = swPValue(w, n)
	if n > swMaxN {
		res.Warning = fmt.Sprintf("p-value may not be accurate for N > %d", swMaxN)
	}
	return res, nil
}

// swCoefficients returns the antisymmetric weights a[i] applied to
// x[n-1-i] - x[i], largest first.
func swCoefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}
	an := float64(n)
	an25 := an + 0.25
	m := make([]float64, nn2)
	var summ2 float64
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)
	a1 := poly(swC1, rsn) - m[0]/ssumm2

	first := 1
	var fac float64
	if n > 5 {
		first = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func swPValue(w float64, n int) float64 {
	if n == 3 {
		const pi6, stqr = 6 / math.Pi, math.Pi / 3
		p := pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return math.Max(0, math.Min(1, p))
	}
	an := float64(n)
	y := math.Log(1 - w)
	var m, s float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, an)
		s = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		m = poly(swC5, xx)
		s = math.Exp(poly(swC6, xx))
	}
	return distuv.Normal{Mu: m, Sigma: s}.Survival(y)
}

// poly evaluates c[0] + c[1]x + c[2]x² + ...
func poly(c []float64, x float64) float64 {
	var r float64
	for i := len(c) - 1; i >= 0; i-- {
		r = r*x + c[i]
	}
	return r
}
