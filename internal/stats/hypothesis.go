package stats

import (
	"fmt"
	"math"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestResult is the outcome of a hypothesis test. DoF2 is only set for
// tests with two degrees-of-freedom parameters (ANOVA).
type TestResult struct {
	Name      string
	Statistic float64
	DoF       float64
	DoF2      float64
	PValue    float64
}

func failed(name string) TestResult {
	return TestResult{Name: name, Statistic: math.NaN(), DoF: math.NaN(), PValue: math.NaN()}
}

// OneSampleTTest runs a two-sided Student's t-test of H0: mean(xs) == mu0.
func OneSampleTTest(xs []float64, mu0 float64) (TestResult, error) {
	const name = "one-sample t-test"
	if len(xs) < 2 {
		return failed(name), fmt.Errorf("%s: %w: need at least 2 values, got %d", name, ErrSampleSize, len(xs))
	}
	r, err := mstats.OneSampleTTest(mstats.Sample{Xs: xs}, mu0, mstats.LocationDiffers)
	if err != nil {
		return failed(name), fmt.Errorf("%s: %w", name, err)
	}
	return TestResult{Name: name, Statistic: r.T, DoF: r.DoF, PValue: r.P}, nil
}

// TwoSampleTTest runs a two-sided pooled-variance t-test of H0: mean(a) == mean(b).
func TwoSampleTTest(a, b []float64) (TestResult, error) {
	const name = "independent t-test"
	if len(a) < 2 || len(b) < 2 {
		return failed(name), fmt.Errorf("%s: %w: groups have %d and %d values", name, ErrSampleSize, len(a), len(b))
	}
	r, err := mstats.TwoSampleTTest(mstats.Sample{Xs: a}, mstats.Sample{Xs: b}, mstats.LocationDiffers)
	if err != nil {
		return failed(name), fmt.Errorf("%s: %w", name, err)
	}
	return TestResult{Name: name, Statistic: r.T, DoF: r.DoF, PValue: r.P}, nil
}

// OneWayANOVA tests H0: every group shares the same mean. Empty groups are
// ignored.
func OneWayANOVA(groups [][]float64) (TestResult, error) {
	const name = "one-way ANOVA"
	var kept [][]float64
	total := 0
	for _, g := range groups {
		if len(g) > 0 {
			kept = append(kept, g)
			total += len(g)
		}
	}
	k := len(kept)
	if k < 2 {
		return failed(name), fmt.Errorf("%s: %w: got %d", name, ErrTooFewGroups, k)
	}
	if total-k < 1 {
		return failed(name), fmt.Errorf("%s: %w: %d values across %d groups", name, ErrSampleSize, total, k)
	}

	all := make([]float64, 0, total)
	for _, g := range kept {
		all = append(all, g...)
	}
	grand := stat.Mean(all, nil)
	var ssb, ssw float64
	for _, g := range kept {
		m := stat.Mean(g, nil)
		d := m - grand
		ssb += float64(len(g)) * d * d
		for _, v := range g {
			e := v - m
			ssw += e * e
		}
	}
	dfb := float64(k - 1)
	dfw := float64(total - k)
	res := TestResult{Name: name, DoF: dfb, DoF2: dfw}
	switch {
	case ssw == 0 && ssb == 0:
		res.Statistic, res.PValue = math.NaN(), math.NaN()
		return res, fmt.Errorf("%s: %w", name, ErrZeroRange)
	case ssw == 0:
		res.Statistic, res.PValue = math.Inf(1), 0
		return res, nil
	}
	f := (ssb / dfb) / (ssw / dfw)
	res.Statistic = f
	res.PValue = distuv.F{D1: dfb, D2: dfw}.Survival(f)
	return res, nil
}
