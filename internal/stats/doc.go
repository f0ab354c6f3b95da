// Package stats provides the descriptive and inferential statistics used by
// the sales analysis pipeline.
//
// # Descriptive Statistics
//
//	sum, err := stats.Describe(values)
//	fmt.Printf("mean=%.2f median=%.2f mode=%.2f std=%.2f\n",
//	    sum.Mean, sum.Median, sum.Mode, sum.Std)
//
// # Normality
//
// The Shapiro-Wilk test uses Royston's approximation and accepts 3 to 5000
// observations:
//
//	res, err := stats.ShapiroWilk(values)
//	// res.W, res.PValue
//
// # Hypothesis Tests
//
//	// Student's one-sample test against mu0
//	one, err := stats.OneSampleTTest(values, mu0)
//
//	// Pooled-variance two-sample test
//	two, err := stats.TwoSampleTTest(north, south)
//
//	// One-way ANOVA across any number of groups
//	anova, err := stats.OneWayANOVA([][]float64{a, b, c})
//
// Every test reports a two-sided p-value and leaves the significance decision
// to the caller.
//
// # Intervals and Correlation
//
//	ci, err := stats.MeanInterval(values, 0.95)
//	// ci.Mean ± ci.Margin
//
//	corr := stats.CorrelationMatrix(names, columns)
package stats
