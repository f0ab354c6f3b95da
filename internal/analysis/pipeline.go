package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/salesstat/internal/dataset"
	"github.com/KaramelBytes/salesstat/internal/plot"
	"github.com/KaramelBytes/salesstat/internal/stats"
)

// Options controls one pipeline run.
type Options struct {
	Keywords dataset.Keywords
	// Alpha is the significance threshold for the verdict.
	Alpha float64
	// Confidence is the interval level, e.g. 0.95.
	Confidence float64
	// Benchmark, when set, replaces the sample mean as the one-sample
	// reference value.
	Benchmark *float64
	// Plots enables PNG rendering into PlotDir.
	Plots   bool
	PlotDir string
}

// DefaultOptions returns sensible defaults for a run.
func DefaultOptions() Options {
	return Options{
		Keywords:   dataset.DefaultKeywords(),
		Alpha:      0.05,
		Confidence: 0.95,
		Plots:      true,
		PlotDir:    ".",
	}
}

// Analyzer runs the sales pipeline over a loaded table.
type Analyzer struct {
	logger   *zap.Logger
	opt      Options
	renderer *plot.Renderer
}

// NewAnalyzer returns an Analyzer. A nil logger is replaced with a no-op one.
func NewAnalyzer(logger *zap.Logger, opt Options) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Analyzer{logger: logger, opt: opt}
	if opt.Plots {
		a.renderer = plot.NewRenderer(opt.PlotDir)
	}
	return a
}

// Run executes every step in order and returns the collected report. Load
// and detection failures are fatal; everything after the descriptive step
// records its failure on the report and carries on.
func (a *Analyzer) Run(ctx context.Context, t *dataset.Table) (*Report, error) {
	runID := uuid.NewString()
	log := a.logger.With(zap.String("run_id", runID), zap.String("source", t.Name))

	roles, err := dataset.Detect(t.Columns(), a.opt.Keywords)
	if err != nil {
		return nil, err
	}
	log.Debug("detected columns",
		zap.String("sales", roles.Sales),
		zap.String("region", roles.Region),
		zap.String("product", roles.Product))

	sales, err := t.Floats(roles.Sales)
	if err != nil {
		return nil, fmt.Errorf("sales column %q: %w", roles.Sales, err)
	}
	summary, err := stats.Describe(sales)
	if err != nil {
		return nil, fmt.Errorf("sales column %q: %w", roles.Sales, err)
	}

	rep := &Report{
		RunID:       runID,
		Source:      t.Name,
		GeneratedAt: time.Now().UTC(),
		Rows:        t.Rows(),
		Columns:     t.Columns(),
		Roles:       roles,
		Alpha:       a.opt.Alpha,
		Sales:       newSalesSummary(summary),
	}
	warn := func(step string, err error) {
		log.Warn(step+" skipped", zap.Error(err))
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %v", step, err))
	}

	steps := []func(){
		func() { a.distribution(rep, sales, warn) },
		func() { a.correlation(rep, t, warn) },
		func() { a.oneSample(rep, sales, summary.Mean, warn) },
		func() { a.regionTest(rep, t, roles, warn) },
		func() { a.productANOVA(rep, t, roles, warn) },
		func() { a.interval(rep, sales, warn) },
		func() { a.groups(rep, t, roles, warn) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step()
	}

	rep.Significant = rep.OneSample.PValue.Valid() && float64(rep.OneSample.PValue) < a.opt.Alpha
	log.Debug("analysis complete",
		zap.Float64("one_sample_p", float64(rep.OneSample.PValue)),
		zap.Bool("significant", rep.Significant))
	return rep, nil
}

type warnFunc func(step string, err error)

func (a *Analyzer) distribution(rep *Report, sales []float64, warn warnFunc) {
	res, err := stats.ShapiroWilk(sales)
	if err != nil {
		warn("shapiro-wilk", err)
	} else {
		rep.Normality = &Normality{N: res.N, W: Num(res.W), PValue: Num(res.PValue)}
		if res.Warning != "" {
			rep.Warnings = append(rep.Warnings, res.Warning)
		}
	}
	if a.renderer == nil {
		return
	}
	path, err := a.renderer.Histogram(sales, "Sales")
	if err != nil {
		warn("histogram", err)
		return
	}
	a.logger.Debug("wrote plot", zap.String("path", path))
	rep.Plots = append(rep.Plots, path)
}

func (a *Analyzer) correlation(rep *Report, t *dataset.Table, warn warnFunc) {
	names := t.Numeric()
	cols := make([][]float64, 0, len(names))
	for _, name := range names {
		col, err := t.Column(name)
		if err != nil {
			warn("correlation", err)
			return
		}
		cols = append(cols, col)
	}
	m := stats.CorrelationMatrix(names, cols)
	rep.Correlation = newCorrelation(m)
	if a.renderer == nil {
		return
	}
	path, err := a.renderer.Heatmap(m)
	if err != nil {
		warn("correlation heatmap", err)
		return
	}
	a.logger.Debug("wrote plot", zap.String("path", path))
	rep.Plots = append(rep.Plots, path)
}

func (a *Analyzer) oneSample(rep *Report, sales []float64, mean float64, warn warnFunc) {
	mu0, ref := mean, ReferenceSampleMean
	if a.opt.Benchmark != nil {
		mu0, ref = *a.opt.Benchmark, ReferenceBenchmark
	}
	res, err := stats.OneSampleTTest(sales, mu0)
	rep.OneSample = newOutcome(res, err)
	rep.OneSample.Reference = ref
	ref0 := Num(mu0)
	rep.OneSample.Mu0 = &ref0
	if err != nil {
		warn("one-sample t-test", err)
	}
}

func (a *Analyzer) regionTest(rep *Report, t *dataset.Table, roles dataset.Roles, warn warnFunc) {
	if roles.Region == "" {
		return
	}
	groups, err := groupSales(t, roles.Sales, roles.Region)
	if err != nil {
		warn("region t-test", err)
		return
	}
	if len(groups) < 2 {
		warn("region t-test", fmt.Errorf("%w: column %q has %d distinct value(s)", stats.ErrTooFewGroups, roles.Region, len(groups)))
		return
	}
	first, second := groups[0], groups[1]
	res, err := stats.TwoSampleTTest(first.values, second.values)
	out := newOutcome(res, err)
	out.Groups = []string{first.key, second.key}
	rep.RegionTest = &out
	if err != nil {
		warn("region t-test", err)
	}
}

func (a *Analyzer) productANOVA(rep *Report, t *dataset.Table, roles dataset.Roles, warn warnFunc) {
	if roles.Product == "" {
		return
	}
	groups, err := groupSales(t, roles.Sales, roles.Product)
	if err != nil {
		warn("product anova", err)
		return
	}
	sortGroups(groups)
	keys := make([]string, 0, len(groups))
	samples := make([][]float64, 0, len(groups))
	for _, g := range groups {
		keys = append(keys, g.key)
		samples = append(samples, g.values)
	}
	res, err := stats.OneWayANOVA(samples)
	if errors.Is(err, stats.ErrTooFewGroups) {
		warn("product anova", err)
		return
	}
	out := newOutcome(res, err)
	out.Groups = keys
	rep.ProductANOVA = &out
	if err != nil {
		warn("product anova", err)
	}
}

func (a *Analyzer) interval(rep *Report, sales []float64, warn warnFunc) {
	ci, err := stats.MeanInterval(sales, a.opt.Confidence)
	if err != nil {
		warn("confidence interval", err)
		nan := Num(math.NaN())
		rep.Interval = Interval{Level: a.opt.Confidence, N: len(sales), Mean: nan, SEM: nan, Margin: nan, Lower: nan, Upper: nan}
		return
	}
	rep.Interval = Interval{
		Level:  ci.Level,
		N:      ci.N,
		Mean:   Num(ci.Mean),
		SEM:    Num(ci.SEM),
		Margin: Num(ci.Margin),
		Lower:  Num(ci.Lower),
		Upper:  Num(ci.Upper),
	}
}

func (a *Analyzer) groups(rep *Report, t *dataset.Table, roles dataset.Roles, warn warnFunc) {
	for _, col := range []string{roles.Region, roles.Product} {
		if col == "" {
			continue
		}
		b, err := breakdown(t, roles.Sales, col)
		if err != nil {
			warn("group breakdown", err)
			continue
		}
		rep.Groups = append(rep.Groups, b...)
	}
}
