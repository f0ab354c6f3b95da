package analysis

import (
	"math"
	"strconv"
	"time"

	"github.com/KaramelBytes/salesstat/internal/dataset"
	"github.com/KaramelBytes/salesstat/internal/stats"
)

const (
	VerdictSignificant    = "Sales are statistically significant."
	VerdictNotSignificant = "Sales are not statistically significant."
)

// One-sample reference kinds.
const (
	ReferenceSampleMean = "sample_mean"
	ReferenceBenchmark  = "benchmark"
)

// Num is a float that encodes NaN and ±Inf as JSON null.
type Num float64

// Valid reports whether n is a finite number.
func (n Num) Valid() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(n), 'g', -1, 64), nil
}

// Report is everything one pipeline run produced.
type Report struct {
	RunID       string        `json:"run_id" yaml:"run_id"`
	Source      string        `json:"source" yaml:"source"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Rows        int           `json:"rows" yaml:"rows"`
	Columns     []string      `json:"columns" yaml:"columns"`
	Roles       dataset.Roles `json:"roles" yaml:"roles"`
	Alpha       float64       `json:"alpha" yaml:"alpha"`

	Sales        SalesSummary `json:"sales" yaml:"sales"`
	Normality    *Normality   `json:"normality,omitempty" yaml:"normality,omitempty"`
	Correlation  *Correlation `json:"correlation,omitempty" yaml:"correlation,omitempty"`
	OneSample    Outcome      `json:"one_sample_test" yaml:"one_sample_test"`
	RegionTest   *Outcome     `json:"region_test,omitempty" yaml:"region_test,omitempty"`
	ProductANOVA *Outcome     `json:"product_anova,omitempty" yaml:"product_anova,omitempty"`
	Interval     Interval     `json:"confidence_interval" yaml:"confidence_interval"`
	Groups       []GroupStat  `json:"groups,omitempty" yaml:"groups,omitempty"`

	Significant bool     `json:"significant" yaml:"significant"`
	Plots       []string `json:"plots,omitempty" yaml:"plots,omitempty"`
	Warnings    []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Verdict is the one-line significance statement.
func (r *Report) Verdict() string {
	if r.Significant {
		return VerdictSignificant
	}
	return VerdictNotSignificant
}

// SelfComparison reports whether the one-sample test used the sample's own
// mean as reference, which pins p at 1.
func (r *Report) SelfComparison() bool {
	return r.OneSample.Reference == ReferenceSampleMean
}

type SalesSummary struct {
	Count  int `json:"count" yaml:"count"`
	Mean   Num `json:"mean" yaml:"mean"`
	Std    Num `json:"std" yaml:"std"`
	Min    Num `json:"min" yaml:"min"`
	Q1     Num `json:"q1" yaml:"q1"`
	Median Num `json:"median" yaml:"median"`
	Q3     Num `json:"q3" yaml:"q3"`
	Max    Num `json:"max" yaml:"max"`
	Mode   Num `json:"mode" yaml:"mode"`
}

func newSalesSummary(s stats.Summary) SalesSummary {
	return SalesSummary{
		Count:  s.Count,
		Mean:   Num(s.Mean),
		Std:    Num(s.Std),
		Min:    Num(s.Min),
		Q1:     Num(s.Q1),
		Median: Num(s.Median),
		Q3:     Num(s.Q3),
		Max:    Num(s.Max),
		Mode:   Num(s.Mode),
	}
}

type Normality struct {
	N      int `json:"n" yaml:"n"`
	W      Num `json:"w" yaml:"w"`
	PValue Num `json:"p_value" yaml:"p_value"`
}

type Correlation struct {
	Columns []string `json:"columns" yaml:"columns"`
	Values  [][]Num  `json:"values" yaml:"values"`
}

func newCorrelation(m stats.CorrMatrix) *Correlation {
	c := &Correlation{Columns: m.Columns, Values: make([][]Num, len(m.Values))}
	for i, row := range m.Values {
		c.Values[i] = make([]Num, len(row))
		for j, v := range row {
			c.Values[i][j] = Num(v)
		}
	}
	return c
}

// Outcome is a hypothesis test result as stored on the report. Error is set
// when the test could not be computed.
type Outcome struct {
	Name      string   `json:"name" yaml:"name"`
	Statistic Num      `json:"statistic" yaml:"statistic"`
	DoF       Num      `json:"dof" yaml:"dof"`
	DoF2      Num      `json:"dof2,omitempty" yaml:"dof2,omitempty"`
	PValue    Num      `json:"p_value" yaml:"p_value"`
	Groups    []string `json:"groups,omitempty" yaml:"groups,omitempty"`
	Reference string   `json:"reference,omitempty" yaml:"reference,omitempty"`
	Mu0       *Num     `json:"mu0,omitempty" yaml:"mu0,omitempty"`
	Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func newOutcome(res stats.TestResult, err error) Outcome {
	o := Outcome{
		Name:      res.Name,
		Statistic: Num(res.Statistic),
		DoF:       Num(res.DoF),
		DoF2:      Num(res.DoF2),
		PValue:    Num(res.PValue),
	}
	if err != nil {
		o.Error = err.Error()
	}
	return o
}

type Interval struct {
	Level  float64 `json:"level" yaml:"level"`
	N      int     `json:"n" yaml:"n"`
	Mean   Num     `json:"mean" yaml:"mean"`
	SEM    Num     `json:"sem" yaml:"sem"`
	Margin Num     `json:"margin" yaml:"margin"`
	Lower  Num     `json:"lower" yaml:"lower"`
	Upper  Num     `json:"upper" yaml:"upper"`
}
