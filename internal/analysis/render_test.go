package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/salesstat/internal/dataset"
)

func runRetail(t *testing.T) *Report {
	t.Helper()
	opt := DefaultOptions()
	opt.Plots = false
	rep, err := NewAnalyzer(nil, opt).Run(context.Background(), retailTable(t))
	require.NoError(t, err)
	return rep
}

func TestWriteTextSections(t *testing.T) {
	rep := runRetail(t)
	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf, FormatText))
	out := buf.String()

	for _, want := range []string{
		"COLUMNS IN DATASET:",
		"date, total_sales, region, product_category, units",
		"DETECTED COLUMNS",
		"Sales column: total_sales",
		"DESCRIPTIVE STATISTICS",
		"Sales Summary",
		"Mean: 150.50",
		"Shapiro-Wilk Test p-value:",
		"Correlation Matrix",
		"One Sample T-Test p-value: ",
		"Independent T-Test p-value (North vs South):",
		"ANOVA Test p-value:",
		"SALES BY GROUP",
		"95% CONFIDENCE INTERVAL",
		"Average Sales: 150 ± ",
		"STATISTICAL ANALYSIS REPORT",
		VerdictNotSignificant,
		"sample's own mean",
	} {
		assert.Contains(t, out, want)
	}
}

func TestMarkdownSections(t *testing.T) {
	rep := runRetail(t)
	md := rep.Markdown()
	for _, want := range []string{
		"[SALES ANALYSIS]",
		"File: retail.csv",
		"[DETECTED COLUMNS]",
		"- product: product_category",
		"[DESCRIPTIVE STATISTICS]",
		"| mean | 150.50 |",
		"[NORMALITY]",
		"[CORRELATIONS]",
		"- total_sales vs units: r=",
		"[HYPOTHESIS TESTS]",
		"independent t-test (North vs South)",
		"one-way ANOVA (2 groups)",
		"[CONFIDENCE INTERVAL]",
		"[GROUP BREAKDOWN]",
		"- region=North (n=8): mean 100.50, total 804.00",
		"[VERDICT]",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "[WARNINGS]")
}

func TestJSONEncodesNaNAsNull(t *testing.T) {
	tbl, err := dataset.FromRecords([][]string{{"sales"}, {"7"}})
	require.NoError(t, err)
	opt := DefaultOptions()
	opt.Plots = false
	rep, err := NewAnalyzer(nil, opt).Run(context.Background(), tbl)
	require.NoError(t, err)
	require.True(t, math.IsNaN(float64(rep.Sales.Std)))

	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf, FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	sales := decoded["sales"].(map[string]any)
	assert.Nil(t, sales["std"])
	assert.Equal(t, 7.0, sales["mean"])
	assert.Equal(t, false, decoded["significant"])
	assert.NotEmpty(t, decoded["warnings"])
}

func TestYAMLRoundTrip(t *testing.T) {
	rep := runRetail(t)
	var buf bytes.Buffer
	require.NoError(t, rep.Render(&buf, FormatYAML))

	var decoded struct {
		Source string        `yaml:"source"`
		Roles  dataset.Roles `yaml:"roles"`
		Groups []GroupStat   `yaml:"groups"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "retail.csv", decoded.Source)
	assert.Equal(t, "region", decoded.Roles.Region)
	require.Len(t, decoded.Groups, 4)
	assert.Equal(t, "804.00", decoded.Groups[0].Total)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatText,
		"TEXT":     FormatText,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		"json":     FormatJSON,
		"yml":      FormatYAML,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("html")
	assert.Error(t, err)
}

func TestWholeRoundsHalfToEven(t *testing.T) {
	assert.Equal(t, "2", whole(2.5))
	assert.Equal(t, "4", whole(3.5))
	assert.Equal(t, "215", whole(214.6))
	assert.Equal(t, "nan", whole(Num(math.NaN())))
	assert.Equal(t, "95%", levelLabel(0.95))
	assert.Equal(t, "99.5%", levelLabel(0.995))
}

func TestVerdictThreshold(t *testing.T) {
	r := &Report{Significant: true}
	assert.Equal(t, "Sales are statistically significant.", r.Verdict())
	r.Significant = false
	assert.Equal(t, "Sales are not statistically significant.", r.Verdict())
	assert.False(t, strings.Contains(r.Verdict(), "  "))
}
