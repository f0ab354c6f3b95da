package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesstat/internal/analysis"
	cfgpkg "github.com/KaramelBytes/salesstat/internal/config"
	"github.com/KaramelBytes/salesstat/internal/dataset"
)

// runFlags are the pipeline flags shared by analyze and analyze-batch.
type runFlags struct {
	delimiter  string
	sheetName  string
	sheetIndex int
	plots      bool
	noPlots    bool
	plotDir    string
	format     string
	benchmark  float64
	alpha      float64
	confidence float64
}

func (f *runFlags) register(c *cobra.Command) {
	fs := c.Flags()
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab'")
	fs.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fs.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fs.BoolVar(&f.plots, "plots", true, "render histogram and correlation heatmap PNGs")
	fs.BoolVar(&f.noPlots, "no-plots", false, "skip plot rendering")
	fs.StringVar(&f.plotDir, "plot-dir", "", "directory for plot PNGs (default from config)")
	fs.StringVarP(&f.format, "format", "f", "", "report format: text|markdown|json|yaml")
	fs.Float64Var(&f.benchmark, "benchmark", 0, "reference mean for the one-sample t-test (default: the sample's own mean)")
	fs.Float64Var(&f.alpha, "alpha", 0.05, "significance level for the verdict")
	fs.Float64Var(&f.confidence, "confidence", 0.95, "confidence level for the interval")
}

type runConfig struct {
	load   dataset.LoadOptions
	opt    analysis.Options
	format analysis.Format
}

// resolve merges flags over the loaded configuration. Only flags the user set
// override config values.
func (f *runFlags) resolve(c *cobra.Command, g *cfgpkg.Global) (runConfig, error) {
	fs := c.Flags()
	var rc runConfig

	delim := g.Delimiter
	if fs.Changed("delimiter") {
		delim = f.delimiter
	}
	r, err := parseDelimiter(delim)
	if err != nil {
		return rc, err
	}
	rc.load = dataset.LoadOptions{Delimiter: r, SheetName: g.SheetName, SheetIndex: g.SheetIndex}
	if fs.Changed("sheet-name") {
		rc.load.SheetName = f.sheetName
	}
	if fs.Changed("sheet-index") {
		rc.load.SheetIndex = f.sheetIndex
	}

	format := g.Format
	if fs.Changed("format") {
		format = f.format
	}
	if rc.format, err = analysis.ParseFormat(format); err != nil {
		return rc, err
	}

	opt := analysis.DefaultOptions()
	opt.Keywords = g.Keywords
	opt.Alpha = g.Alpha
	if fs.Changed("alpha") {
		opt.Alpha = f.alpha
	}
	opt.Confidence = g.Confidence
	if fs.Changed("confidence") {
		opt.Confidence = f.confidence
	}
	if opt.Alpha <= 0 || opt.Alpha >= 1 {
		return rc, fmt.Errorf("invalid --alpha: %v (must be in (0, 1))", opt.Alpha)
	}
	if opt.Confidence <= 0 || opt.Confidence >= 1 {
		return rc, fmt.Errorf("invalid --confidence: %v (must be in (0, 1))", opt.Confidence)
	}
	switch {
	case fs.Changed("benchmark"):
		b := f.benchmark
		opt.Benchmark = &b
	case g.BenchmarkEnabled:
		b := g.Benchmark
		opt.Benchmark = &b
	}
	opt.Plots = g.Plots
	if fs.Changed("plots") {
		opt.Plots = f.plots
	}
	if f.noPlots {
		opt.Plots = false
	}
	opt.PlotDir = g.PlotDir
	if fs.Changed("plot-dir") {
		opt.PlotDir = f.plotDir
	}
	rc.opt = opt
	return rc, nil
}

func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	case ";":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}

func formatExt(f analysis.Format) string {
	switch f {
	case analysis.FormatMarkdown:
		return ".md"
	case analysis.FormatJSON:
		return ".json"
	case analysis.FormatYAML:
		return ".yaml"
	}
	return ".txt"
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
