package analysis

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/salesstat/internal/stats"
	"github.com/KaramelBytes/salesstat/internal/utils"
)

// Format is a report output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts the format names and their short aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format: %s (use text|markdown|json|yaml)", s)
}

// Render writes the report in the given format.
func (r *Report) Render(w io.Writer, f Format) error {
	switch f {
	case FormatText:
		return r.WriteText(w)
	case FormatMarkdown:
		_, err := io.WriteString(w, r.Markdown())
		return err
	case FormatJSON:
		b, err := utils.PrettyJSON(r)
		if err != nil {
			return err
		}
		_, err = w.Write(append(b, '\n'))
		return err
	case FormatYAML:
		b, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("unsupported format: %s", f)
}

var (
	heading     = color.New(color.Bold)
	goodVerdict = color.New(color.FgGreen, color.Bold)
	badVerdict  = color.New(color.FgYellow, color.Bold)
)

// WriteText writes the console report.
func (r *Report) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.println("COLUMNS IN DATASET:")
	ew.println(strings.Join(r.Columns, ", "))
	ew.println()

	heading.Fprintln(ew, "DETECTED COLUMNS")
	ew.printf("Sales column: %s\n", r.Roles.Sales)
	ew.printf("Region column: %s\n", orNone(r.Roles.Region))
	ew.printf("Product column: %s\n", orNone(r.Roles.Product))
	ew.println()

	heading.Fprintln(ew, "DESCRIPTIVE STATISTICS")
	tw := tablewriter.NewWriter(ew)
	tw.SetHeader([]string{"", r.Roles.Sales})
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, row := range r.Sales.rows() {
		tw.Append([]string{row[0], row[1]})
	}
	tw.Render()
	ew.println()

	heading.Fprintln(ew, "Sales Summary")
	ew.printf("Mean: %s\n", fixed(r.Sales.Mean))
	ew.printf("Median: %s\n", fixed(r.Sales.Median))
	ew.printf("Mode: %s\n", fixed(r.Sales.Mode))
	ew.printf("Standard Deviation: %s\n", fixed(r.Sales.Std))
	ew.println()

	if r.Normality != nil {
		ew.printf("Shapiro-Wilk Test p-value: %s\n", pval(r.Normality.PValue))
		ew.println()
	}

	if r.Correlation != nil {
		heading.Fprintln(ew, "Correlation Matrix")
		tw := tablewriter.NewWriter(ew)
		tw.SetHeader(append([]string{""}, r.Correlation.Columns...))
		tw.SetAutoFormatHeaders(false)
		tw.SetAlignment(tablewriter.ALIGN_RIGHT)
		for i, name := range r.Correlation.Columns {
			row := []string{name}
			for _, v := range r.Correlation.Values[i] {
				row = append(row, corr(v))
			}
			tw.Append(row)
		}
		tw.Render()
		ew.println()
	}

	ew.printf("One Sample T-Test p-value: %s\n", pval(r.OneSample.PValue))
	if r.RegionTest != nil {
		ew.printf("Independent T-Test p-value (%s): %s\n", strings.Join(r.RegionTest.Groups, " vs "), pval(r.RegionTest.PValue))
	}
	if r.ProductANOVA != nil {
		ew.printf("ANOVA Test p-value: %s\n", pval(r.ProductANOVA.PValue))
	}
	ew.println()

	if len(r.Groups) > 0 {
		heading.Fprintln(ew, "SALES BY GROUP")
		tw := tablewriter.NewWriter(ew)
		tw.SetHeader([]string{"Column", "Group", "Count", "Mean", "Total"})
		for _, g := range r.Groups {
			tw.Append([]string{g.Column, g.Key, strconv.Itoa(g.Count), fixed(g.Mean), g.Total})
		}
		tw.Render()
		ew.println()
	}

	level := levelLabel(r.Interval.Level)
	heading.Fprintf(ew, "%s CONFIDENCE INTERVAL\n", level)
	ew.printf("Average Sales: %s ± %s\n", whole(r.Interval.Mean), whole(r.Interval.Margin))
	ew.println()

	heading.Fprintln(ew, "STATISTICAL ANALYSIS REPORT")
	ew.printf("Mean Sales: %s\n", whole(r.Interval.Mean))
	ew.printf("%s Confidence Interval: ± %s\n", level, whole(r.Interval.Margin))
	if r.Significant {
		goodVerdict.Fprintln(ew, r.Verdict())
	} else {
		badVerdict.Fprintln(ew, r.Verdict())
	}
	if r.SelfComparison() {
		ew.println("Note: the one-sample test used the sample's own mean as reference, so p is 1 by construction. Set a benchmark to test against a target.")
	}

	if len(r.Plots) > 0 {
		ew.println()
		for _, p := range r.Plots {
			ew.printf("✓ Saved plot %s\n", p)
		}
	}
	return ew.err
}

// Markdown renders the report with bracketed section headers.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[SALES ANALYSIS]\n")
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Source))
	}
	b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Columns)))

	b.WriteString("[DETECTED COLUMNS]\n")
	b.WriteString(fmt.Sprintf("- sales: %s\n", r.Roles.Sales))
	b.WriteString(fmt.Sprintf("- region: %s\n", orNone(r.Roles.Region)))
	b.WriteString(fmt.Sprintf("- product: %s\n\n", orNone(r.Roles.Product)))

	b.WriteString("[DESCRIPTIVE STATISTICS]\n")
	b.WriteString("| stat | value |\n|---|---|\n")
	for _, row := range r.Sales.rows() {
		b.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], row[1]))
	}
	b.WriteString(fmt.Sprintf("| mode | %s |\n\n", fixed(r.Sales.Mode)))

	if r.Normality != nil {
		b.WriteString("[NORMALITY]\n")
		b.WriteString(fmt.Sprintf("- Shapiro-Wilk (n=%d): W %.4f, p %s\n\n", r.Normality.N, float64(r.Normality.W), pval(r.Normality.PValue)))
	}

	if r.Correlation != nil {
		pairs := r.Correlation.matrix().TopPairs(10)
		if len(pairs) > 0 {
			b.WriteString("[CORRELATIONS]\n")
			for _, p := range pairs {
				b.WriteString(fmt.Sprintf("- %s vs %s: r=%.3f\n", p.A, p.B, p.R))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("[HYPOTHESIS TESTS]\n")
	b.WriteString(fmt.Sprintf("- %s (reference %s", r.OneSample.Name, r.OneSample.Reference))
	if r.OneSample.Mu0 != nil {
		b.WriteString(fmt.Sprintf(" %s", fixed(*r.OneSample.Mu0)))
	}
	b.WriteString(fmt.Sprintf("): %s\n", outcomeLine(r.OneSample)))
	if r.RegionTest != nil {
		b.WriteString(fmt.Sprintf("- %s (%s): %s\n", r.RegionTest.Name, strings.Join(r.RegionTest.Groups, " vs "), outcomeLine(*r.RegionTest)))
	}
	if r.ProductANOVA != nil {
		b.WriteString(fmt.Sprintf("- %s (%d groups): %s\n", r.ProductANOVA.Name, len(r.ProductANOVA.Groups), outcomeLine(*r.ProductANOVA)))
	}
	b.WriteString("\n")

	b.WriteString("[CONFIDENCE INTERVAL]\n")
	b.WriteString(fmt.Sprintf("- %s: %s ± %s (%s to %s)\n\n", levelLabel(r.Interval.Level),
		whole(r.Interval.Mean), whole(r.Interval.Margin), fixed(r.Interval.Lower), fixed(r.Interval.Upper)))

	if len(r.Groups) > 0 {
		b.WriteString("[GROUP BREAKDOWN]\n")
		for _, g := range r.Groups {
			b.WriteString(fmt.Sprintf("- %s=%s (n=%d): mean %s, total %s\n", g.Column, g.Key, g.Count, fixed(g.Mean), g.Total))
		}
		b.WriteString("\n")
	}

	b.WriteString("[VERDICT]\n")
	b.WriteString(r.Verdict() + "\n")
	if r.SelfComparison() {
		b.WriteString("Note: one-sample reference is the sample mean; p is 1 by construction.\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, w := range r.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}

func (s SalesSummary) rows() [][2]string {
	return [][2]string{
		{"count", strconv.Itoa(s.Count)},
		{"mean", fixed(s.Mean)},
		{"std", fixed(s.Std)},
		{"min", fixed(s.Min)},
		{"25%", fixed(s.Q1)},
		{"50%", fixed(s.Median)},
		{"75%", fixed(s.Q3)},
		{"max", fixed(s.Max)},
	}
}

func (c *Correlation) matrix() stats.CorrMatrix {
	m := stats.CorrMatrix{Columns: c.Columns, Values: make([][]float64, len(c.Values))}
	for i, row := range c.Values {
		m.Values[i] = make([]float64, len(row))
		for j, v := range row {
			m.Values[i][j] = float64(v)
		}
	}
	return m
}

func outcomeLine(o Outcome) string {
	if o.Error != "" {
		return "not computed (" + o.Error + ")"
	}
	dof := num(o.DoF)
	if o.DoF2 != 0 {
		dof = fmt.Sprintf("(%s, %s)", num(o.DoF), num(o.DoF2))
	}
	return fmt.Sprintf("stat %s, df %s, p %s", num(o.Statistic), dof, pval(o.PValue))
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func fixed(n Num) string {
	if math.IsNaN(float64(n)) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", float64(n))
}

func num(n Num) string {
	return strconv.FormatFloat(float64(n), 'g', 6, 64)
}

func pval(n Num) string {
	if math.IsNaN(float64(n)) {
		return "nan"
	}
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func corr(n Num) string {
	if math.IsNaN(float64(n)) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", float64(n))
}

// whole rounds half to even for the integer console figures.
func whole(n Num) string {
	if !n.Valid() {
		return "nan"
	}
	return strconv.FormatFloat(math.RoundToEven(float64(n)), 'f', 0, 64)
}

func levelLabel(level float64) string {
	return strconv.FormatFloat(math.Round(level*1000)/10, 'f', -1, 64) + "%"
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}

func (e *errWriter) println(args ...any) {
	fmt.Fprintln(e, args...)
}
