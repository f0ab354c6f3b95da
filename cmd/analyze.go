package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/salesstat/internal/analysis"
	"github.com/KaramelBytes/salesstat/internal/dataset"
	"github.com/KaramelBytes/salesstat/internal/utils"
)

var (
	anaFlags      runFlags
	anaOutputPath string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run the full statistical analysis on a sales dataset",
	Long: `Analyze loads a CSV/TSV/XLSX file, detects the sales, region and product columns,
and prints descriptive statistics, a Shapiro-Wilk normality test, the correlation
matrix, t-tests, ANOVA and a confidence interval for mean sales.

When no file is given the configured input (default Retail_Sales.csv) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := currentConfig()
		path := g.Input
		if len(args) == 1 {
			path = args[0]
		}
		rc, err := anaFlags.resolve(cmd, g)
		if err != nil {
			return err
		}
		rep, err := analyzeFile(cmd.Context(), path, rc)
		if err != nil {
			return err
		}
		if anaOutputPath != "" {
			if err := writeReportFile(rep, rc.format, anaOutputPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		return rep.Render(cmd.OutOrStdout(), rc.format)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
}

// analyzeFile loads path and runs the pipeline over it.
func analyzeFile(ctx context.Context, path string, rc runConfig) (*analysis.Report, error) {
	tbl, err := dataset.Load(path, rc.load)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded dataset",
		zap.String("path", path),
		zap.Int("rows", tbl.Rows()),
		zap.Strings("columns", tbl.Columns()))
	return analysis.NewAnalyzer(logger, rc.opt).Run(ctx, tbl)
}

// writeReportFile renders without colour and writes atomically.
func writeReportFile(rep *analysis.Report, f analysis.Format, path string) error {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	if err := rep.Render(&buf, f); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
