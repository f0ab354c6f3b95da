package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/salesstat/internal/utils"
)

var (
	abFlags     runFlags
	abOutputDir string
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress",
	Long: `Analyze-batch runs the analysis over every matching file. Globs are expanded,
duplicates removed and files processed in sorted order. A failing file is reported
and skipped; the command exits non-zero if any file failed.

Plots for each file go to <plot-dir>/<file stem>/ so runs do not overwrite each other.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path if exists
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)

		rc, err := abFlags.resolve(cmd, currentConfig())
		if err != nil {
			return err
		}
		baseDir := rc.opt.PlotDir
		if abOutputDir != "" {
			if err := utils.EnsureDir(abOutputDir); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		total := len(files)
		failed := 0
		used := map[string]struct{}{}
		for i, path := range files {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			stem := uniqueStem(used, fileStem(path))
			frc := rc
			frc.opt.PlotDir = filepath.Join(baseDir, stem)

			rep, err := analyzeFile(cmd.Context(), path, frc)
			if err != nil {
				failed++
				logger.Warn("analysis failed", zap.String("path", path), zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", path, err)
				continue
			}

			if abOutputDir != "" {
				outFile := filepath.Join(abOutputDir, stem+formatExt(frc.format))
				if err := writeReportFile(rep, frc.format, outFile); err != nil {
					return err
				}
				if !abQuiet {
					fmt.Fprintf(out, "✓ Wrote analysis to %s\n", outFile)
				}
				continue
			}
			if !abQuiet {
				if err := rep.Render(out, frc.format); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed", failed, total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "write one report per file into this directory")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}

// uniqueStem returns stem, or stem__N when an earlier file already used it.
func uniqueStem(used map[string]struct{}, stem string) string {
	cand := stem
	for idx := 2; ; idx++ {
		if _, ok := used[cand]; !ok {
			used[cand] = struct{}{}
			return cand
		}
		cand = fmt.Sprintf("%s__%d", stem, idx)
	}
}
