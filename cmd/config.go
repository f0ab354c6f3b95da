package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesstat/internal/analysis"
	cfgpkg "github.com/KaramelBytes/salesstat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set salesstat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "input: %s\n", c.Input)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", c.Delimiter)
		}
		if c.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", c.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", c.SheetIndex)
		fmt.Fprintf(out, "plots: %t\n", c.Plots)
		fmt.Fprintf(out, "plot_dir: %s\n", c.PlotDir)
		fmt.Fprintf(out, "format: %s\n", c.Format)
		fmt.Fprintf(out, "alpha: %g\n", c.Alpha)
		fmt.Fprintf(out, "confidence: %g\n", c.Confidence)
		if c.BenchmarkEnabled {
			fmt.Fprintf(out, "benchmark: %g\n", c.Benchmark)
		} else {
			fmt.Fprintln(out, "benchmark: (sample mean)")
		}
		fmt.Fprintf(out, "keywords.sales: %s\n", strings.Join(c.Keywords.Sales, ","))
		fmt.Fprintf(out, "keywords.region: %s\n", strings.Join(c.Keywords.Region, ","))
		fmt.Fprintf(out, "keywords.product: %s\n", strings.Join(c.Keywords.Product, ","))
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "input":
			cfg.Input = val
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			cfg.Delimiter = val
		case "sheet_name":
			cfg.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for sheet_index: %v", val)
			}
			cfg.SheetIndex = i
		case "plots":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for plots: %w", err)
			}
			cfg.Plots = b
		case "plot_dir":
			cfg.PlotDir = val
		case "format":
			f, err := analysis.ParseFormat(val)
			if err != nil {
				return err
			}
			cfg.Format = string(f)
		case "alpha", "confidence":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 || f >= 1 {
				return fmt.Errorf("invalid %s: %v (must be in (0, 1))", key, val)
			}
			if key == "alpha" {
				cfg.Alpha = f
			} else {
				cfg.Confidence = f
			}
		case "benchmark":
			if strings.EqualFold(val, "off") || strings.EqualFold(val, "none") {
				cfg.BenchmarkEnabled = false
				cfg.Benchmark = 0
				break
			}
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for benchmark: %w", err)
			}
			cfg.Benchmark = f
			cfg.BenchmarkEnabled = true
		case "keywords.sales", "keywords.region", "keywords.product":
			kw := splitList(val)
			switch key {
			case "keywords.sales":
				if len(kw) == 0 {
					return fmt.Errorf("keywords.sales must not be empty")
				}
				cfg.Keywords.Sales = kw
			case "keywords.region":
				cfg.Keywords.Region = kw
			default:
				cfg.Keywords.Product = kw
			}
		case "log_level":
			cfg.LogLevel = strings.ToLower(val)
		case "log_format":
			switch strings.ToLower(val) {
			case "console", "json":
				cfg.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use console or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
