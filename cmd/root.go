package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/salesstat/internal/config"
	"github.com/KaramelBytes/salesstat/internal/logging"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Shared logger, writes to stderr
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "salesstat",
	Short: "salesstat: statistical analysis of sales datasets",
	Long: `salesstat loads a sales table (CSV, TSV or XLSX), detects its sales, region and
product columns, and reports descriptive statistics, normality, correlations,
hypothesis tests and a confidence interval for mean sales.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.salesstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log encoding: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	level, format := cfg.LogLevel, cfg.LogFormat
	if debug {
		level = "debug"
	}
	if logFormat != "" {
		format = logFormat
	}
	l, err := logging.New(level, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger = l
}

// currentConfig returns the loaded configuration, loading it on first use
// and falling back to defaults.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			logger.Warn("using default config", zap.Error(err))
			c = cfgpkg.Default()
		}
		cfg = c
	}
	return cfg
}
