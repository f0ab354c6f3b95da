package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/salesstat/internal/dataset"
)

// Global configuration structure.
type Global struct {
	// Input is the dataset analyzed when no file argument is given.
	Input      string `mapstructure:"input" yaml:"input"`
	Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
	SheetName  string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int    `mapstructure:"sheet_index" yaml:"sheet_index"`

	// Plot output
	Plots   bool   `mapstructure:"plots" yaml:"plots"`
	PlotDir string `mapstructure:"plot_dir" yaml:"plot_dir"`

	// Report output: text|markdown|json|yaml
	Format string `mapstructure:"format" yaml:"format"`

	// Inference
	Alpha            float64 `mapstructure:"alpha" yaml:"alpha"`
	Confidence       float64 `mapstructure:"confidence" yaml:"confidence"`
	Benchmark        float64 `mapstructure:"benchmark" yaml:"benchmark"`
	BenchmarkEnabled bool    `mapstructure:"benchmark_enabled" yaml:"benchmark_enabled"`

	Keywords dataset.Keywords `mapstructure:"keywords" yaml:"keywords"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		Input:      "Retail_Sales.csv",
		SheetIndex: 1,
		Plots:      true,
		PlotDir:    ".",
		Format:     "text",
		Alpha:      0.05,
		Confidence: 0.95,
		Keywords:   dataset.DefaultKeywords(),
		LogLevel:   "warn",
		LogFormat:  "console",
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.salesstat/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	// optional; a missing .env is not an error
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SALESSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("input", d.Input)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("sheet_name", d.SheetName)
	v.SetDefault("sheet_index", d.SheetIndex)
	v.SetDefault("plots", d.Plots)
	v.SetDefault("plot_dir", d.PlotDir)
	v.SetDefault("format", d.Format)
	v.SetDefault("alpha", d.Alpha)
	v.SetDefault("confidence", d.Confidence)
	v.SetDefault("benchmark", d.Benchmark)
	v.SetDefault("benchmark_enabled", d.BenchmarkEnabled)
	v.SetDefault("keywords.sales", d.Keywords.Sales)
	v.SetDefault("keywords.region", d.Keywords.Region)
	v.SetDefault("keywords.product", d.Keywords.Product)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks ranges that would otherwise fail deep inside the pipeline.
func (c *Global) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %v", c.Alpha)
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("confidence must be in (0, 1), got %v", c.Confidence)
	}
	switch strings.ToLower(c.Format) {
	case "text", "markdown", "md", "json", "yaml", "yml":
	default:
		return fmt.Errorf("unsupported format: %s (use text|markdown|json|yaml)", c.Format)
	}
	if len(c.Keywords.Sales) == 0 {
		return fmt.Errorf("keywords.sales must not be empty")
	}
	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".salesstat"), nil
}
