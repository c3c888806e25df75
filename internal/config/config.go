package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	// InputDir holds the calibrated exposures named by association
	// members.
	InputDir string `yaml:"input_dir" envconfig:"INPUT_DIR"`
	// OutputDir receives every persisted product.
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
}

// PipelineConfig contains pipeline execution configuration.
type PipelineConfig struct {
	// SaveAverages writes per-role averaged products to disk in
	// addition to using them for normalization.
	SaveAverages bool `yaml:"save_averages" envconfig:"SAVE_AVERAGES"`
	// AnalyzeConcurrency bounds parallel fringe analysis; 1 means
	// sequential.
	AnalyzeConcurrency int `yaml:"analyze_concurrency" envconfig:"ANALYZE_CONCURRENCY"`
	// OutputBase names aggregate products when the association product
	// has no name of its own.
	OutputBase string `yaml:"output_base" envconfig:"OUTPUT_BASE"`
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/ami3.log",
		},
		Paths: PathsConfig{
			InputDir:  "data/inputs",
			OutputDir: "data/products",
		},
		Pipeline: PipelineConfig{
			SaveAverages:       false,
			AnalyzeConcurrency: 1,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and environment overrides with the AMI3 prefix, in that precedence
// order (environment wins). An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("AMI3", &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output %q", c.Logging.Output)
	}
	if c.Pipeline.AnalyzeConcurrency < 1 {
		return fmt.Errorf("analyze_concurrency must be at least 1, got %d", c.Pipeline.AnalyzeConcurrency)
	}
	return nil
}
