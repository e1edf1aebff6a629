// Package config loads and validates the housing-dpe parameter file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "git.home.luguber.info/inful/housing-dpe/internal/errors"
)

// Config represents the full application configuration.
type Config struct {
	Seed    int64         `yaml:"seed"`
	NRows   int           `yaml:"n_rows"`
	Model   ModelConfig   `yaml:"model"`
	Output  OutputConfig  `yaml:"output"`
	Paper   PaperConfig   `yaml:"paper"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	State   StateConfig   `yaml:"state,omitempty"`
}

// ModelConfig describes the estimation model.
type ModelConfig struct {
	Formula string  `yaml:"formula"`
	CovType CovType `yaml:"cov_type"`
}

// OutputConfig describes where pipeline artifacts are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// PaperConfig describes the LaTeX paper build.
type PaperConfig struct {
	Document string `yaml:"document"` // main .tex file
	BuildDir string `yaml:"build_dir"`
	Latexmk  string `yaml:"latexmk,omitempty"` // latexmk binary override
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// WatchConfig controls watch mode behavior.
type WatchConfig struct {
	Debounce      Duration `yaml:"debounce,omitempty"`
	Interval      Duration `yaml:"interval,omitempty"` // 0 disables scheduled re-runs
	MetricsListen string   `yaml:"metrics_listen,omitempty"`
}

// StateConfig controls the run history store.
type StateConfig struct {
	Directory string `yaml:"directory,omitempty"`
	Disabled  bool   `yaml:"disabled,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, apperrors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.CategoryConfig, "read config file")
	}

	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, apperrors.WrapError(err, apperrors.CategoryConfig, "unmarshal config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Model.Formula == "" {
		c.Model.Formula = "y ~ treat + x"
	}
	if c.Model.CovType == "" {
		c.Model.CovType = CovCluster
	} else if ct, ok := LookupCovType(string(c.Model.CovType)); ok {
		// Canonicalize aliases such as "hc1", "robust", or "clustered".
		c.Model.CovType = ct
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "outputs"
	}
	if c.Paper.Document == "" {
		c.Paper.Document = "paper/main.tex"
	}
	if c.Paper.BuildDir == "" {
		c.Paper.BuildDir = "paper/build"
	}
	if c.Paper.Latexmk == "" {
		c.Paper.Latexmk = "latexmk"
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = Duration(2 * time.Second)
	}
	if c.State.Directory == "" {
		c.State.Directory = ".housing-dpe"
	}
}

// Validate checks configuration invariants after defaults are applied.
func (c *Config) Validate() error {
	if c.Seed < 0 {
		return apperrors.ConfigError("seed must be non-negative").WithContext("seed", c.Seed)
	}
	if c.NRows <= 0 {
		return apperrors.ConfigError("n_rows must be positive").WithContext("n_rows", c.NRows)
	}
	if NormalizeCovType(string(c.Model.CovType)) != c.Model.CovType {
		return apperrors.ConfigError(fmt.Sprintf("unsupported cov_type: %s", c.Model.CovType))
	}
	return nil
}

const exampleConfig = `# housing-dpe parameters
seed: 42
n_rows: 5000

model:
  formula: "y ~ treat + x"
  cov_type: cluster

output:
  directory: outputs

paper:
  document: paper/main.tex
  build_dir: paper/build
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return apperrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath))
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return apperrors.WrapError(err, apperrors.CategoryConfig, "write config file")
	}
	return nil
}
