// Package config loads the on-disk .cmdschema/config.yaml configuration
// used by ci-extract and the other CLI subcommands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the cmdschema configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the cmdschema configuration directory.
const ConfigDirName = ".cmdschema"

// Config holds all cmdschema configuration.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Quality QualityConfig `yaml:"quality"`
	Output  OutputConfig  `yaml:"output"`
}

// ScanConfig controls which commands discovery considers.
type ScanConfig struct {
	Commands []string `yaml:"commands"`
	Exclude  []string `yaml:"exclude"`
	Jobs     int      `yaml:"jobs"`
}

// QualityConfig mirrors internal/quality.Policy for YAML round-tripping.
type QualityConfig struct {
	MinConfidence   float64 `yaml:"min_confidence"`
	MinCoverage     float64 `yaml:"min_coverage"`
	AllowLowQuality bool    `yaml:"allow_low_quality"`
}

// OutputConfig controls default rendering for CLI subcommands.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// ErrConfigNotFound is returned when no config file can be located.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .cmdschema/config.yaml, walking up from workDir,
// falling back to defaults if none is found.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from an explicit path, merging with defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .cmdschema directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return configDir, nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .cmdschema directory under workDir if absent.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// Validate checks that config values are within acceptable ranges.
func Validate(cfg *Config) error {
	if cfg.Quality.MinConfidence < 0 || cfg.Quality.MinConfidence > 1 {
		return fmt.Errorf("%w: quality.min_confidence must be between 0 and 1, got %f",
			ErrInvalidConfig, cfg.Quality.MinConfidence)
	}
	if cfg.Quality.MinCoverage < 0 || cfg.Quality.MinCoverage > 1 {
		return fmt.Errorf("%w: quality.min_coverage must be between 0 and 1, got %f",
			ErrInvalidConfig, cfg.Quality.MinCoverage)
	}
	if cfg.Scan.Jobs < 0 {
		return fmt.Errorf("%w: scan.jobs must be non-negative, got %d",
			ErrInvalidConfig, cfg.Scan.Jobs)
	}
	if !isValidFormat(cfg.Output.DefaultFormat) {
		return fmt.Errorf("%w: output.default_format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.DefaultFormat)
	}
	return nil
}

// ValidFormats lists the accepted values for output.default_format.
var ValidFormats = []string{"json", "yaml", "table", "markdown"}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if format == f {
			return true
		}
	}
	return false
}
