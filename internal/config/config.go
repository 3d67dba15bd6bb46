package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/docgrep/internal/classify"
)

// defaultWorkers sizes the PDF worker pool to the machine
func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// Config represents docgrep configuration options
type Config struct {
	// Workers is the number of concurrent PDF extraction workers
	Workers int `yaml:"workers"`

	// Extensions is the text-file allowlist; entries replace the defaults
	Extensions []string `yaml:"extensions"`

	// ExcludeDirs lists directory names pruned during enumeration
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// PdftotextPath is the external extraction tool probed at startup
	PdftotextPath string `yaml:"pdftotext_path"`

	// ToolTimeout bounds a single pdftotext invocation (0 = no timeout)
	ToolTimeout time.Duration `yaml:"tool_timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables per-run log files when set
	LogDir string `yaml:"log_dir"`

	// NoColor disables colorized output
	NoColor bool `yaml:"no_color"`

	// NoBanner suppresses the startup banner
	NoBanner bool `yaml:"no_banner"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Workers:       defaultWorkers(),
		Extensions:    classify.DefaultTextExtensions(),
		ExcludeDirs:   nil,
		PdftotextPath: "pdftotext",
		ToolTimeout:   0, // No timeout, matches running the tool by hand
		LogLevel:      "info",
		LogDir:        "", // Console only unless a log dir is configured
		NoColor:       false,
		NoBanner:      false,
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, return defaults (not an error)
		return cfg, nil
	}

	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	// Use a temporary struct to handle duration parsing
	type yamlConfig struct {
		Workers       int      `yaml:"workers"`
		Extensions    []string `yaml:"extensions"`
		ExcludeDirs   []string `yaml:"exclude_dirs"`
		PdftotextPath string   `yaml:"pdftotext_path"`
		ToolTimeout   string   `yaml:"tool_timeout"`
		LogLevel      string   `yaml:"log_level"`
		LogDir        string   `yaml:"log_dir"`
		NoColor       bool     `yaml:"no_color"`
		NoBanner      bool     `yaml:"no_banner"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.Workers != 0 {
		cfg.Workers = yamlCfg.Workers
	}
	if len(yamlCfg.Extensions) > 0 {
		cfg.Extensions = yamlCfg.Extensions
	}
	if len(yamlCfg.ExcludeDirs) > 0 {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}
	if yamlCfg.PdftotextPath != "" {
		cfg.PdftotextPath = yamlCfg.PdftotextPath
	}
	if yamlCfg.ToolTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.ToolTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid tool_timeout format %q: %w", yamlCfg.ToolTimeout, err)
		}
		cfg.ToolTimeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	// NoColor is explicitly set if present in YAML
	if yamlCfg.NoColor {
		cfg.NoColor = yamlCfg.NoColor
	}
	// NoBanner is explicitly set if present in YAML
	if yamlCfg.NoBanner {
		cfg.NoBanner = yamlCfg.NoBanner
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .docgrep/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".docgrep", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
// This allows CLI flags to take precedence over config file settings
func (c *Config) MergeWithFlags(workers *int, extensions *[]string, excludeDirs *[]string, toolTimeout *time.Duration, logDir *string, logLevel *string, noColor *bool, noBanner *bool) {
	if workers != nil {
		c.Workers = *workers
	}
	if extensions != nil {
		c.Extensions = *extensions
	}
	if excludeDirs != nil {
		c.ExcludeDirs = *excludeDirs
	}
	if toolTimeout != nil {
		c.ToolTimeout = *toolTimeout
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if noColor != nil {
		c.NoColor = *noColor
	}
	if noBanner != nil {
		c.NoBanner = *noBanner
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	// Validate workers
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}

	// Validate extensions
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must list at least one text extension")
	}
	for _, ext := range c.Extensions {
		if classify.Normalize(ext) == "" {
			return fmt.Errorf("invalid empty entry in extensions")
		}
	}

	// Validate log_level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	// Validate pdftotext_path
	if c.PdftotextPath == "" {
		return fmt.Errorf("pdftotext_path cannot be empty")
	}

	// Tool timeout can be 0 (no timeout) or positive, negative is invalid
	if c.ToolTimeout < 0 {
		return fmt.Errorf("tool_timeout must be >= 0, got %v", c.ToolTimeout)
	}

	return nil
}
