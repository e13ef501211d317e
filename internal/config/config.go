// Package config provides configuration management for the Galaxy demo.
//
// Settings are layered: built-in defaults, then an optional
// galaxy-config.yml, then a .env file and the process environment.
// Command line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no explicit config path is given
const DefaultConfigFile = "galaxy-config.yml"

// Environment variables read by Load
const (
	EnvGalaxyURL  = "GALAXY_URL"
	EnvAPIKey     = "GALAXY_API_KEY"
	EnvAPIKeyFile = "GALAXY_API_KEY_FILE"
	EnvHistory    = "GALAXY_HISTORY"
	EnvTool       = "GALAXY_TOOL"
	EnvLogLevel   = "GALAXY_LOG_LEVEL"
)

// Config is the complete run configuration
type Config struct {
	GalaxyURL    string        `yaml:"galaxy_url"`
	APIKey       string        `yaml:"-"`
	APIKeyFile   string        `yaml:"api_key_file"`
	HistoryName  string        `yaml:"history_name"`
	ToolName     string        `yaml:"tool_name"`
	InputFile    string        `yaml:"input_file"`
	OutputFile   string        `yaml:"output_file"`
	OutputExt    string        `yaml:"output_ext"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Sort         SortConfig    `yaml:"sort"`
	Export       ExportConfig  `yaml:"export,omitempty"`
	LogLevel     string        `yaml:"log_level"`
	LogFile      string        `yaml:"log_file,omitempty"`
}

// SortConfig holds the parameters passed to the sort tool
type SortConfig struct {
	Column string `yaml:"column"`
	Style  string `yaml:"style"`
	Order  string `yaml:"order"`
}

// ExportConfig enables loading the result into a SQL table when Driver
// is set
type ExportConfig struct {
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
	Table  string `yaml:"table,omitempty"`
}

// Defaults returns the settings of the stock demo run against the Galaxy test server
func Defaults() *Config {
	return &Config{
		GalaxyURL:    "https://test.galaxyproject.org",
		APIKeyFile:   "api-key.txt",
		HistoryName:  "myHistory",
		ToolName:     "Sort",
		InputFile:    "20240703_top80_german_cities.csv",
		OutputFile:   "./response.csv",
		OutputExt:    "csv",
		PollInterval: time.Second,
		Sort: SortConfig{
			Column: "1",
			Style:  "num",
			Order:  "ASC",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment. An empty path means DefaultConfigFile, which may be
// absent; an explicit path must exist. The result is not validated so
// that callers can overlay further settings before calling Validate.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load()

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.GalaxyURL, EnvGalaxyURL)
	setFromEnv(&c.APIKey, EnvAPIKey)
	setFromEnv(&c.APIKeyFile, EnvAPIKeyFile)
	setFromEnv(&c.HistoryName, EnvHistory)
	setFromEnv(&c.ToolName, EnvTool)
	setFromEnv(&c.LogLevel, EnvLogLevel)
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that every required setting is present
func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"galaxy_url", c.GalaxyURL},
		{"history_name", c.HistoryName},
		{"tool_name", c.ToolName},
		{"input_file", c.InputFile},
		{"output_file", c.OutputFile},
		{"output_ext", c.OutputExt},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("config: %s must be set", r.name)
		}
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("config: poll_interval must be positive, got %s", c.PollInterval)
	}

	if c.Export.Driver != "" && c.Export.DSN == "" {
		return fmt.Errorf("config: export.dsn must be set when export.driver is %q", c.Export.Driver)
	}
	return nil
}

// ResolveAPIKey returns the API key from the environment, or else reads
// it once from APIKeyFile
func (c *Config) ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(c.APIKey); key != "" {
		return key, nil
	}
	if c.APIKeyFile == "" {
		return "", fmt.Errorf("no API key: set %s or api_key_file", EnvAPIKey)
	}

	data, err := os.ReadFile(c.APIKeyFile)
	if err != nil {
		return "", fmt.Errorf("failed to read API key file: %w", err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("API key file %s is empty", c.APIKeyFile)
	}
	c.APIKey = key
	return key, nil
}

// Save writes the configuration as YAML to path
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
