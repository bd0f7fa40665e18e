// Package config loads and validates the application configuration from
// YAML, with environment variable expansion and .env support.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docgen/internal/generator"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Generator GeneratorConfig `yaml:"generator"`
	Storage   StorageConfig   `yaml:"storage"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen        string `yaml:"listen"`
	EnableMetrics bool   `yaml:"enable_metrics"`
	// OutputDir is where rendered artifacts are written.
	OutputDir string `yaml:"output_dir"`
}

// GeneratorConfig configures the text-generation backend. Durations are
// strings in Go duration syntax ("30s", "2m").
type GeneratorConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	Timeout     string  `yaml:"timeout,omitempty"`

	Retry RetrySettings `yaml:"retry"`
}

// RetrySettings bounds the transport retry policy.
type RetrySettings struct {
	MaxAttempts int    `yaml:"max_attempts"`
	InitialWait string `yaml:"initial_wait"`
	MaxWait     string `yaml:"max_wait"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Backend is "json" or "sqlite".
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`
	// Retention controls how long untouched records are kept before the
	// janitor purges them.
	Retention     string `yaml:"retention"`
	PurgeInterval string `yaml:"purge_interval"`
}

// DefaultsConfig holds request defaults applied when the caller omits a
// field.
type DefaultsConfig struct {
	PageLimit          int    `yaml:"page_limit"`
	DocumentType       string `yaml:"document_type"`
	SectionConcurrency int    `yaml:"section_concurrency"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Load reads, expands, and validates the configuration file. A .env file
// in the working directory is loaded first, if present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file not loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand ${VAR} references so secrets stay out of the file.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.OutputDir == "" {
		c.Server.OutputDir = "./output"
	}
	if c.Generator.Provider == "" {
		c.Generator.Provider = "openai"
	}
	if c.Generator.Timeout == "" {
		c.Generator.Timeout = "120s"
	}
	if c.Generator.Retry.MaxAttempts == 0 {
		c.Generator.Retry.MaxAttempts = 3
	}
	if c.Generator.Retry.InitialWait == "" {
		c.Generator.Retry.InitialWait = "2s"
	}
	if c.Generator.Retry.MaxWait == "" {
		c.Generator.Retry.MaxWait = "30s"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "json"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "./data"
	}
	if c.Storage.Retention == "" {
		c.Storage.Retention = "720h"
	}
	if c.Storage.PurgeInterval == "" {
		c.Storage.PurgeInterval = "1h"
	}
	if c.Defaults.PageLimit == 0 {
		c.Defaults.PageLimit = 10
	}
	if c.Defaults.DocumentType == "" {
		c.Defaults.DocumentType = "slide"
	}
	if c.Defaults.SectionConcurrency == 0 {
		c.Defaults.SectionConcurrency = 3
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Generator.Provider {
	case "openai", "deepseek", "anthropic":
	default:
		return fmt.Errorf("generator.provider must be openai, deepseek, or anthropic, got %q", c.Generator.Provider)
	}
	if c.Generator.Model == "" {
		return fmt.Errorf("generator.model is required")
	}

	for name, value := range map[string]string{
		"generator.timeout":            c.Generator.Timeout,
		"generator.retry.initial_wait": c.Generator.Retry.InitialWait,
		"generator.retry.max_wait":     c.Generator.Retry.MaxWait,
		"storage.retention":            c.Storage.Retention,
		"storage.purge_interval":       c.Storage.PurgeInterval,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", name, value, err)
		}
	}

	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be json or sqlite, got %q", c.Storage.Backend)
	}

	if c.Defaults.PageLimit < 1 {
		return fmt.Errorf("defaults.page_limit must be at least 1")
	}
	if c.Defaults.SectionConcurrency < 1 {
		return fmt.Errorf("defaults.section_concurrency must be at least 1")
	}
	return nil
}

// GeneratorSettings converts the config into the generator package's
// settings. Call after Validate.
func (c *Config) GeneratorSettings() generator.Settings {
	timeout, _ := time.ParseDuration(c.Generator.Timeout)
	return generator.Settings{
		Provider:    c.Generator.Provider,
		Model:       c.Generator.Model,
		APIKey:      c.Generator.APIKey,
		BaseURL:     c.Generator.BaseURL,
		MaxTokens:   c.Generator.MaxTokens,
		Temperature: c.Generator.Temperature,
		Timeout:     timeout,
	}
}

// RetryConfig converts the retry settings. Call after Validate.
func (c *Config) RetryConfig() generator.RetryConfig {
	initial, _ := time.ParseDuration(c.Generator.Retry.InitialWait)
	maxWait, _ := time.ParseDuration(c.Generator.Retry.MaxWait)
	return generator.RetryConfig{
		MaxAttempts: c.Generator.Retry.MaxAttempts,
		InitialWait: initial,
		MaxWait:     maxWait,
	}
}

// RetentionWindow returns the parsed storage retention and purge
// interval. Call after Validate.
func (c *Config) RetentionWindow() (retention, interval time.Duration) {
	retention, _ = time.ParseDuration(c.Storage.Retention)
	interval, _ = time.ParseDuration(c.Storage.PurgeInterval)
	return retention, interval
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Server: ServerConfig{
			Listen:        ":8080",
			EnableMetrics: true,
			OutputDir:     "./output",
		},
		Generator: GeneratorConfig{
			Provider: "deepseek",
			Model:    "deepseek-chat",
			APIKey:   "${DEEPSEEK_API_KEY}",
			BaseURL:  "https://api.deepseek.com/v1",
			Timeout:  "120s",
			Retry: RetrySettings{
				MaxAttempts: 3,
				InitialWait: "2s",
				MaxWait:     "30s",
			},
		},
		Storage: StorageConfig{
			Backend:       "json",
			DataDir:       "./data",
			Retention:     "720h",
			PurgeInterval: "1h",
		},
		Defaults: DefaultsConfig{
			PageLimit:          10,
			DocumentType:       "slide",
			SectionConcurrency: 3,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
