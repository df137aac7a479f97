// Package config loads and validates docparser configuration from YAML,
// merging CLI flag overrides on top of file values.
package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/docparser/internal/models"
)

// ProviderConfig holds the per-provider AI settings. Credentials are
// referenced by environment variable name, never stored as literal values.
type ProviderConfig struct {
	// Enabled controls whether the provider participates in the chain.
	Enabled bool `yaml:"enabled"`

	// APIKeyEnv names the environment variable holding the credential.
	// An empty resolution makes the provider unusable, not an error.
	APIKeyEnv string `yaml:"api_key_env"`

	// Host is the endpoint for local providers (ollama). Ignored by
	// hosted providers.
	Host string `yaml:"host"`

	// Model is the provider-specific model identifier.
	Model string `yaml:"model"`

	// MaxTokens bounds generation length (1..32768).
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls sampling randomness (0..2).
	Temperature float64 `yaml:"temperature"`

	// TopP is the nucleus sampling cutoff (0..1, 0 = provider default).
	TopP float64 `yaml:"top_p"`

	// RepetitionPenalty discourages repeats (0 or 0.5..2).
	RepetitionPenalty float64 `yaml:"repetition_penalty"`

	// Timeout bounds each request to this provider.
	Timeout time.Duration `yaml:"-"`
}

// FallbackConfig is the ordered provider fallback chain.
type FallbackConfig struct {
	Enabled bool     `yaml:"enabled"`
	Order   []string `yaml:"order"`
}

// DetectionConfig controls project grouping.
type DetectionConfig struct {
	// Level is the directory depth at which project boundaries are
	// drawn. Must be a positive integer.
	Level int `yaml:"level"`
}

// Config represents docparser configuration options.
type Config struct {
	// Default is the provider attempted first when present in the chain.
	Default string

	// Providers maps provider id to its settings.
	Providers map[string]ProviderConfig

	// Fallback is the provider fallback chain.
	Fallback FallbackConfig

	// Detection controls project detection.
	Detection DetectionConfig

	// LogLevel sets logging verbosity (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Workers bounds concurrent document-level AI calls (1 = sequential).
	Workers int `yaml:"workers"`
}

// KnownProviders lists the provider identifiers the gateway implements.
var KnownProviders = []string{"openai", "anthropic", "gemini", "replicate", "ollama"}

// DefaultConfig returns a Config with sensible default values. All hosted
// providers are enabled but unusable until their credential is set; ollama
// is enabled against the conventional local endpoint.
func DefaultConfig() *Config {
	return &Config{
		Default: "openai",
		Providers: map[string]ProviderConfig{
			"openai": {
				Enabled:     true,
				APIKeyEnv:   "OPENAI_API_KEY",
				Model:       "gpt-4o-mini",
				MaxTokens:   1000,
				Temperature: 0.3,
				TopP:        0.9,
				Timeout:     30 * time.Second,
			},
			"anthropic": {
				Enabled:     true,
				APIKeyEnv:   "ANTHROPIC_API_KEY",
				Model:       "claude-3-5-haiku-latest",
				MaxTokens:   1000,
				Temperature: 0.3,
				Timeout:     30 * time.Second,
			},
			"gemini": {
				Enabled:     true,
				APIKeyEnv:   "GEMINI_API_KEY",
				Model:       "gemini-1.5-flash",
				MaxTokens:   1000,
				Temperature: 0.3,
				Timeout:     30 * time.Second,
			},
			"replicate": {
				Enabled:           true,
				APIKeyEnv:         "REPLICATE_API_TOKEN",
				Model:             "meta/meta-llama-3-8b-instruct",
				MaxTokens:         1000,
				Temperature:       0.3,
				TopP:              0.9,
				RepetitionPenalty: 1.1,
				Timeout:           60 * time.Second,
			},
			"ollama": {
				Enabled:     false,
				Host:        "http://localhost:11434",
				Model:       "llama3",
				MaxTokens:   1000,
				Temperature: 0.3,
				Timeout:     60 * time.Second,
			},
		},
		Fallback: FallbackConfig{
			Enabled: true,
			Order:   []string{"openai", "anthropic", "gemini", "replicate", "ollama"},
		},
		Detection: DetectionConfig{Level: 2},
		LogLevel:  "info",
		Workers:   1,
	}
}

// yamlProvider mirrors ProviderConfig with the timeout as a duration string.
type yamlProvider struct {
	Enabled           *bool    `yaml:"enabled"`
	APIKeyEnv         string   `yaml:"api_key_env"`
	Host              string   `yaml:"host"`
	Model             string   `yaml:"model"`
	MaxTokens         int      `yaml:"max_tokens"`
	Temperature       *float64 `yaml:"temperature"`
	TopP              *float64 `yaml:"top_p"`
	RepetitionPenalty *float64 `yaml:"repetition_penalty"`
	Timeout           string   `yaml:"timeout"`
}

type yamlConfig struct {
	AIProviders map[string]yaml.Node `yaml:"ai_providers"`
	Fallback    *FallbackConfig      `yaml:"fallback"`
	Detection   *DetectionConfig     `yaml:"project_detection"`
	LogLevel    string               `yaml:"log_level"`
	Workers     int                  `yaml:"workers"`
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns a ConfigError.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewConfigError("file", "failed to read config file", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, models.NewConfigError("file", "failed to parse config file", err)
	}

	for key, node := range yamlCfg.AIProviders {
		if key == "default" {
			var def string
			if err := node.Decode(&def); err != nil {
				return nil, models.NewConfigError("ai_providers.default", "must be a provider id", err)
			}
			cfg.Default = def
			continue
		}

		var yp yamlProvider
		if err := node.Decode(&yp); err != nil {
			return nil, models.NewConfigError("ai_providers."+key, "malformed provider block", err)
		}

		pc := cfg.Providers[key] // zero value for unknown providers
		if yp.Enabled != nil {
			pc.Enabled = *yp.Enabled
		}
		if yp.APIKeyEnv != "" {
			pc.APIKeyEnv = yp.APIKeyEnv
		}
		if yp.Host != "" {
			pc.Host = yp.Host
		}
		if yp.Model != "" {
			pc.Model = yp.Model
		}
		if yp.MaxTokens != 0 {
			pc.MaxTokens = yp.MaxTokens
		}
		if yp.Temperature != nil {
			pc.Temperature = *yp.Temperature
		}
		if yp.TopP != nil {
			pc.TopP = *yp.TopP
		}
		if yp.RepetitionPenalty != nil {
			pc.RepetitionPenalty = *yp.RepetitionPenalty
		}
		if yp.Timeout != "" {
			timeout, err := time.ParseDuration(yp.Timeout)
			if err != nil {
				return nil, models.NewConfigError("ai_providers."+key+".timeout",
					fmt.Sprintf("invalid duration %q", yp.Timeout), err)
			}
			pc.Timeout = timeout
		}
		if pc.Timeout == 0 {
			pc.Timeout = 30 * time.Second
		}
		cfg.Providers[key] = pc
	}

	if yamlCfg.Fallback != nil {
		cfg.Fallback = *yamlCfg.Fallback
	}
	if yamlCfg.Detection != nil {
		cfg.Detection = *yamlCfg.Detection
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Workers != 0 {
		cfg.Workers = yamlCfg.Workers
	}

	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(provider *string, level *int, logLevel *string, workers *int) {
	if provider != nil {
		c.Default = *provider
	}
	if level != nil {
		c.Detection.Level = *level
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if workers != nil {
		c.Workers = *workers
	}
}

// Validate validates the configuration values eagerly at load time.
// Returns a ConfigError if any values are invalid.
func (c *Config) Validate() error {
	if c.Detection.Level < 1 {
		return models.NewConfigError("project_detection.level",
			fmt.Sprintf("must be a positive integer, got %d", c.Detection.Level), nil)
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.LogLevel] {
		return models.NewConfigError("log_level",
			fmt.Sprintf("invalid level %q, must be one of: trace, debug, info, warn, error", c.LogLevel), nil)
	}

	if c.Workers < 1 {
		return models.NewConfigError("workers",
			fmt.Sprintf("must be >= 1, got %d", c.Workers), nil)
	}

	if c.Default != "" {
		if _, ok := c.Providers[c.Default]; !ok {
			return models.NewConfigError("ai_providers.default",
				fmt.Sprintf("references unknown provider %q", c.Default), nil)
		}
	}

	for id, pc := range c.Providers {
		field := "ai_providers." + id
		if pc.MaxTokens < 0 || pc.MaxTokens > 32768 {
			return models.NewConfigError(field+".max_tokens",
				fmt.Sprintf("must be in [0, 32768], got %d", pc.MaxTokens), nil)
		}
		if pc.Temperature < 0 || pc.Temperature > 2 {
			return models.NewConfigError(field+".temperature",
				fmt.Sprintf("must be in [0, 2], got %g", pc.Temperature), nil)
		}
		if pc.TopP < 0 || pc.TopP > 1 {
			return models.NewConfigError(field+".top_p",
				fmt.Sprintf("must be in [0, 1], got %g", pc.TopP), nil)
		}
		if pc.RepetitionPenalty != 0 && (pc.RepetitionPenalty < 0.5 || pc.RepetitionPenalty > 2) {
			return models.NewConfigError(field+".repetition_penalty",
				fmt.Sprintf("must be 0 or in [0.5, 2], got %g", pc.RepetitionPenalty), nil)
		}
		if pc.Timeout < 0 {
			return models.NewConfigError(field+".timeout",
				fmt.Sprintf("must be >= 0, got %v", pc.Timeout), nil)
		}
	}

	for _, id := range c.Fallback.Order {
		if _, ok := c.Providers[id]; !ok {
			return models.NewConfigError("fallback.order",
				fmt.Sprintf("references unconfigured provider %q", id), nil)
		}
	}

	return nil
}

// Credential resolves the provider's credential from the environment.
// Empty means the provider is unusable, never an error.
func (c *Config) Credential(id string) string {
	pc, ok := c.Providers[id]
	if !ok || pc.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(pc.APIKeyEnv)
}

// Chain returns the effective fallback chain: the configured order with
// the default provider, when present, moved to the head. An empty slice
// means AI enrichment is a no-op.
func (c *Config) Chain() []string {
	if !c.Fallback.Enabled {
		if c.Default != "" {
			return []string{c.Default}
		}
		return nil
	}

	chain := make([]string, 0, len(c.Fallback.Order))
	if c.Default != "" {
		for _, id := range c.Fallback.Order {
			if id == c.Default {
				chain = append(chain, id)
				break
			}
		}
	}
	for _, id := range c.Fallback.Order {
		if id != c.Default || len(chain) == 0 {
			chain = append(chain, id)
		}
	}
	return chain
}

// ProviderIDs returns the configured provider ids in sorted order.
func (c *Config) ProviderIDs() []string {
	ids := make([]string, 0, len(c.Providers))
	for id := range c.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
