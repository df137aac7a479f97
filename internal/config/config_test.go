package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/harrison/docparser/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docparser.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Default != "openai" {
		t.Errorf("Default = %q, want openai", cfg.Default)
	}
	if cfg.Detection.Level != 2 {
		t.Errorf("Detection.Level = %d, want 2", cfg.Detection.Level)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Workers)
	}
	if !cfg.Fallback.Enabled {
		t.Error("fallback should be enabled by default")
	}

	for _, id := range KnownProviders {
		pc, ok := cfg.Providers[id]
		if !ok {
			t.Fatalf("provider %s missing from defaults", id)
		}
		if pc.Timeout <= 0 {
			t.Errorf("provider %s has no timeout", id)
		}
	}

	if cfg.Providers["ollama"].Enabled {
		t.Error("ollama should be disabled by default")
	}
	if cfg.Providers["ollama"].Host != "http://localhost:11434" {
		t.Errorf("ollama host = %q", cfg.Providers["ollama"].Host)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must yield defaults, got %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Error("missing file should return the default configuration")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "ai_providers:\n\t- tabs are not yaml")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !models.IsConfigError(err) {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := writeConfig(t, `
ai_providers:
  default: anthropic
  openai:
    model: gpt-4o
    timeout: 45s
  ollama:
    enabled: true
    host: http://gpu-box:11434
workers: 4
log_level: debug
project_detection:
  level: 3
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Default != "anthropic" {
		t.Errorf("Default = %q, want anthropic", cfg.Default)
	}
	if cfg.Providers["openai"].Model != "gpt-4o" {
		t.Errorf("openai model = %q", cfg.Providers["openai"].Model)
	}
	if cfg.Providers["openai"].Timeout != 45*time.Second {
		t.Errorf("openai timeout = %v, want 45s", cfg.Providers["openai"].Timeout)
	}
	// Fields not present in the file keep their defaults.
	if cfg.Providers["openai"].APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("openai api_key_env lost its default: %q", cfg.Providers["openai"].APIKeyEnv)
	}
	if cfg.Providers["openai"].Temperature != 0.3 {
		t.Errorf("openai temperature lost its default: %g", cfg.Providers["openai"].Temperature)
	}
	if !cfg.Providers["ollama"].Enabled {
		t.Error("ollama enabled override not applied")
	}
	if cfg.Providers["ollama"].Host != "http://gpu-box:11434" {
		t.Errorf("ollama host = %q", cfg.Providers["ollama"].Host)
	}
	if cfg.Workers != 4 || cfg.LogLevel != "debug" || cfg.Detection.Level != 3 {
		t.Errorf("top-level overrides not applied: workers=%d log=%s level=%d",
			cfg.Workers, cfg.LogLevel, cfg.Detection.Level)
	}
}

func TestLoadConfigBadTimeout(t *testing.T) {
	path := writeConfig(t, `
ai_providers:
  openai:
    timeout: soon
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()

	provider := "gemini"
	level := 4
	logLevel := "trace"
	workers := 8
	cfg.MergeWithFlags(&provider, &level, &logLevel, &workers)

	if cfg.Default != "gemini" || cfg.Detection.Level != 4 || cfg.LogLevel != "trace" || cfg.Workers != 8 {
		t.Errorf("flags not merged: %+v", cfg)
	}

	// Nil pointers leave values untouched.
	cfg.MergeWithFlags(nil, nil, nil, nil)
	if cfg.Default != "gemini" || cfg.Detection.Level != 4 {
		t.Error("nil flags must not reset values")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"level zero", func(c *Config) { c.Detection.Level = 0 }, "project_detection.level"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"unknown default", func(c *Config) { c.Default = "watson" }, "ai_providers.default"},
		{"temperature out of range", func(c *Config) {
			pc := c.Providers["openai"]
			pc.Temperature = 3
			c.Providers["openai"] = pc
		}, "temperature"},
		{"top_p out of range", func(c *Config) {
			pc := c.Providers["openai"]
			pc.TopP = 1.5
			c.Providers["openai"] = pc
		}, "top_p"},
		{"repetition penalty out of range", func(c *Config) {
			pc := c.Providers["replicate"]
			pc.RepetitionPenalty = 0.1
			c.Providers["replicate"] = pc
		}, "repetition_penalty"},
		{"fallback references unknown provider", func(c *Config) {
			c.Fallback.Order = append(c.Fallback.Order, "watson")
		}, "fallback.order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
			if !models.IsConfigError(err) {
				t.Errorf("expected ConfigError, got %T", err)
			}
		})
	}
}

func TestCredential(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("OPENAI_API_KEY", "sk-live")
	if got := cfg.Credential("openai"); got != "sk-live" {
		t.Errorf("Credential(openai) = %q", got)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	if got := cfg.Credential("anthropic"); got != "" {
		t.Errorf("Credential(anthropic) = %q, want empty", got)
	}

	// ollama has no APIKeyEnv; resolution is always empty.
	if got := cfg.Credential("ollama"); got != "" {
		t.Errorf("Credential(ollama) = %q, want empty", got)
	}
	if got := cfg.Credential("watson"); got != "" {
		t.Errorf("Credential(watson) = %q, want empty", got)
	}
}

func TestChain(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []string
	}{
		{
			"default order",
			func(c *Config) {},
			[]string{"openai", "anthropic", "gemini", "replicate", "ollama"},
		},
		{
			"default moves to head",
			func(c *Config) { c.Default = "gemini" },
			[]string{"gemini", "openai", "anthropic", "replicate", "ollama"},
		},
		{
			"default not in order is ignored as head",
			func(c *Config) {
				c.Default = "gemini"
				c.Fallback.Order = []string{"openai", "anthropic"}
			},
			[]string{"openai", "anthropic"},
		},
		{
			"fallback disabled keeps only default",
			func(c *Config) { c.Fallback.Enabled = false },
			[]string{"openai"},
		},
		{
			"fallback disabled with no default",
			func(c *Config) {
				c.Fallback.Enabled = false
				c.Default = ""
			},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			got := cfg.Chain()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Chain() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProviderIDsSorted(t *testing.T) {
	ids := DefaultConfig().ProviderIDs()
	want := []string{"anthropic", "gemini", "ollama", "openai", "replicate"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ProviderIDs() = %v, want %v", ids, want)
	}
}
