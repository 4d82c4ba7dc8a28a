package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"LLM_PROVIDER", "LLM_MODEL", "SINKS", "LOG_LEVEL", "MANAGER_TEMPERATURE",
		"BACKGROUND_WRITER_TEMPERATURE", "BACKGROUND_WRITER_MAX_TOKENS"} {
		t.Setenv(k, "")
	}
	cfg := fromEnv()
	if cfg.Provider != ProviderOpenAI || cfg.Model != "gpt-4.1-mini" {
		t.Fatalf("unexpected llm defaults %s/%s", cfg.Provider, cfg.Model)
	}
	if cfg.ManagerTemperature != 1.0 || cfg.PatientManagerMaxTokens != 300 {
		t.Fatalf("unexpected manager defaults %+v", cfg)
	}
	if p := cfg.BackgroundParams(); p.Temperature == nil || *p.Temperature != 1.0 || p.MaxTokens != 1000 {
		t.Fatalf("unexpected background writer defaults %+v", p)
	}
	if len(cfg.Sinks) != 1 || cfg.Sinks[0] != "file" {
		t.Fatalf("expected file sink by default, got %v", cfg.Sinks)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPrecedence(t *testing.T) {
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("LLM_MAX_TOKENS", "512")
	t.Setenv("SINKS", "file, sqlite")
	t.Setenv("RANDOM_TEMPERATURE", "true")
	t.Setenv("BACKGROUND_WRITER_TEMPERATURE", "0.7")

	cfg := fromEnv()
	if cfg.Model != "gpt-4o" || cfg.MaxTokens != 512 || !cfg.RandomTemperature {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if len(cfg.Sinks) != 2 || cfg.Sinks[1] != "sqlite" {
		t.Fatalf("expected trimmed sink list, got %v", cfg.Sinks)
	}

	path := filepath.Join(t.TempDir(), "datagen.yaml")
	content := "model: gpt-4.1\nlog_level: heavy\nbackground_max_tokens: 800\nredis_ttl: 90s\nkafka_brokers:\n  - a:9092\n  - b:9092\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "gpt-4.1" || cfg.LogLevel != "heavy" {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if p := cfg.BackgroundParams(); *p.Temperature != 0.7 || p.MaxTokens != 800 {
		t.Fatalf("expected background writer settings from env and yaml, got %+v", p)
	}
	if cfg.MaxTokens != 512 {
		t.Fatalf("expected env value kept for keys absent from yaml, got %d", cfg.MaxTokens)
	}
	if cfg.RedisTTL != 90*time.Second || len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("unexpected redis/kafka settings %v %v", cfg.RedisTTL, cfg.KafkaBrokers)
	}

	// Flags are applied by the command after LoadFile.
	cfg.Model = "gpt-5-mini"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := cfg.EngineParams(); p.Model != "gpt-5-mini" || p.MaxTokens != 512 || !p.RandomTemperature {
		t.Fatalf("unexpected engine params %+v", p)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := fromEnv()
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"gemini", func(c *Config) { c.Provider, c.Model = ProviderGemini, "gemini-2.5-flash" }, false},
		{"gemini with openai model", func(c *Config) { c.Provider = ProviderGemini }, true},
		{"unknown provider", func(c *Config) { c.Provider = "anthropic" }, true},
		{"unknown model", func(c *Config) { c.Model = "gpt-3" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"logrus level", func(c *Config) { c.LogLevel = "warn" }, false},
		{"unknown sink", func(c *Config) { c.Sinks = []string{"file", "s3"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Provider: ProviderOpenAI, Model: "gpt-4.1-mini", LogLevel: "minimal", Sinks: []string{"file"}}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
