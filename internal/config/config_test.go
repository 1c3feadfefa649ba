package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider openai, got %s", cfg.Provider)
	}
	if cfg.Classifier != ClassifierHybrid {
		t.Errorf("expected default classifier hybrid, got %s", cfg.Classifier)
	}
	if cfg.Session.TTLSeconds != 3600 {
		t.Errorf("expected default session TTL 3600, got %d", cfg.Session.TTLSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", cfg.Model)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".finbot.yml")
	content := []byte(`
provider: ollama
model: llama3
classifier: keyword
server:
  port: 9000
session:
  ttl_seconds: 120
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderOllama {
		t.Errorf("expected provider ollama, got %s", cfg.Provider)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Session.TTLSeconds != 120 {
		t.Errorf("expected ttl 120, got %d", cfg.Session.TTLSeconds)
	}
	// Untouched values keep defaults.
	if cfg.Search.TopK != 5 {
		t.Errorf("expected default top_k 5, got %d", cfg.Search.TopK)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FINBOT_MODEL", "gpt-4o")
	t.Setenv("FINBOT_SERVER_PORT", "7777")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("expected env model override, got %q", cfg.Model)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected env port override, got %d", cfg.Server.Port)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"unknown provider", func(c *Config) { c.Provider = "groq" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"unknown classifier", func(c *Config) { c.Classifier = "bayes" }},
		{"negative ttl", func(c *Config) { c.Session.TTLSeconds = -1 }},
		{"negative workers", func(c *Config) { c.Tasks.Workers = -2 }},
		{"topk above max", func(c *Config) { c.Search.TopK = 100; c.Search.MaxTopK = 50 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".finbot.yml")

	cfg := DefaultConfig()
	cfg.Model = "gpt-4o"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Model != "gpt-4o" {
		t.Errorf("expected saved model gpt-4o, got %q", loaded.Model)
	}
}
