package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("READ_TIMEOUT", "10s")
	t.Setenv("REQUEST_DELAY_MS", "1000")
	t.Setenv("DEFAULT_LANGUAGES", "de, en ,,")
	t.Setenv("PRESERVE_FORMATTING", "true")
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("CACHE_TTL", "2h")

	cfg := LoadConfig()

	if cfg.ServerPort != "9090" {
		t.Errorf("expected 9090, got %s", cfg.ServerPort)
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Errorf("expected 10s, got %s", cfg.ReadTimeout)
	}
	if cfg.RequestDelay() != time.Second {
		t.Errorf("expected 1s delay, got %s", cfg.RequestDelay())
	}
	if len(cfg.DefaultLanguages) != 2 || cfg.DefaultLanguages[0] != "de" || cfg.DefaultLanguages[1] != "en" {
		t.Errorf("expected [de en], got %v", cfg.DefaultLanguages)
	}
	if !cfg.PreserveFormatting {
		t.Error("expected preserve formatting")
	}
	if cfg.RateLimit != 10 {
		t.Errorf("expected 10, got %d", cfg.RateLimit)
	}
	if cfg.CacheTTL != 2*time.Hour {
		t.Errorf("expected 2h, got %s", cfg.CacheTTL)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.RequestDelay() != 500*time.Millisecond {
		t.Errorf("expected 500ms default delay, got %s", cfg.RequestDelay())
	}
	if cfg.AcceptLanguage != "en-US" {
		t.Errorf("expected en-US, got %s", cfg.AcceptLanguage)
	}
	if len(cfg.DefaultLanguages) != 1 || cfg.DefaultLanguages[0] != "en" {
		t.Errorf("expected [en], got %v", cfg.DefaultLanguages)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT", "many")
	t.Setenv("CACHE_ENABLED", "perhaps")

	cfg := LoadConfig()

	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("expected default 30s, got %s", cfg.ReadTimeout)
	}
	if cfg.RateLimit != 5 {
		t.Errorf("expected default 5, got %d", cfg.RateLimit)
	}
	if !cfg.CacheEnabled {
		t.Error("expected cache enabled by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server_port: "7070"
request_delay_ms: 250
request_timeout: 90s
default_languages: [fr, en]
spaces:
  enabled: true
  bucket: transcripts
  endpoint: https://ams3.digitaloceanspaces.com
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.ServerPort != "7070" {
		t.Errorf("expected 7070, got %s", cfg.ServerPort)
	}
	if cfg.RequestDelay() != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.RequestDelay())
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Errorf("expected 90s, got %s", cfg.RequestTimeout)
	}
	if len(cfg.DefaultLanguages) != 2 || cfg.DefaultLanguages[0] != "fr" {
		t.Errorf("expected [fr en], got %v", cfg.DefaultLanguages)
	}
	if !cfg.Spaces.Enabled || cfg.Spaces.Bucket != "transcripts" {
		t.Errorf("unexpected spaces config %+v", cfg.Spaces)
	}
	if cfg.AcceptLanguage != "en-US" {
		t.Errorf("keys missing from the file should keep their value, got %s", cfg.AcceptLanguage)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), LoadConfig()); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("request_timeout: [nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadFile(path, LoadConfig()); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no port", func(c *Config) { c.ServerPort = "" }, true},
		{"negative delay", func(c *Config) { c.RequestDelayMS = -1 }, true},
		{"zero delay", func(c *Config) { c.RequestDelayMS = 0 }, false},
		{"no languages", func(c *Config) { c.DefaultLanguages = nil }, true},
		{"cache without db", func(c *Config) { c.DBPath = "" }, true},
		{"cache disabled without db", func(c *Config) { c.CacheEnabled = false; c.DBPath = "" }, false},
		{"spaces without bucket", func(c *Config) { c.Spaces.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			if err := ValidateConfig(cfg); (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
