package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Retrieval.Weighting != "tfidf" {
		t.Errorf("default weighting = %q, want tfidf", cfg.Retrieval.Weighting)
	}
	if cfg.Index.Format != IndexFormatJSON {
		t.Errorf("default index format = %q", cfg.Index.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "retriever.yaml")
	yml := `
retrieval:
  weighting: binary
  workers: 2
index:
  path: /srv/index.db
  format: sqlite
redis:
  enabled: true
  cacheTTL: 30s
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VSM_WEIGHTING", "tf")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Retrieval.Weighting != "tf" {
		t.Errorf("env override not applied: %q", cfg.Retrieval.Weighting)
	}
	if cfg.Retrieval.Workers != 2 {
		t.Errorf("workers = %d, want 2", cfg.Retrieval.Workers)
	}
	if cfg.Index.Format != IndexFormatSQLite || cfg.Index.Path != "/srv/index.db" {
		t.Errorf("index = %+v", cfg.Index)
	}
	if cfg.Redis.CacheTTL != 30*time.Second {
		t.Errorf("cacheTTL = %v", cfg.Redis.CacheTTL)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("unset sections should keep defaults, postgres port = %d", cfg.Postgres.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty weighting", func(c *Config) { c.Retrieval.Weighting = " " }, "weighting"},
		{"zero workers", func(c *Config) { c.Retrieval.Workers = 0 }, "workers"},
		{"bad format", func(c *Config) { c.Index.Format = "pickle" }, "index.format"},
		{"redis without ttl", func(c *Config) { c.Redis.Enabled = true; c.Redis.CacheTTL = 0 }, "cacheTTL"},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "brokers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}
