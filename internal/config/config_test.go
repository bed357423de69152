package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sesloc.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile_AppliesValues(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: https://backend.example/api
  timeout: 10s
database:
  path: /tmp/q.db
logger:
  created_by: crew-7
  view_only: true
log:
  level: debug
  format: text
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Backend.URL != "https://backend.example/api" {
		t.Errorf("backend URL not loaded: %q", cfg.Backend.URL)
	}
	if time.Duration(cfg.Backend.Timeout) != 10*time.Second {
		t.Errorf("timeout not parsed: %v", cfg.Backend.Timeout)
	}
	if cfg.Database.Path != "/tmp/q.db" {
		t.Errorf("db path not loaded: %q", cfg.Database.Path)
	}
	if cfg.Logger.CreatedBy != "crew-7" || !cfg.Logger.ViewOnly {
		t.Errorf("logger section not loaded: %+v", cfg.Logger)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log section not loaded: %+v", cfg.Log)
	}
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: https://backend.example/api
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if time.Duration(cfg.Backend.Timeout) != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Backend.Timeout)
	}
	if cfg.Database.Path != "data/sesloc.db" {
		t.Errorf("expected default db path, got %q", cfg.Database.Path)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("expected default log settings, got %+v", cfg.Log)
	}
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
backend:
  url: https://file.example
`)

	t.Setenv("SESLOC_BACKEND_URL", "https://env.example")
	t.Setenv("SESLOC_TOKEN", "secret")
	t.Setenv("SESLOC_DB_PATH", "/tmp/env.db")
	t.Setenv("SESLOC_VIEW_ONLY", "1")

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Backend.URL != "https://env.example" {
		t.Errorf("env should override file, got %q", cfg.Backend.URL)
	}
	if cfg.Backend.Token != "secret" {
		t.Errorf("token must come from env, got %q", cfg.Backend.Token)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("env db path not applied: %q", cfg.Database.Path)
	}
	if !cfg.Logger.ViewOnly {
		t.Error("SESLOC_VIEW_ONLY=1 not applied")
	}
}

func TestLoadFromFile_RequiresBackendURL(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/q.db
`)

	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected missing backend URL to be an error")
	}
}

func TestWriteEnabled(t *testing.T) {
	cfg := &Config{}
	if cfg.WriteEnabled() {
		t.Error("no token must mean no writes")
	}

	cfg.Backend.Token = "secret"
	if !cfg.WriteEnabled() {
		t.Error("token present should enable writes")
	}

	cfg.Logger.ViewOnly = true
	if cfg.WriteEnabled() {
		t.Error("view-only must disable writes even with a token")
	}
}
