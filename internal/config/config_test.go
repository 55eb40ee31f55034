package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr: %q", cfg.Server.Addr)
	}
	if cfg.API.DefaultLimit != 100 || cfg.API.MaxLimit != 1000 {
		t.Fatalf("api limits: %+v", cfg.API)
	}
	if cfg.Storage.DSN != "" {
		t.Fatalf("dsn should default empty, got %q", cfg.Storage.DSN)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  env: prod
  log_level: warn
server:
  addr: ":9090"
  cors_allowed_origins:
    - "https://app.example.com"
storage:
  dsn: "postgres://u:p@db:5432/loantrack"
  postgres:
    max_open_conns: 20
api:
  max_limit: 500
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Env != "prod" || cfg.App.LogLevel != "warn" {
		t.Fatalf("app: %+v", cfg.App)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr: %q", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("cors: %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Storage.Postgres.MaxOpenConns != 20 {
		t.Fatalf("max open conns: %d", cfg.Storage.Postgres.MaxOpenConns)
	}
	// Unset keys keep defaults.
	if cfg.API.DefaultLimit != 100 || cfg.API.MaxLimit != 500 {
		t.Fatalf("api: %+v", cfg.API)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("STORAGE_DSN", "postgres://env@db/loantrack")
	t.Setenv("SERVER_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("API_MAX_LIMIT", "250")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("addr: %q", cfg.Server.Addr)
	}
	if cfg.Storage.DSN != "postgres://env@db/loantrack" {
		t.Fatalf("dsn: %q", cfg.Storage.DSN)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 2 || cfg.Server.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("cors: %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.API.MaxLimit != 250 {
		t.Fatalf("max limit: %d", cfg.API.MaxLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
