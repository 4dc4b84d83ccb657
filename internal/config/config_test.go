package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_Minimal(t *testing.T) {
	cfg, err := Parse([]byte("auth:\n  secret: test-secret\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("Listen = %q, want :8080", cfg.Listen)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.Path != "boardhub.db" {
		t.Errorf("Path = %q, want boardhub.db", cfg.Database.Path)
	}
	if cfg.Renorm.Schedule != "@every 24h" {
		t.Errorf("Renorm.Schedule = %q", cfg.Renorm.Schedule)
	}
}

func TestParse_MySQLDefaults(t *testing.T) {
	yaml := `
auth:
  secret: x
database:
  driver: mysql
  name: boardhub_prod
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Database.Host != "127.0.0.1" || cfg.Database.Port != 3306 || cfg.Database.User != "root" {
		t.Errorf("mysql defaults = %s:%d user %s", cfg.Database.Host, cfg.Database.Port, cfg.Database.User)
	}
}

func TestParse_MissingSecret(t *testing.T) {
	t.Setenv("BOARDHUB_AUTH_SECRET", "")
	_, err := Parse([]byte("listen: ':9090'\n"))
	if err == nil {
		t.Fatal("expected validation error for missing secret")
	}
	if !strings.Contains(err.Error(), "auth.secret") {
		t.Errorf("error = %v, want mention of auth.secret", err)
	}
}

func TestParse_UnsupportedDriver(t *testing.T) {
	_, err := Parse([]byte("auth:\n  secret: x\ndatabase:\n  driver: mongo\n"))
	if err == nil {
		t.Fatal("expected validation error for unsupported driver")
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("BOARDHUB_AUTH_SECRET", "env-secret")
	t.Setenv("BOARDHUB_TOKEN", "env-token")

	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Auth.Secret != "env-secret" {
		t.Errorf("Auth.Secret = %q", cfg.Auth.Secret)
	}
	if cfg.Client.Token != "env-token" {
		t.Errorf("Client.Token = %q", cfg.Client.Token)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boardhub.yaml")
	content := "listen: ':9191'\nauth:\n  secret: file-secret\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9191" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
