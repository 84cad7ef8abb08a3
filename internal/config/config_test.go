package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() on missing file error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("default addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Server.MaxUploadBytes != 10<<20 {
		t.Errorf("default max upload = %d, want %d", cfg.Server.MaxUploadBytes, 10<<20)
	}
	if cfg.Examples.Dir != "example_csvs" {
		t.Errorf("default examples dir = %q, want %q", cfg.Examples.Dir, "example_csvs")
	}
	if cfg.SessionTTL() != 2*time.Hour {
		t.Errorf("default session ttl = %v, want 2h", cfg.SessionTTL())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `server:
  addr: ":9090"
examples:
  dir: "/srv/examples"
history:
  sqlite_path: "data/test.db"
session:
  ttl: "30m"
log:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Examples.Dir != "/srv/examples" {
		t.Errorf("examples dir = %q, want %q", cfg.Examples.Dir, "/srv/examples")
	}
	if cfg.History.SQLitePath != "data/test.db" {
		t.Errorf("sqlite path = %q, want %q", cfg.History.SQLitePath, "data/test.db")
	}
	if cfg.SessionTTL() != 30*time.Minute {
		t.Errorf("session ttl = %v, want 30m", cfg.SessionTTL())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DETECTOR_ADDR", ":7070")
	t.Setenv("DETECTOR_SESSION_TTL", "45m")
	t.Setenv("DETECTOR_MAX_UPLOAD_BYTES", "1024")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("addr = %q, want env override %q", cfg.Server.Addr, ":7070")
	}
	if cfg.SessionTTL() != 45*time.Minute {
		t.Errorf("session ttl = %v, want 45m", cfg.SessionTTL())
	}
	if cfg.Server.MaxUploadBytes != 1024 {
		t.Errorf("max upload = %d, want 1024", cfg.Server.MaxUploadBytes)
	}
}

func TestValidate(t *testing.T) {
	cfg, _ := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	cfg.Session.TTL = "not-a-duration"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with bad ttl expected error, got nil")
	}

	cfg.Session.TTL = "1h"
	cfg.Server.MaxUploadBytes = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() with negative upload limit expected error, got nil")
	}
}
