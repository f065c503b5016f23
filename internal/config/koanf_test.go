// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// isolateEnv points CONFIG_PATH at a missing file and moves the working
// directory so that no stray config.yaml is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Storage.SaveInterval != 5*time.Minute {
		t.Errorf("Storage.SaveInterval = %v, want 5m", cfg.Storage.SaveInterval)
	}
	if cfg.Storage.MaxUploadBytes != 10<<20 {
		t.Errorf("Storage.MaxUploadBytes = %d, want 10MB", cfg.Storage.MaxUploadBytes)
	}
	if cfg.Backup.Format != "tar.zst" {
		t.Errorf("Backup.Format = %q, want tar.zst", cfg.Backup.Format)
	}
	if cfg.Backup.Schedule.Prefix != "scheduled" || cfg.Backup.Schedule.MaxKept != 10 {
		t.Errorf("unexpected schedule defaults: %+v", cfg.Backup.Schedule)
	}
	if cfg.Security.TokenTTL != time.Hour {
		t.Errorf("Security.TokenTTL = %v, want 1h", cfg.Security.TokenTTL)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	isolateEnv(t)

	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	} else if !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := LoadForCLI(); err != nil {
		t.Fatalf("LoadForCLI should not require JWT_SECRET: %v", err)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	isolateEnv(t)

	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "8080")
	t.Setenv("BACKUP_FORMAT", "zip")
	t.Setenv("BACKUP_MAX_KEPT", "3")
	t.Setenv("BACKUP_SCHEDULE_INTERVAL", "6h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SAVE_INTERVAL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Backup.Format != "zip" {
		t.Errorf("Backup.Format = %q, want zip", cfg.Backup.Format)
	}
	if cfg.Backup.Schedule.MaxKept != 3 {
		t.Errorf("MaxKept = %d, want 3", cfg.Backup.Schedule.MaxKept)
	}
	if cfg.Backup.Schedule.Interval != 6*time.Hour {
		t.Errorf("Interval = %v, want 6h", cfg.Backup.Schedule.Interval)
	}
	if cfg.Storage.SaveInterval != 30*time.Second {
		t.Errorf("SaveInterval = %v, want 30s", cfg.Storage.SaveInterval)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestLoadDataDir(t *testing.T) {
	isolateEnv(t)
	root := t.TempDir()
	t.Setenv(DataDirEnvVar, root)
	t.Setenv("UPLOADS_DIR", "/srv/uploads")

	cfg, err := LoadForCLI()
	if err != nil {
		t.Fatalf("LoadForCLI() error = %v", err)
	}

	if cfg.Storage.MirrorPath != filepath.Join(root, "db.json") {
		t.Errorf("MirrorPath = %q", cfg.Storage.MirrorPath)
	}
	if cfg.Backup.Dir != filepath.Join(root, "backups") {
		t.Errorf("Backup.Dir = %q", cfg.Backup.Dir)
	}
	if cfg.Storage.UploadsDir != "/srv/uploads" {
		t.Errorf("explicit UPLOADS_DIR should win, got %q", cfg.Storage.UploadsDir)
	}
}

func TestLoadFromYAML(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
backup:
  format: tar.gz
  schedule:
    enabled: true
    interval: 1h
    prefix: nightly
    max_kept: 4
security:
  jwt_secret: ` + testSecret + `
  cors_origins:
    - https://gallery.example
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backup.Format != "tar.gz" || !cfg.Backup.Schedule.Enabled {
		t.Errorf("unexpected backup config: %+v", cfg.Backup)
	}
	if cfg.Backup.Schedule.Prefix != "nightly" || cfg.Backup.Schedule.MaxKept != 4 {
		t.Errorf("unexpected schedule: %+v", cfg.Backup.Schedule)
	}
	if len(cfg.Security.CORSOrigins) != 1 {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"BACKUP_MAX_KEPT", "backup.schedule.max_kept"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envTransformFunc(tt.in); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Security.JWTSecret = testSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"bad format", func(c *Config) { c.Backup.Format = "rar" }, "BACKUP_FORMAT"},
		{"negative keep", func(c *Config) { c.Backup.Schedule.MaxKept = -1 }, "BACKUP_MAX_KEPT"},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "short" }, "JWT_SECRET"},
		{"empty mirror", func(c *Config) { c.Storage.MirrorPath = " " }, "MIRROR_PATH"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"schedule without interval", func(c *Config) {
			c.Backup.Schedule.Enabled = true
			c.Backup.Schedule.Interval = 0
		}, "BACKUP_SCHEDULE_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
