// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

// Package config loads Gallery configuration with koanf v2.
//
// Sources are layered, later ones win:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/gallery/config.yaml)
//  3. Environment variables (see envMappings)
//
// The server binary calls Load, which also enforces security settings.
// The backup CLI calls LoadForCLI, which skips them since it never issues tokens.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Backup   BackupConfig   `koanf:"backup"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig describes where the dataset mirror and the uploads live.
type StorageConfig struct {
	// MirrorPath is the JSON file the in-memory dataset is persisted to.
	MirrorPath string `koanf:"mirror_path"`

	// UploadsDir is the blob directory referenced by photo filenames.
	UploadsDir string `koanf:"uploads_dir"`

	// SaveInterval is the period of the background save. Zero disables it.
	SaveInterval time.Duration `koanf:"save_interval"`

	// ForceReinit discards the existing mirror at startup.
	ForceReinit bool `koanf:"force_reinit"`

	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// BackupConfig configures the snapshot engine and its schedule.
type BackupConfig struct {
	Dir string `koanf:"dir"`

	// Format is the container used for new archives: zip, tar.gz or tar.zst.
	Format string `koanf:"format"`

	// LogFile receives the human readable backup activity log.
	LogFile string `koanf:"log_file"`

	Schedule ScheduleConfig `koanf:"schedule"`
}

// ScheduleConfig configures recurring backups and their rotation.
type ScheduleConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
	Prefix   string        `koanf:"prefix"`
	MaxKept  int           `koanf:"max_kept"`
}

// SecurityConfig holds authentication and HTTP hardening settings.
type SecurityConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// Seed account created when the dataset is initialized from scratch.
	AdminUsername string `koanf:"admin_username"`
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	LoginRateLimit    int           `koanf:"login_rate_limit"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads and validates the full server configuration.
func Load() (*Config, error) {
	return LoadWithKoanf(true)
}

// LoadForCLI reads configuration without requiring security settings.
func LoadForCLI() (*Config, error) {
	return LoadWithKoanf(false)
}
