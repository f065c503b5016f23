// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gallery/config.yaml",
	"/etc/gallery/config.yml",
}

// ConfigPathEnvVar points at an explicit YAML file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DataDirEnvVar relocates every on-disk path under one root. Individual
// path variables still take precedence.
const DataDirEnvVar = "DATA_DIR"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			MirrorPath:     "data/db.json",
			UploadsDir:     "data/uploads",
			SaveInterval:   5 * time.Minute,
			ForceReinit:    false,
			MaxUploadBytes: 10 << 20, // 10MB
		},
		Backup: BackupConfig{
			Dir:     "data/backups",
			Format:  "tar.zst",
			LogFile: "data/backup-logs.txt",
			Schedule: ScheduleConfig{
				Enabled:  false,
				Interval: 24 * time.Hour,
				Prefix:   "scheduled",
				MaxKept:  10,
			},
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			TokenTTL:          time.Hour,
			AdminUsername:     "admin",
			AdminEmail:        "admin@example.com",
			AdminPassword:     "password123",
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			LoginRateLimit:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf layers defaults, an optional YAML file and the environment.
// When strict is set the security section is validated as well.
func LoadWithKoanf(strict bool) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := applyDataDir(k, os.Getenv(DataDirEnvVar)); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := cfg.Validate
	if !strict {
		validate = cfg.ValidateStorage
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func applyDataDir(k *koanf.Koanf, dataDir string) error {
	if dataDir == "" {
		return nil
	}
	paths := map[string]string{
		"storage.mirror_path": filepath.Join(dataDir, "db.json"),
		"storage.uploads_dir": filepath.Join(dataDir, "uploads"),
		"backup.dir":          filepath.Join(dataDir, "backups"),
		"backup.log_file":     filepath.Join(dataDir, "backup-logs.txt"),
	}
	for key, value := range paths {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma separated env values for slice fields.
// Values that came from YAML are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are dropped so the process environment cannot inject
// arbitrary keys.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"port":                  "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"db_path":          "storage.mirror_path",
	"mirror_path":      "storage.mirror_path",
	"uploads_dir":      "storage.uploads_dir",
	"save_interval":    "storage.save_interval",
	"force_reinit":     "storage.force_reinit",
	"max_upload_bytes": "storage.max_upload_bytes",

	"backup_dir":               "backup.dir",
	"backup_format":            "backup.format",
	"backup_log_file":          "backup.log_file",
	"backup_schedule_enabled":  "backup.schedule.enabled",
	"backup_schedule_interval": "backup.schedule.interval",
	"backup_schedule_prefix":   "backup.schedule.prefix",
	"backup_max_kept":          "backup.schedule.max_kept",

	"jwt_secret":          "security.jwt_secret",
	"token_ttl":           "security.token_ttl",
	"admin_username":      "security.admin_username",
	"admin_email":         "security.admin_email",
	"admin_password":      "security.admin_password",
	"cors_origins":        "security.cors_origins",
	"rate_limit_reqs":     "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"rate_limit_disabled": "security.rate_limit_disabled",
	"login_rate_limit":    "security.login_rate_limit",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps e.g. BACKUP_MAX_KEPT to backup.schedule.max_kept.
// DATA_DIR is handled by applyDataDir since it fans out to several keys.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
