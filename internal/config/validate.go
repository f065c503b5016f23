// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package config

import (
	"fmt"
	"strings"
)

// MinJWTSecretLength is the shortest accepted HS256 signing secret.
const MinJWTSecretLength = 32

// SupportedBackupFormats lists the values accepted for backup.format.
var SupportedBackupFormats = []string{"zip", "tar.gz", "tar.zst"}

// Validate checks every section, including security.
func (c *Config) Validate() error {
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateSecurity()
}

// ValidateStorage checks the sections needed by offline tooling: storage,
// backup and logging.
func (c *Config) ValidateStorage() error {
	validators := []func() error{
		c.validateStorage,
		c.validateBackup,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.MirrorPath) == "" {
		return fmt.Errorf("MIRROR_PATH is required")
	}
	if strings.TrimSpace(c.Storage.UploadsDir) == "" {
		return fmt.Errorf("UPLOADS_DIR is required")
	}
	if c.Storage.SaveInterval < 0 {
		return fmt.Errorf("SAVE_INTERVAL must not be negative")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c *Config) validateBackup() error {
	if strings.TrimSpace(c.Backup.Dir) == "" {
		return fmt.Errorf("BACKUP_DIR is required")
	}

	supported := false
	for _, f := range SupportedBackupFormats {
		if c.Backup.Format == f {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("BACKUP_FORMAT must be one of %s, got %q",
			strings.Join(SupportedBackupFormats, ", "), c.Backup.Format)
	}

	if c.Backup.Schedule.MaxKept < 0 {
		return fmt.Errorf("BACKUP_MAX_KEPT must not be negative")
	}
	if c.Backup.Schedule.Enabled {
		if c.Backup.Schedule.Interval <= 0 {
			return fmt.Errorf("BACKUP_SCHEDULE_INTERVAL must be positive when scheduling is enabled")
		}
		if strings.TrimSpace(c.Backup.Schedule.Prefix) == "" {
			return fmt.Errorf("BACKUP_SCHEDULE_PREFIX is required when scheduling is enabled")
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not recognized", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}
