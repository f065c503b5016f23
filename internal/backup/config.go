// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/gallery/internal/config"
)

// Config holds all backup-related configuration
type Config struct {
	// Directory holding the archives
	BackupDir string

	// Container used for new archives
	Format Format

	// Activity log written by scheduled runs. Empty disables it.
	LogFile string

	Schedule ScheduleConfig
}

// ScheduleConfig configures recurring backups and their rotation
type ScheduleConfig struct {
	Enabled  bool
	Interval time.Duration

	// Label of scheduled archives, also the rotation filter
	Prefix string

	// Number of scheduled archives kept after each run
	MaxKept int
}

// DefaultScheduleConfig returns the schedule used when none is configured
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Enabled:  false,
		Interval: 24 * time.Hour,
		Prefix:   "scheduled",
		MaxKept:  10,
	}
}

// ConfigFromApp converts the application backup section.
func ConfigFromApp(c config.BackupConfig) (*Config, error) {
	format, err := ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BackupDir: c.Dir,
		Format:    format,
		LogFile:   c.LogFile,
		Schedule: ScheduleConfig{
			Enabled:  c.Schedule.Enabled,
			Interval: c.Schedule.Interval,
			Prefix:   c.Schedule.Prefix,
			MaxKept:  c.Schedule.MaxKept,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backup configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.BackupDir == "" {
		return fmt.Errorf("BACKUP_DIR is required")
	}
	if _, ok := formatSpecs[c.Format]; !ok {
		return fmt.Errorf("BACKUP_FORMAT %q: %w", c.Format, ErrUnsupportedFormat)
	}
	if c.Schedule.MaxKept < 0 {
		return fmt.Errorf("BACKUP_MAX_KEPT must be >= 0, got: %d: %w", c.Schedule.MaxKept, ErrInvalidRetention)
	}
	if c.Schedule.Enabled {
		if c.Schedule.Interval <= 0 {
			return fmt.Errorf("BACKUP_SCHEDULE_INTERVAL must be positive, got: %s", c.Schedule.Interval)
		}
		if c.Schedule.Prefix == "" {
			return fmt.Errorf("BACKUP_SCHEDULE_PREFIX is required when scheduling is enabled")
		}
	}
	return nil
}

// EnsureBackupDir creates the backup directory if it doesn't exist
func (c *Config) EnsureBackupDir() error {
	if err := os.MkdirAll(c.BackupDir, 0o750); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	return nil
}
