// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
manager.go - Core Backup Manager

The manager ties the snapshot engine to its two collaborators:

  - Source: the in-memory dataset (Snapshot to archive it, Replace to
    restore it)
  - Blobs: the uploads directory

Thread Safety:
Create, List and Delete take the read side of mu. Restore takes the write
side, so a restore never interleaves with a snapshot of half-replaced
uploads.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/models"
)

// Source is the dataset being backed up
type Source interface {
	// Snapshot returns a deep copy of the current dataset
	Snapshot() models.Dataset
	// Replace swaps in a restored dataset and persists it
	Replace(ds models.Dataset) error
	// Exclusive runs fn with every other dataset mutation held off
	Exclusive(fn func() error) error
}

// Blobs is the uploads directory being backed up
type Blobs interface {
	Dir() string
	List() ([]blobstore.Entry, error)
	Clear() error
	CopyFrom(srcDir string) (int, error)
}

// Manager handles backup and restore operations
type Manager struct {
	cfg    *Config
	source Source
	blobs  Blobs

	mu  sync.RWMutex
	now func() time.Time
}

// NewManager creates a new backup manager and its backup directory
func NewManager(cfg *Config, source Source, blobs Blobs) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backup configuration is required")
	}
	if source == nil || blobs == nil {
		return nil, fmt.Errorf("backup source and blob store are required")
	}
	if cfg.Format == "" {
		cfg.Format = DefaultFormat
	}
	if err := cfg.EnsureBackupDir(); err != nil {
		return nil, err
	}

	return &Manager{
		cfg:    cfg,
		source: source,
		blobs:  blobs,
		now:    time.Now,
	}, nil
}

// Config returns the manager's configuration
func (m *Manager) Config() *Config {
	return m.cfg
}

// Dir returns the backup directory
func (m *Manager) Dir() string {
	return m.cfg.BackupDir
}
