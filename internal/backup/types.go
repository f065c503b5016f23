// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"time"
)

// Archive is one snapshot file in the backup directory
type Archive struct {
	// ID is the filename without its format extension
	ID string `json:"id"`

	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Format    Format    `json:"format"`
}

// RestoreResult describes a completed restore
type RestoreResult struct {
	Archive  Archive       `json:"archive"`
	Users    int           `json:"users"`
	Photos   int           `json:"photos"`
	Blobs    int           `json:"blobs"`
	Duration time.Duration `json:"duration"`
}

// Archive entry names
const (
	datasetEntry = "db.json"
	uploadsEntry = "uploads"

	// previousEntry holds the live uploads inside a restore staging dir
	previousEntry = ".previous"
)

// partialSuffix marks an archive that is still being written
const partialSuffix = ".partial"
