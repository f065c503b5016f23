// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
manager_archive.go - Snapshot Creation

Archive Structure:

	2026-10-19T08-30-00-123Z_manual.tar.zst
	├── db.json      (dataset, pretty-printed like the mirror)
	└── uploads/
	    ├── photo-1700000000000-123456789.jpg
	    └── ...

Archive Creation Process:
 1. Snapshot the dataset and list the blob store
 2. Open <name>.partial exclusively
 3. Setup writers (file -> compressor -> container)
 4. Add db.json, then every blob under uploads/
 5. Close writers in reverse order, fsync, rename to <name>
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/dataset"
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/metrics"
)

// archive names are unique per millisecond and label; this bounds the
// suffix search for a collision within the same millisecond.
const maxNameAttempts = 100

var labelDisallowed = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeLabel reduces a user supplied label to [A-Za-z0-9_-]. Runs of
// other characters become a single '-'.
func SanitizeLabel(label string) string {
	return strings.Trim(labelDisallowed.ReplaceAllString(label, "-"), "-")
}

// archiveTimestamp renders t as ISO 8601 with milliseconds, safe for
// filenames on every platform.
func archiveTimestamp(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(ts)
}

// archiveBaseName builds "<timestamp>[_label]".
func archiveBaseName(t time.Time, label string) string {
	base := archiveTimestamp(t)
	if label = SanitizeLabel(label); label != "" {
		base += "_" + label
	}
	return base
}

// Create snapshots the dataset and the blob store into a new archive in
// the configured format.
func (m *Manager) Create(ctx context.Context, label string) (archive *Archive, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	start := time.Now()
	defer func() {
		metrics.RecordBackupOperation("create", time.Since(start), err)
	}()

	ds := m.source.Snapshot()
	data, err := dataset.Encode(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset: %w", err)
	}

	blobs, err := m.blobs.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	format := m.cfg.Format
	createdAt := m.now()
	out, finalPath, err := m.openPartial(createdAt, label, format)
	if err != nil {
		return nil, err
	}
	partialPath := out.Name()

	defer func() {
		if err != nil {
			out.Close()            //nolint:errcheck,gosec // already failing
			os.Remove(partialPath) //nolint:errcheck,gosec // Best effort cleanup on error
		}
	}()

	if err = m.writeArchive(ctx, out, format, data, blobs, createdAt); err != nil {
		return nil, err
	}
	if err = out.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync archive: %w", err)
	}
	if err = out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}
	if err = os.Rename(partialPath, finalPath); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	syncDir(m.cfg.BackupDir)

	archive, err = archiveFromPath(finalPath)
	if err != nil {
		return nil, err
	}

	metrics.RecordBackupSize(archive.Size)
	logging.Info().
		Str("archive", archive.Filename).
		Str("format", string(format)).
		Int("photos", len(ds.Photos)).
		Int("blobs", len(blobs)).
		Int64("size_bytes", archive.Size).
		Dur("duration", time.Since(start)).
		Msg("Backup created")

	return archive, nil
}

// openPartial exclusively creates the .partial file for a new archive and
// returns it with the archive's final path.
func (m *Manager) openPartial(createdAt time.Time, label string, format Format) (*os.File, string, error) {
	base := archiveBaseName(createdAt, label)

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := base
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d", base, attempt+1)
		}
		finalPath := filepath.Join(m.cfg.BackupDir, name+format.Ext())
		if fileExists(finalPath) {
			continue
		}

		out, err := os.OpenFile(finalPath+partialSuffix, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640) //nolint:gosec // G304: name is generated
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to create backup file: %w", err)
		}
		return out, finalPath, nil
	}
	return nil, "", fmt.Errorf("failed to pick a unique archive name for %s", base)
}

// writeArchive writes db.json and the uploads through the format's writers
// and closes them.
func (m *Manager) writeArchive(ctx context.Context, out *os.File, format Format, data []byte, blobs []blobstore.Entry, modTime time.Time) (err error) {
	aw, err := setupArchiveWriters(out, format)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := aw.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("failed to flush archive: %w", closeErr)
		}
	}()

	if err := aw.addBytes(datasetEntry, data, modTime); err != nil {
		return err
	}
	if err := aw.addDir(uploadsEntry+"/", modTime); err != nil {
		return fmt.Errorf("failed to write uploads directory entry: %w", err)
	}

	dir := m.blobs.Dir()
	for _, b := range blobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if b.Name == blobstore.Sentinel {
			continue
		}
		if err := aw.addFile(filepath.Join(dir, b.Name), uploadsEntry+"/"+b.Name); err != nil {
			return err
		}
	}
	return nil
}
