// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/dataset"
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/metrics"
	"github.com/tomtom215/gallery/internal/models"
)

// maxFileSize bounds each extracted entry (decompression bombs)
const maxFileSize = 1 << 30

// Restore replaces the dataset and the blob store with an archive's
// contents. The archive is fully extracted and validated in a staging
// directory first; if anything fails before that point, live state is
// untouched. The swap runs in the dataset's exclusive section, so no upload
// or record change interleaves with it, and a failure during the swap puts
// the previous uploads and dataset back.
func (m *Manager) Restore(ctx context.Context, nameOrPath string) (result *RestoreResult, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RecordBackupOperation("restore", time.Since(start), err)
	}()

	archive, err := m.resolveLocked(nameOrPath)
	if err != nil {
		return nil, err
	}

	stagingDir, err := os.MkdirTemp(m.cfg.BackupDir, ".restore-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir) //nolint:errcheck // Best effort cleanup

	if err := extractFilesToTemp(ctx, archive, stagingDir); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(stagingDir, datasetEntry)) //nolint:gosec // G304: staging path
	if err != nil {
		return nil, fmt.Errorf("%w: %s missing: %w", ErrInvalidArchive, datasetEntry, err)
	}
	ds, err := dataset.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var copied int
	err = m.source.Exclusive(func() error {
		// Keep the live uploads and dataset so a failed swap can be undone.
		previousDir := filepath.Join(stagingDir, previousEntry)
		previousBlobs, err := blobstore.New(previousDir)
		if err != nil {
			return fmt.Errorf("failed to stage current uploads: %w", err)
		}
		if _, err := previousBlobs.CopyFrom(m.blobs.Dir()); err != nil {
			return fmt.Errorf("failed to stage current uploads: %w", err)
		}
		previous := m.source.Snapshot()

		// Live state changes from here on.
		if err := m.blobs.Clear(); err != nil {
			return m.rollback(previous, previousDir, fmt.Errorf("failed to clear uploads: %w", err))
		}
		copied, err = m.blobs.CopyFrom(filepath.Join(stagingDir, uploadsEntry))
		if err != nil {
			return m.rollback(previous, previousDir, fmt.Errorf("failed to restore uploads: %w", err))
		}
		if err := m.source.Replace(ds); err != nil {
			return m.rollback(previous, previousDir, fmt.Errorf("failed to persist restored dataset: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &RestoreResult{
		Archive:  *archive,
		Users:    len(ds.Users),
		Photos:   len(ds.Photos),
		Blobs:    copied,
		Duration: time.Since(start),
	}

	logging.Info().
		Str("archive", archive.Filename).
		Int("users", result.Users).
		Int("photos", result.Photos).
		Int("blobs", result.Blobs).
		Dur("duration", result.Duration).
		Msg("Backup restored")

	return result, nil
}

// rollback puts back the uploads saved in previousDir and the previous
// dataset, then returns cause. The mirror on disk was never replaced when
// Replace failed, so only memory and uploads need undoing.
func (m *Manager) rollback(previous models.Dataset, previousDir string, cause error) error {
	logging.Err(cause).Msg("Restore failed, rolling back")

	if err := m.blobs.Clear(); err != nil {
		logging.Error().Err(err).Msg("Rollback could not clear uploads")
	} else if _, err := m.blobs.CopyFrom(previousDir); err != nil {
		logging.Error().Err(err).Msg("Rollback could not restore uploads")
	}
	if err := m.source.Replace(previous); err != nil {
		logging.Error().Err(err).Msg("Rollback could not persist previous dataset")
	}
	return cause
}

// extractFilesToTemp extracts db.json and uploads/* into tempDir. Other
// entries are ignored.
func extractFilesToTemp(ctx context.Context, archive *Archive, tempDir string) error {
	return walkArchive(archive.Path, archive.Format, func(e archiveEntry, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if shouldSkipEntry(e) {
			return nil
		}

		destPath, err := validateAndBuildDestPath(tempDir, e.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", e.Name, err)
		}
		if err := extractFile(r, destPath, e.Size); err != nil {
			return fmt.Errorf("%w: failed to extract %s: %w", ErrInvalidArchive, e.Name, err)
		}
		return nil
	})
}

// shouldSkipEntry reports whether an archive entry is outside the restored
// layout.
func shouldSkipEntry(e archiveEntry) bool {
	if e.IsDir || !e.Regular {
		return true
	}
	name := strings.TrimPrefix(e.Name, "./")
	return name != datasetEntry && !strings.HasPrefix(name, uploadsEntry+"/")
}

// validateAndBuildDestPath validates and builds the destination path for extraction
func validateAndBuildDestPath(tempDir, fileName string) (string, error) {
	destPath := filepath.Join(tempDir, fileName)

	// Validate path to prevent directory traversal (G305)
	if !strings.HasPrefix(destPath, filepath.Clean(tempDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: invalid file path in archive: %s", ErrInvalidArchive, fileName)
	}

	return destPath, nil
}

// extractFile safely extracts a single file with size limits
//
//nolint:gosec // G110: Size is validated, G304: destPath is validated by caller
func extractFile(reader io.Reader, destPath string, size int64) error {
	if err := validateExtractionSize(size); err != nil {
		return err
	}

	outFile, err := os.Create(destPath)
	if err != nil {
		return err
	}

	return copyAndCloseExtractedFile(outFile, reader, destPath, size)
}

// validateExtractionSize checks that the file size is within acceptable limits
func validateExtractionSize(size int64) error {
	if size < 0 || size > maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max %d)", size, maxFileSize)
	}
	return nil
}

// copyAndCloseExtractedFile copies data to the extracted file and handles cleanup
func copyAndCloseExtractedFile(outFile *os.File, reader io.Reader, destPath string, size int64) error {
	// LimitReader keeps a lying header from writing past its declared size
	n, err := io.Copy(outFile, io.LimitReader(reader, size+1))
	closeErr := outFile.Close()

	if err == nil && n > size {
		err = fmt.Errorf("entry larger than its declared size %d", size)
	}
	if err != nil {
		os.Remove(destPath) //nolint:errcheck // Best effort cleanup on error
		return err
	}

	if closeErr != nil {
		os.Remove(destPath) //nolint:errcheck // Best effort cleanup on error
		return closeErr
	}

	return nil
}
