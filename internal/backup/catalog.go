// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/metrics"
)

// List returns the archives in the backup directory, newest first. Ties on
// modification time are broken by filename, descending. Partial and
// unrecognized files are skipped.
func (m *Manager) List(ctx context.Context) ([]Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listLocked()
}

func (m *Manager) listLocked() ([]Archive, error) {
	dirEntries, err := os.ReadDir(m.cfg.BackupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Archive{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	archives := make([]Archive, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !de.Type().IsRegular() || strings.HasSuffix(name, partialSuffix) {
			continue
		}
		if _, err := FormatFromName(name); err != nil {
			continue
		}

		a, err := archiveFromPath(filepath.Join(m.cfg.BackupDir, name))
		if err != nil {
			// Removed between ReadDir and Stat.
			logging.Debug().Err(err).Str("file", name).Msg("Skipping archive")
			continue
		}
		archives = append(archives, *a)
	}

	sortNewestFirst(archives)
	return archives, nil
}

func sortNewestFirst(archives []Archive) {
	sort.Slice(archives, func(i, j int) bool {
		if !archives[i].CreatedAt.Equal(archives[j].CreatedAt) {
			return archives[i].CreatedAt.After(archives[j].CreatedAt)
		}
		return archives[i].Filename > archives[j].Filename
	})
}

// Find resolves an archive by ID or filename.
func (m *Manager) Find(ctx context.Context, id string) (*Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.findLocked(id)
}

func (m *Manager) findLocked(id string) (*Archive, error) {
	if id == "" || filepath.Base(id) != id {
		return nil, fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	// A filename resolves directly.
	if _, err := FormatFromName(id); err == nil {
		return archiveFromPath(filepath.Join(m.cfg.BackupDir, id))
	}

	for _, f := range Formats() {
		a, err := archiveFromPath(filepath.Join(m.cfg.BackupDir, id+f.Ext()))
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
}

// resolveLocked turns an archive name, ID or path into an archive in the
// backup directory. Paths elsewhere resolve to ErrNotFound.
func (m *Manager) resolveLocked(nameOrPath string) (*Archive, error) {
	name := nameOrPath
	if filepath.Base(nameOrPath) != nameOrPath {
		abs, err := filepath.Abs(nameOrPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", nameOrPath, ErrNotFound)
		}
		dir, err := filepath.Abs(m.cfg.BackupDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve backup directory: %w", err)
		}
		if filepath.Dir(abs) != dir {
			return nil, fmt.Errorf("%s is outside the backup directory: %w", nameOrPath, ErrNotFound)
		}
		name = filepath.Base(abs)
	}

	if strings.HasSuffix(name, partialSuffix) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	// IDs never contain a dot, so anything with one is a filename and must
	// carry a known extension.
	if strings.Contains(name, ".") {
		if _, err := FormatFromName(name); err != nil {
			return nil, err
		}
	}
	return m.findLocked(name)
}

// Delete removes an archive given its ID, filename or path.
func (m *Manager) Delete(ctx context.Context, nameOrPath string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	start := time.Now()
	defer func() {
		metrics.RecordBackupOperation("delete", time.Since(start), err)
	}()

	a, err := m.resolveLocked(nameOrPath)
	if err != nil {
		return err
	}

	if err := os.Remove(a.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", a.Filename, ErrNotFound)
		}
		return fmt.Errorf("failed to delete backup file: %w", err)
	}

	logging.Info().Str("archive", a.Filename).Msg("Backup deleted")
	return nil
}
