// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

// Package blobstore owns the uploads directory. Every write to it goes
// through Store; names are plain base names only.
package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/validation"
)

// Sentinel keeps the uploads directory in version control. It is never
// listed, archived or cleared.
const Sentinel = ".gitkeep"

const (
	tempPrefix    = ".upload-"
	tempSuffix    = ".tmp"
	writeTestName = ".write-test"
)

// SampleAssets are the demo images shipped with fresh checkouts. They are
// removed on first run so the seeded gallery only shows real uploads.
var SampleAssets = []string{"sunset.jpg", "mountains.jpg", "city.jpg"}

// ErrInvalidName is returned for names that are not a single path element.
var ErrInvalidName = errors.New("invalid blob name")

// Entry is one stored blob.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store is a flat directory of blobs.
type Store struct {
	dir string
}

// New creates dir if needed and probes that it is writable. A failed probe
// is logged, not returned: a read-only uploads dir still serves images.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	probe := filepath.Join(dir, writeTestName)
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		logging.Warn().Err(err).Str("dir", dir).Msg("Uploads directory is not writable")
	} else {
		_ = os.Remove(probe)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute location of name.
func (s *Store) Path(name string) (string, error) {
	if !validation.IsPlainFilename(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Exists reports whether a regular file called name is stored.
func (s *Store) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Open opens a blob for reading.
func (s *Store) Open(name string) (*os.File, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(p) //nolint:gosec // G304: name validated by Path
}

// List returns stored blobs sorted by name. The sentinel and in-flight
// temp files are skipped. A missing directory lists as empty.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || isInternal(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func isInternal(name string) bool {
	if name == Sentinel || name == writeTestName {
		return true
	}
	return strings.HasPrefix(name, tempPrefix) && strings.HasSuffix(name, tempSuffix)
}

// Put stores r under name, replacing any existing blob atomically.
func (s *Store) Put(name string, r io.Reader) (int64, error) {
	dest, err := s.Path(name)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.dir, tempPrefix+"*"+tempSuffix)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write blob %s: %w", name, err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to rename blob %s: %w", name, err)
	}
	return n, nil
}

// Remove deletes a blob. A blob that is already gone is not an error.
func (s *Store) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove blob %s: %w", name, err)
	}
	return nil
}

// Clear removes every blob except the sentinel.
func (s *Store) Clear() error {
	entries, err := s.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.Remove(e.Name); err != nil {
			return err
		}
	}
	return nil
}

// CopyFrom copies every regular file of srcDir into the store, skipping the
// internal names List hides, and returns how many were copied. A missing srcDir copies nothing.
func (s *Store) CopyFrom(srcDir string) (int, error) {
	dirEntries, err := os.ReadDir(srcDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", srcDir, err)
	}

	copied := 0
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || isInternal(de.Name()) {
			continue
		}
		if err := s.copyIn(filepath.Join(srcDir, de.Name()), de.Name()); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

func (s *Store) copyIn(src, name string) error {
	f, err := os.Open(src) //nolint:gosec // G304: src comes from a staging dir we created
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	_, err = s.Put(name, f)
	return err
}

// RemoveSamples deletes the bundled demo images and returns the ones that
// were present.
func (s *Store) RemoveSamples() []string {
	var removed []string
	for _, name := range SampleAssets {
		if !s.Exists(name) {
			continue
		}
		if err := s.Remove(name); err != nil {
			logging.Warn().Err(err).Str("file", name).Msg("Failed to remove sample image")
			continue
		}
		logging.Info().Str("file", name).Msg("Removed sample image")
		removed = append(removed, name)
	}
	return removed
}
