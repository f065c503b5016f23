// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/metrics"
	"github.com/tomtom215/gallery/internal/models"
	"github.com/tomtom215/gallery/internal/validation"
)

// Blobs is the part of the blob store the dataset needs.
type Blobs interface {
	List() ([]blobstore.Entry, error)
	Exists(name string) bool
	RemoveSamples() []string
}

// AdminSeed is the account created by InitializeDefault.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// Options configure a Store.
type Options struct {
	// MirrorPath is the JSON file the dataset is persisted to.
	MirrorPath string

	Admin AdminSeed

	// ForceReinit makes Open discard the mirror and seed defaults.
	ForceReinit bool
}

// Store holds the dataset in memory and mirrors it to disk.
type Store struct {
	mu     sync.RWMutex
	data   models.Dataset
	loaded bool

	// saveMu serializes writers of <mirror>.tmp.
	saveMu sync.Mutex

	// opMu orders multi-step changes against Exclusive sections. It is
	// taken before mu and never by the single-step methods themselves.
	opMu sync.RWMutex

	mirrorPath  string
	admin       AdminSeed
	forceReinit bool
	blobs       Blobs

	now   func() time.Time
	likes func() int
}

// New creates a Store. Nothing is read until Open or Load.
func New(opts Options, blobs Blobs) *Store {
	admin := opts.Admin
	if admin.Username == "" {
		admin.Username = "admin"
	}
	if admin.Email == "" {
		admin.Email = "admin@example.com"
	}
	if admin.Password == "" {
		admin.Password = "password123"
	}

	return &Store{
		data:        models.NewDataset(),
		mirrorPath:  opts.MirrorPath,
		admin:       admin,
		forceReinit: opts.ForceReinit,
		blobs:       blobs,
		now:         time.Now,
		likes:       func() int { return rand.IntN(20) }, //nolint:gosec // placeholder counts, not security
	}
}

// MirrorPath returns the file the dataset is saved to.
func (s *Store) MirrorPath() string {
	return s.mirrorPath
}

// Ready reports whether the dataset has been loaded or seeded.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Open runs the boot sequence: load the mirror and reconcile it against the
// blob store, or seed defaults when the mirror is unusable. Open never
// fails because of a corrupt mirror.
func (s *Store) Open() error {
	firstRun := s.forceReinit
	if _, err := os.Stat(s.mirrorPath); errors.Is(err, os.ErrNotExist) {
		firstRun = true
	}
	if firstRun && s.blobs != nil {
		s.blobs.RemoveSamples()
	}

	if s.forceReinit {
		logging.Warn().Str("mirror", s.mirrorPath).Msg("FORCE_REINIT set, discarding existing dataset")
		return s.InitializeDefault()
	}

	err := s.Load()
	if err == nil {
		if _, rerr := s.ReconcileAgainstBlobStore(); rerr != nil {
			logging.Error().Err(rerr).Msg("Failed to reconcile dataset against uploads")
		}
		return nil
	}

	if errors.Is(err, ErrMirrorMissing) {
		logging.Warn().Str("mirror", s.mirrorPath).Msg("No dataset mirror found, initializing default data")
	} else {
		logging.Error().Err(err).Str("mirror", s.mirrorPath).Msg("Could not load dataset mirror, initializing default data")
	}
	return s.InitializeDefault()
}

// Load reads and validates the mirror and replaces the in-memory dataset.
// On error the in-memory dataset is left as it was.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.mirrorPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrMirrorMissing
		}
		return fmt.Errorf("%w: %w", ErrMirrorInvalid, err)
	}

	ds, err := Decode(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = ds
	s.loaded = true
	s.mu.Unlock()

	logging.Info().
		Int("users", len(ds.Users)).
		Int("photos", len(ds.Photos)).
		Str("mirror", s.mirrorPath).
		Msg("Dataset loaded from mirror")
	return nil
}

// Decode parses and validates a mirror document. It is shared with the
// restore path, which validates a staged db.json the same way.
func Decode(data []byte) (models.Dataset, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Dataset{}, ErrMirrorEmpty
	}

	var ds models.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return models.Dataset{}, fmt.Errorf("%w: %w", ErrMirrorInvalid, err)
	}
	if verr := validation.ValidateStruct(&ds); verr != nil {
		return models.Dataset{}, fmt.Errorf("%w: %s", ErrMirrorInvalid, verr.Error())
	}

	ds.Normalize()
	return ds, nil
}

// Encode renders a dataset the way the mirror stores it.
func Encode(ds models.Dataset) ([]byte, error) {
	ds.Normalize()
	return json.MarshalIndent(ds, "", "  ")
}

// Save writes the dataset to <mirror>.tmp, fsyncs it and renames it over
// the mirror. Concurrent callers are serialized.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	start := time.Now()

	s.mu.RLock()
	data, err := Encode(s.data)
	s.mu.RUnlock()

	if err == nil {
		err = writeFileAtomic(s.mirrorPath, data)
	}

	metrics.RecordDatasetSave(time.Since(start), err)
	if err != nil {
		logging.Error().Err(err).Str("mirror", s.mirrorPath).Msg("Failed to save dataset")
		return fmt.Errorf("failed to save dataset: %w", err)
	}

	logging.Debug().
		Str("mirror", s.mirrorPath).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Dataset saved")
	return nil
}

// writeFileAtomic replaces path with data so readers see either the old or
// the new content, never a prefix.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // G304: configured path
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	syncDir(dir)
	return nil
}

// syncDir persists the rename. Some filesystems refuse to fsync
// directories; that is logged and ignored.
func syncDir(dir string) {
	d, err := os.Open(dir) //nolint:gosec // G304: configured path
	if err != nil {
		return
	}
	defer d.Close() //nolint:errcheck // read-only handle
	if err := d.Sync(); err != nil {
		logging.Debug().Err(err).Str("dir", dir).Msg("Directory fsync not supported")
	}
}

// Snapshot returns a deep copy of the dataset.
func (s *Store) Snapshot() models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Replace swaps in ds wholesale and persists it.
func (s *Store) Replace(ds models.Dataset) error {
	ds = ds.Clone()
	ds.Normalize()

	s.mu.Lock()
	s.data = ds
	s.loaded = true
	s.mu.Unlock()

	return s.Save()
}

// Mutate runs fn in the shared mutation section. Callers that change blobs
// and records together, or check then write, use it so an Exclusive section
// never lands between their steps. fn must not call Mutate or Exclusive.
func (s *Store) Mutate(fn func() error) error {
	s.opMu.RLock()
	defer s.opMu.RUnlock()
	return fn()
}

// Exclusive runs fn with every Mutate section drained and held off. Restore
// uses it to swap uploads and the dataset as one step.
func (s *Store) Exclusive(fn func() error) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return fn()
}

// Stats returns collection sizes.
func (s *Store) Stats() (users, photos, likes int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Users), len(s.data.Photos), len(s.data.UserLikes)
}
