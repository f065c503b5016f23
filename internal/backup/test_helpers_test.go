// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/dataset"
	"github.com/tomtom215/gallery/internal/models"
)

// testEnv holds the common test environment setup
type testEnv struct {
	tempDir   string
	backupDir string
	blobs     *blobstore.Store
	store     *dataset.Store
}

// newTestEnv creates uploads, a dataset mirror and a backup directory in a
// fresh temp dir
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tempDir := t.TempDir()
	blobs, err := blobstore.New(filepath.Join(tempDir, "uploads"))
	if err != nil {
		t.Fatalf("failed to create blob store: %v", err)
	}

	store := dataset.New(dataset.Options{MirrorPath: filepath.Join(tempDir, "db.json")}, blobs)

	return &testEnv{
		tempDir:   tempDir,
		backupDir: filepath.Join(tempDir, "backups"),
		blobs:     blobs,
		store:     store,
	}
}

// newTestConfig creates a default test configuration
func (e *testEnv) newTestConfig(format Format) *Config {
	return &Config{
		BackupDir: e.backupDir,
		Format:    format,
		LogFile:   filepath.Join(e.tempDir, "backup-logs.txt"),
		Schedule: ScheduleConfig{
			Enabled:  false,
			Interval: time.Hour,
			Prefix:   "scheduled",
			MaxKept:  3,
		},
	}
}

// newTestManager creates a test manager writing archives in format
func (e *testEnv) newTestManager(t *testing.T, format Format) *Manager {
	t.Helper()
	manager, err := NewManager(e.newTestConfig(format), e.store, e.blobs)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return manager
}

// putBlob writes a blob and fails the test on error
func (e *testEnv) putBlob(t *testing.T, name, content string) {
	t.Helper()
	if _, err := e.blobs.Put(name, strings.NewReader(content)); err != nil {
		t.Fatalf("failed to put %s: %v", name, err)
	}
}

// readBlob returns a blob's content
func (e *testEnv) readBlob(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.blobs.Dir(), name))
	if err != nil {
		t.Fatalf("failed to read blob %s: %v", name, err)
	}
	return string(data)
}

// blobNames lists the blob store
func (e *testEnv) blobNames(t *testing.T) []string {
	t.Helper()
	entries, err := e.blobs.List()
	if err != nil {
		t.Fatalf("failed to list blobs: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, en := range entries {
		names = append(names, en.Name)
	}
	return names
}

// writeArchiveFile creates a placeholder archive with a fixed mtime
func (e *testEnv) writeArchiveFile(t *testing.T, name string, mtime time.Time) string {
	t.Helper()
	if err := os.MkdirAll(e.backupDir, 0o750); err != nil {
		t.Fatalf("failed to create backup dir: %v", err)
	}
	path := filepath.Join(e.backupDir, name)
	if err := os.WriteFile(path, []byte("archive "+name), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime on %s: %v", name, err)
	}
	return path
}

// fixtureDataset is a small gallery with fixed timestamps
func fixtureDataset() models.Dataset {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := base.Add(time.Hour)
	return models.Dataset{
		Users: []models.User{
			{ID: "u1", Username: "alice", Email: "alice@example.com", Password: "$2a$10$hash", IsAdmin: true, CreatedAt: base},
			{ID: "u2", Username: "bob", Email: "bob@example.com", Password: "$2a$10$hash2", CreatedAt: base},
		},
		Photos: []models.Photo{
			{ID: "p1", Title: "Sunrise", Description: "Early", Category: "nature", Filename: "sunrise.jpg", Path: "/uploads/sunrise.jpg", UserID: "u1", UploadDate: base, Likes: 1},
			{ID: "p2", Title: "Harbor", Category: "city", Attribution: "Bob", Filename: "harbor.png", Path: "/uploads/harbor.png", UserID: "u2", UploadDate: base, UpdatedAt: &updated},
		},
		UserLikes: []models.Like{{UserID: "u2", PhotoID: "p1", Timestamp: base}},
	}
}

// seedFixture loads the fixture dataset and its blobs
func (e *testEnv) seedFixture(t *testing.T) models.Dataset {
	t.Helper()
	ds := fixtureDataset()
	if err := e.store.Replace(ds); err != nil {
		t.Fatalf("failed to seed dataset: %v", err)
	}
	e.putBlob(t, "sunrise.jpg", "sunrise-bytes")
	e.putBlob(t, "harbor.png", "harbor-bytes")
	return ds
}

func assertDatasetEqual(t *testing.T, want, got models.Dataset) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Errorf("dataset mismatch\nwant: %+v\ngot:  %+v", want, got)
	}
}
