// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestListOrdering checks newest-first ordering by mtime
func TestListOrdering(t *testing.T) {
	env := newTestEnv(t)
	manager := env.newTestManager(t, FormatTarZstd)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	env.writeArchiveFile(t, "t1.tar.zst", base)
	env.writeArchiveFile(t, "t3.zip", base.Add(2*time.Hour))
	env.writeArchiveFile(t, "t2.tar.gz", base.Add(time.Hour))

	archives, err := manager.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var ids []string
	for _, a := range archives {
		ids = append(ids, a.ID)
	}
	if len(ids) != 3 || ids[0] != "t3" || ids[1] != "t2" || ids[2] != "t1" {
		t.Errorf("expected [t3 t2 t1], got %v", ids)
	}

	if archives[0].Format != FormatZip || archives[1].Format != FormatTarGzip || archives[2].Format != FormatTarZstd {
		t.Errorf("unexpected formats: %s %s %s", archives[0].Format, archives[1].Format, archives[2].Format)
	}
	if !archives[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("expected CreatedAt from mtime, got %s", archives[0].CreatedAt)
	}
}

// TestListTieBreak checks equal mtimes sort by name descending
func TestListTieBreak(t *testing.T) {
	env := newTestEnv(t)
	manager := env.newTestManager(t, FormatTarZstd)

	same := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	env.writeArchiveFile(t, "a.zip", same)
	env.writeArchiveFile(t, "c.zip", same)
	env.writeArchiveFile(t, "b.zip", same)

	archives, err := manager.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(archives) != 3 || archives[0].ID != "c" || archives[1].ID != "b" || archives[2].ID != "a" {
		t.Errorf("expected [c b a], got %+v", archives)
	}
}

// TestListSkipsUnrelatedFiles checks partial, foreign and directory entries
// are never listed
func TestListSkipsUnrelatedFiles(t *testing.T) {
	env := newTestEnv(t)
	manager := env.newTestManager(t, FormatTarZstd)

	now := time.Now()
	env.writeArchiveFile(t, "real.tar.zst", now)
	env.writeArchiveFile(t, "inflight.tar.zst"+partialSuffix, now)
	env.writeArchiveFile(t, "notes.txt", now)
	if err := os.Mkdir(filepath.Join(env.backupDir, "dir.zip"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	archives, err := manager.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(archives) != 1 || archives[0].Filename != "real.tar.zst" {
		t.Errorf("expected only real.tar.zst, got %+v", archives)
	}

	if _, err := manager.Find(context.Background(), "inflight.tar.zst"+partialSuffix); err == nil {
		t.Error("expected partial file not to resolve")
	}
}

// TestListMissingDir checks a removed backup dir lists as empty
func TestListMissingDir(t *testing.T) {
	env := newTestEnv(t)
	manager := env.newTestManager(t, FormatTarZstd)

	if err := os.RemoveAll(env.backupDir); err != nil {
		t.Fatalf("remove: %v", err)
	}

	archives, err := manager.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if archives == nil || len(archives) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", archives)
	}
}

// TestFind checks lookup by ID and filename
func TestFind(t *testing.T) {
	env := newTestEnv(t)
	manager := env.newTestManager(t, FormatTarZstd)
	env.writeArchiveFile(t, "2026-01-01T00-00-00-000Z_manual.tar.gz", time.Now())

	tests := []struct {
		id      string
		wantErr error
	}{
		{"2026-01-01T00-00-00-000Z_manual", nil},
		{"2026-01-01T00-00-00-000Z_manual.tar.gz", nil},
		{"2026-01-01T00-00-00-000Z_other", ErrNotFound},
		{"../2026-01-01T00-00-00-000Z_manual.tar.gz", ErrNotFound},
		{"", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			a, err := manager.Find(context.Background(), tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if a.Format != FormatTarGzip {
				t.Errorf("expected tar.gz, got %s", a.Format)
			}
		})
	}
}

// TestDeleteTwice checks the second delete reports ErrNotFound
func TestDeleteTwice(t *testing.T) {
	env := newTestEnv(t)
	manager := env.newTestManager(t, FormatTarZstd)
	env.seedFixture(t)

	archive, err := manager.Create(context.Background(), "manual")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := manager.Delete(context.Background(), archive.Filename); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	if fileExists(archive.Path) {
		t.Error("archive still exists after delete")
	}
	if err := manager.Delete(context.Background(), archive.Filename); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

// TestDeleteUnsupported checks foreign files are refused
func TestDeleteUnsupported(t *testing.T) {
	env := newTestEnv(t)
	manager := env.newTestManager(t, FormatTarZstd)
	path := env.writeArchiveFile(t, "keep.txt", time.Now())

	if err := manager.Delete(context.Background(), "keep.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !fileExists(path) {
		t.Error("unsupported file was deleted")
	}
}
