// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// syncDir persists renames in dir. Errors are ignored; not every
// filesystem supports fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir) //nolint:gosec // G304: backup directory
	if err != nil {
		return
	}
	d.Sync()  //nolint:errcheck,gosec // Best effort
	d.Close() //nolint:errcheck,gosec // read-only handle
}

// archiveFromPath stats an archive file
func archiveFromPath(path string) (*Archive, error) {
	name := filepath.Base(path)
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	return &Archive{
		ID:        trimExt(name, format),
		Filename:  name,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
		Format:    format,
	}, nil
}

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a size in base-1024 units with up to two decimals,
// for example "0 Bytes", "1.5 KB", "2 MB".
func FormatBytes(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}

	i := 0
	value := float64(size)
	for value >= 1024 && i < len(byteUnits)-1 {
		value /= 1024
		i++
	}
	value = math.Round(value*100) / 100

	return strconv.FormatFloat(value, 'f', -1, 64) + " " + byteUnits[i]
}
