// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import "errors"

var (
	// ErrNotFound is returned when an archive does not exist in the backup
	// directory.
	ErrNotFound = errors.New("backup not found")

	// ErrUnsupportedFormat is returned for file extensions that are not a
	// known archive format.
	ErrUnsupportedFormat = errors.New("unsupported backup format")

	// ErrInvalidArchive is returned when an archive cannot be read or its
	// db.json is missing or invalid.
	ErrInvalidArchive = errors.New("invalid backup archive")

	// ErrInvalidRetention is returned for a negative keep count.
	ErrInvalidRetention = errors.New("invalid retention count")
)
