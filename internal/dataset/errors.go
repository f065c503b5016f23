// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package dataset

import "errors"

// Load errors. Open treats all three as "start from defaults"; the CLI
// reports them and exits.
var (
	ErrMirrorMissing = errors.New("dataset mirror not found")
	ErrMirrorEmpty   = errors.New("dataset mirror is empty")
	ErrMirrorInvalid = errors.New("dataset mirror is invalid")
)

// Mutation errors.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)
