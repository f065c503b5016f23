// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

// Package backup snapshots the gallery's dataset and uploads into single
// archive files and restores them.
//
// # Overview
//
// The package provides:
//   - Snapshot creation in zip, tar.gz or tar.zst
//   - Restore through a staging directory, validated before live state changes
//   - A catalog of the archives in the backup directory
//   - Prefix-scoped rotation of old archives
//   - A scheduler that creates and rotates archives on an interval
//   - A plain text activity log of scheduled runs
//
// # Archive Layout
//
//	<UTC timestamp>[_label].<ext>
//	├── db.json     (the dataset, pretty-printed)
//	└── uploads/    (every blob except the .gitkeep sentinel)
//
// The timestamp is ISO 8601 with milliseconds and ':' and '.' replaced by
// '-', for example 2026-10-19T08-30-00-123Z_manual.tar.zst. Archives are
// written to <name>.partial and renamed once complete; the catalog never
// lists partial files.
//
// # Formats
//
// The container is chosen by file extension on every read path. New
// archives use Config.Format:
//
//	FormatZip      .zip      deflate, best compression
//	FormatTarGzip  .tar.gz   gzip, best compression
//	FormatTarZstd  .tar.zst  zstd, SpeedBestCompression (default)
//
// # Concurrency
//
// Manager holds a sync.RWMutex. Create, List and Delete take the read side
// and may overlap; Restore takes the write side so no snapshot reads the
// blob store while it is being replaced. Restore also swaps inside the
// source's Exclusive section, which keeps uploads and record changes out.
//
// # Usage
//
//	cfg, err := backup.ConfigFromApp(appCfg.Backup)
//	if err != nil {
//		return err
//	}
//	manager, err := backup.NewManager(cfg, store, blobs)
//	if err != nil {
//		return err
//	}
//
//	archive, err := manager.Create(ctx, "manual")
//	...
//	result, err := manager.Restore(ctx, archive.Filename)
package backup
