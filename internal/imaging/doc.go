// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

// Package imaging validates uploaded images and renders thumbnails.
//
// Uploads are accepted only when both the file extension and the sniffed
// content type (gabriel-vasile/mimetype) are one of JPEG, PNG, GIF or WebP.
// Thumbnails are JPEG, resized with nfnt/resize using Lanczos3 and kept in
// a byte-bounded LRU cache. Formats the standard decoders cannot read, WebP
// included, yield ErrNotRenderable and callers serve the original blob.
package imaging
