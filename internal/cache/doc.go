// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Package cache provides a thread-safe LRU cache for rendered thumbnails.

Entries are byte slices keyed by string. The cache is bounded both by entry
count and by the total number of bytes held; whichever limit is reached
first evicts the least recently used entries. Entries also expire after a
TTL, checked lazily on access.

# Usage

	thumbs := cache.NewLRUCache(256, 64<<20, time.Hour)
	if data, ok := thumbs.Get(key); ok {
	    return data
	}
	data := render()
	thumbs.Add(key, data)

Keys for thumbnails combine the blob name, its modification time and the
requested size, so a replaced blob never serves a stale thumbnail. Callers
that delete a blob use RemovePrefix to drop every size rendered for it.
*/
package cache
