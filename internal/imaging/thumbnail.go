// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoder registration
	"image/jpeg"
	_ "image/png" // decoder registration
	"os"
	"strconv"

	"github.com/nfnt/resize"

	"github.com/tomtom215/gallery/internal/cache"
	"github.com/tomtom215/gallery/internal/metrics"
)

// Thumbnail size bounds in pixels.
const (
	DefaultSize = 300
	MinSize     = 32
	MaxSize     = 1024
)

const jpegQuality = 85

// ErrNotRenderable means the blob cannot be decoded; serve it as is.
var ErrNotRenderable = errors.New("image cannot be rendered")

// Opener opens stored blobs.
type Opener interface {
	Open(name string) (*os.File, error)
}

// Thumbnailer renders and caches JPEG thumbnails of stored blobs.
type Thumbnailer struct {
	blobs Opener
	cache *cache.LRUCache
}

// NewThumbnailer creates a thumbnailer. A nil cache disables caching.
func NewThumbnailer(blobs Opener, c *cache.LRUCache) *Thumbnailer {
	return &Thumbnailer{blobs: blobs, cache: c}
}

// ParseSize reads the size query value. Empty or invalid input gives
// DefaultSize; numbers are clamped to [MinSize, MaxSize].
func ParseSize(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultSize
	}
	return ClampSize(n)
}

// ClampSize bounds n to [MinSize, MaxSize].
func ClampSize(n int) int {
	switch {
	case n < MinSize:
		return MinSize
	case n > MaxSize:
		return MaxSize
	default:
		return n
	}
}

// CacheKeyPrefix is the prefix shared by every cached size of name.
func CacheKeyPrefix(name string) string {
	return name + "|"
}

// Render returns a JPEG thumbnail of the named blob fitting in a size x size
// box. Blob errors such as os.ErrNotExist are returned wrapped.
func (t *Thumbnailer) Render(name string, size int) ([]byte, error) {
	size = ClampSize(size)

	f, err := t.blobs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}

	key := CacheKeyPrefix(name) + strconv.FormatInt(info.ModTime().UnixNano(), 10) + "|" + strconv.Itoa(size)
	if t.cache != nil {
		if data, ok := t.cache.Get(key); ok {
			metrics.RecordThumbnailCache(true)
			return data, nil
		}
		metrics.RecordThumbnailCache(false)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotRenderable, name, err)
	}

	data, err := encodeThumbnail(img, size)
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		t.cache.Add(key, data)
	}
	return data, nil
}

// Forget drops every cached thumbnail of name.
func (t *Thumbnailer) Forget(name string) {
	if t.cache != nil {
		t.cache.RemovePrefix(CacheKeyPrefix(name))
	}
}

// Sweep drops expired thumbnails and returns how many went and how many
// remain.
func (t *Thumbnailer) Sweep() (expired, remaining int) {
	if t.cache == nil {
		return 0, 0
	}
	expired = t.cache.CleanupExpired()
	remaining = t.cache.Len()
	metrics.RecordThumbnailSweep(expired, remaining)
	return expired, remaining
}

// Reset drops all cached thumbnails.
func (t *Thumbnailer) Reset() {
	if t.cache != nil {
		t.cache.Clear()
	}
}

func encodeThumbnail(img image.Image, size int) ([]byte, error) {
	thumb := resize.Thumbnail(uint(size), uint(size), img, resize.Lanczos3) //nolint:gosec // size is clamped
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
