// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package imaging

import (
	"context"
	"time"

	"github.com/tomtom215/gallery/internal/logging"
)

// DefaultSweepInterval is how often CacheJanitor sweeps by default.
const DefaultSweepInterval = 10 * time.Minute

// CacheJanitor sweeps expired thumbnails on a fixed interval. The cache
// only expires entries lazily on Get, so thumbnails of photos nobody views
// again would otherwise hold their bytes until evicted. It implements
// suture.Service.
type CacheJanitor struct {
	thumbnails *Thumbnailer
	interval   time.Duration
}

// NewCacheJanitor returns a janitor. An interval <= 0 uses
// DefaultSweepInterval.
func NewCacheJanitor(thumbnails *Thumbnailer, interval time.Duration) *CacheJanitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &CacheJanitor{thumbnails: thumbnails, interval: interval}
}

// Serve implements suture.Service.
func (j *CacheJanitor) Serve(ctx context.Context) error {
	log := logging.WithComponent("thumbnails")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if expired, remaining := j.thumbnails.Sweep(); expired > 0 {
				log.Debug().Int("expired", expired).Int("remaining", remaining).Msg("Swept thumbnail cache")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (j *CacheJanitor) String() string {
	return "thumbnail-janitor"
}
