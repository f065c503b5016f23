// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package dataset

import (
	"context"
	"time"

	"github.com/tomtom215/gallery/internal/logging"
)

// Saver is what PeriodicSaver persists.
type Saver interface {
	Save() error
}

// PeriodicSaver saves the dataset on a fixed interval and once more when
// its context is canceled. It implements suture.Service.
type PeriodicSaver struct {
	store    Saver
	interval time.Duration
}

// NewPeriodicSaver returns a saver. An interval <= 0 disables the ticker;
// the shutdown save still runs.
func NewPeriodicSaver(store Saver, interval time.Duration) *PeriodicSaver {
	return &PeriodicSaver{store: store, interval: interval}
}

// Serve implements suture.Service.
func (p *PeriodicSaver) Serve(ctx context.Context) error {
	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			// Save logs its own failures; keep ticking.
			_ = p.store.Save()
		case <-ctx.Done():
			logging.Info().Msg("Saving dataset before shutdown")
			if err := p.store.Save(); err != nil {
				logging.Error().Err(err).Msg("Final dataset save failed")
			}
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (p *PeriodicSaver) String() string {
	return "dataset-saver"
}
