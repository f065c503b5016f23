// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package dataset

import (
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/models"
)

// ReconcileAgainstBlobStore drops photos whose blob is missing and saves
// when anything changed. It returns the dropped filenames.
func (s *Store) ReconcileAgainstBlobStore() ([]string, error) {
	if s.blobs == nil {
		return nil, nil
	}

	s.mu.Lock()
	kept := make([]models.Photo, 0, len(s.data.Photos))
	var missing []string
	for _, p := range s.data.Photos {
		if s.blobs.Exists(p.Filename) {
			kept = append(kept, p)
			continue
		}
		missing = append(missing, p.Filename)
		logging.Warn().
			Str("photo_id", p.ID).
			Str("file", p.Filename).
			Msg("Photo file missing from uploads, removing record")
	}
	if len(missing) > 0 {
		s.data.Photos = kept
	}
	s.mu.Unlock()

	if len(missing) == 0 {
		return nil, nil
	}

	logging.Info().Int("removed", len(missing)).Msg("Removed photos with missing files")
	return missing, s.Save()
}

// MissingBlobs lists photos whose blob is absent without changing anything.
func (s *Store) MissingBlobs() []models.Photo {
	if s.blobs == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var missing []models.Photo
	for _, p := range s.data.Photos {
		if !s.blobs.Exists(p.Filename) {
			missing = append(missing, p)
		}
	}
	return missing
}
