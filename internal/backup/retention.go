// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package backup

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/metrics"
)

// Matching returns the archives whose filename contains prefix, oldest
// first.
func (m *Manager) Matching(ctx context.Context, prefix string) ([]Archive, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Archive, 0, len(all))
	for _, a := range all {
		if strings.Contains(a.Filename, prefix) {
			matched = append(matched, a)
		}
	}
	sortOldestFirst(matched)
	return matched, nil
}

func sortOldestFirst(archives []Archive) {
	sort.SliceStable(archives, func(i, j int) bool {
		if !archives[i].CreatedAt.Equal(archives[j].CreatedAt) {
			return archives[i].CreatedAt.Before(archives[j].CreatedAt)
		}
		return archives[i].Filename < archives[j].Filename
	})
}

// Rotate keeps the newest maxKept archives whose filename contains prefix
// and deletes the rest. Other archives are never touched. It returns the
// deleted filenames, oldest first.
func (m *Manager) Rotate(ctx context.Context, prefix string, maxKept int) ([]string, error) {
	if maxKept < 0 {
		return nil, fmt.Errorf("keep count %d: %w", maxKept, ErrInvalidRetention)
	}

	matched, err := m.Matching(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if len(matched) <= maxKept {
		return []string{}, nil
	}

	excess := matched[:len(matched)-maxKept]
	deleted := make([]string, 0, len(excess))
	for _, a := range excess {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := m.Delete(ctx, a.Filename); err != nil {
			metrics.RecordRetentionDeleted(len(deleted))
			return deleted, fmt.Errorf("failed to delete %s: %w", a.Filename, err)
		}
		deleted = append(deleted, a.Filename)
	}

	metrics.RecordRetentionDeleted(len(deleted))
	logging.Info().
		Str("prefix", prefix).
		Int("matched", len(matched)).
		Int("kept", maxKept).
		Int("deleted", len(deleted)).
		Msg("Backup rotation completed")

	return deleted, nil
}
