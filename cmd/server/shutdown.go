// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/gallery/internal/logging"
)

type treeRunner interface {
	ServeBackground(ctx context.Context) <-chan error
	UnstoppedServiceReport() ([]suture.UnstoppedService, error)
}

type finalSaver interface {
	Save() error
}

// runTree serves the tree until ctx is canceled and the tree has stopped,
// logs services that did not stop, then saves the dataset once more. The
// saver already saved on cancel; the last save covers a saver that was in
// backoff when the signal arrived.
func runTree(ctx context.Context, tree treeRunner, store finalSaver) error {
	logging.Info().Msg("Starting supervisor tree")

	// ServeBackground sends exactly one value, once the tree has stopped,
	// and never closes the channel.
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("Could not collect unstopped services")
	}
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	if err := store.Save(); err != nil {
		return fmt.Errorf("final dataset save: %w", err)
	}
	return nil
}
