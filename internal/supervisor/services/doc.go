// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

// Package services adapts blocking components to suture.Service.
//
// HTTPServerService turns http.Server's ListenAndServe/Shutdown pair into
// a context-driven Serve. The dataset saver and the backup scheduler
// implement suture.Service themselves and need no wrapper.
package services
