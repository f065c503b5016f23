// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Package supervisor runs the gallery's long-lived services under suture v4.

Services are grouped into three child supervisors so one failing concern
restarts on its own:

	gallery
	├── data-layer     dataset.PeriodicSaver
	├── backup-layer   backup.Scheduler
	└── api-layer      services.HTTPServerService

Supervisor events (service failures, restarts, backoff) go through
sutureslog into the zerolog-backed slog logger from package logging.

Usage in main:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddDataService(dataset.NewPeriodicSaver(store, cfg.Storage.SaveInterval))
	tree.AddBackupService(backup.NewScheduler(manager, activity))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := tree.ServeBackground(ctx)

Canceling the context stops every layer. The data layer's saver writes the
mirror one last time as it stops.
*/
package supervisor
