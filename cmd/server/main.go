// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/gallery/internal/api"
	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/authz"
	"github.com/tomtom215/gallery/internal/backup"
	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/cache"
	"github.com/tomtom215/gallery/internal/config"
	"github.com/tomtom215/gallery/internal/dataset"
	"github.com/tomtom215/gallery/internal/imaging"
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/supervisor"
	"github.com/tomtom215/gallery/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("mirror", cfg.Storage.MirrorPath).
		Str("uploads", cfg.Storage.UploadsDir).
		Str("backups", cfg.Backup.Dir).
		Str("format", cfg.Backup.Format).
		Msg("Starting gallery server")

	blobs, err := blobstore.New(cfg.Storage.UploadsDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open uploads directory")
	}

	store := dataset.New(dataset.Options{
		MirrorPath: cfg.Storage.MirrorPath,
		Admin: dataset.AdminSeed{
			Username: cfg.Security.AdminUsername,
			Email:    cfg.Security.AdminEmail,
			Password: cfg.Security.AdminPassword,
		},
		ForceReinit: cfg.Storage.ForceReinit,
	}, blobs)
	if err := store.Open(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to open dataset")
	}
	users, photos, likes := store.Stats()
	logging.Info().Int("users", users).Int("photos", photos).Int("likes", likes).Msg("Dataset ready")

	backupCfg, err := backup.ConfigFromApp(cfg.Backup)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid backup configuration")
	}
	backups, err := backup.NewManager(backupCfg, store, blobs)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize backup manager")
	}
	activity := backup.NewActivityLog(backupCfg.LogFile)

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	enforcer, err := authz.NewEnforcer(nil)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load authorization policy")
	}

	thumbnails := imaging.NewThumbnailer(blobs, cache.NewLRUCache(0, 0, 0))
	handler := api.NewHandler(api.Dependencies{
		Store:          store,
		Blobs:          blobs,
		Backups:        backups,
		ActivityLog:    activity,
		JWTManager:     jwtManager,
		Thumbnails:     thumbnails,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	router := api.NewRouter(
		handler,
		auth.NewMiddleware(jwtManager),
		authz.NewMiddleware(enforcer),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)),
	)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(dataset.NewPeriodicSaver(store, cfg.Storage.SaveInterval))
	tree.AddBackupService(backup.NewScheduler(backups, activity))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddAPIService(imaging.NewCacheJanitor(thumbnails, imaging.DefaultSweepInterval))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := runTree(ctx, tree, store); err != nil {
		logging.Err(err).Msg("Final dataset save failed")
		os.Exit(1)
	}
	logging.Info().Msg("Gallery server stopped")
}
