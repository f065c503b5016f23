// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package api

import (
	"time"

	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/backup"
	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/dataset"
	"github.com/tomtom215/gallery/internal/imaging"
)

// DefaultMaxUploadBytes bounds a photo upload.
const DefaultMaxUploadBytes = 10 << 20

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_auth.go: register, login, me
//   - handlers_photos.go: photo CRUD, likes, thumbnails, uploads
//   - handlers_users.go: admin user management
//   - handlers_backup.go: admin backup management
//   - handlers_health.go: liveness and readiness
type Handler struct {
	store       *dataset.Store
	blobs       *blobstore.Store
	backups     *backup.Manager
	activity    *backup.ActivityLog
	jwtManager  *auth.JWTManager
	thumbnails  *imaging.Thumbnailer
	maxUpload   int64
	now         func() time.Time
	uploadToken func() int64
}

// Dependencies groups what NewHandler needs.
type Dependencies struct {
	Store       *dataset.Store
	Blobs       *blobstore.Store
	Backups     *backup.Manager
	ActivityLog *backup.ActivityLog
	JWTManager  *auth.JWTManager
	Thumbnails  *imaging.Thumbnailer

	// MaxUploadBytes defaults to DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

// NewHandler creates the API handler.
func NewHandler(deps Dependencies) *Handler {
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	activity := deps.ActivityLog
	if activity == nil {
		activity = backup.NewActivityLog("")
	}
	thumbnails := deps.Thumbnails
	if thumbnails == nil {
		thumbnails = imaging.NewThumbnailer(deps.Blobs, nil)
	}

	return &Handler{
		store:       deps.Store,
		blobs:       deps.Blobs,
		backups:     deps.Backups,
		activity:    activity,
		jwtManager:  deps.JWTManager,
		thumbnails:  thumbnails,
		maxUpload:   maxUpload,
		now:         time.Now,
		uploadToken: randomUploadToken,
	}
}
