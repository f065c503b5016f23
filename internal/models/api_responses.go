// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package models

import (
	"time"
)

// APIError is the error body returned by every endpoint.
//
// Message is what the web client displays. Code is machine readable:
//   - VALIDATION_ERROR: invalid input parameters
//   - AUTHENTICATION_ERROR: missing or invalid token
//   - AUTHORIZATION_ERROR: insufficient permissions
//   - NOT_FOUND: resource doesn't exist
//   - CONFLICT: duplicate user
//   - INTERNAL_ERROR: anything else
//
// Example:
//
//	{
//	  "message": "Photo not found",
//	  "error": "NOT_FOUND"
//	}
type APIError struct {
	Message string                 `json:"message"`
	Code    string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// PhotoView is a photo as seen by one caller. Liked is only set when the
// request carried a valid token.
type PhotoView struct {
	Photo
	Liked *bool `json:"liked,omitempty"`
}

// LikeResponse reports the like count after a like request.
type LikeResponse struct {
	Likes        int  `json:"likes"`
	AlreadyLiked bool `json:"alreadyLiked"`
}

// BackupInfo describes one archive for the backup manager UI.
type BackupInfo struct {
	ID               string    `json:"id"`
	Filename         string    `json:"filename"`
	Format           string    `json:"format"`
	Created          time.Time `json:"created"`
	CreatedFormatted string    `json:"createdFormatted"`
	Size             int64     `json:"size"`
	SizeFormatted    string    `json:"sizeFormatted"`
}

// BackupCreatedResponse is returned after a manual backup.
type BackupCreatedResponse struct {
	Message    string `json:"message"`
	BackupPath string `json:"backupPath"`
}

// BackupLogEntry is one parsed line of the backup activity log.
type BackupLogEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// BackupLogsResponse wraps the activity log.
type BackupLogsResponse struct {
	Logs []BackupLogEntry `json:"logs"`
}

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status    string    `json:"status"`
	Photos    int       `json:"photos,omitempty"`
	Users     int       `json:"users,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
