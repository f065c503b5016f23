// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Package models defines the records persisted by the gallery and the bodies
exchanged over HTTP.

Persisted records:

  - User: account with a bcrypt password hash
  - Photo: gallery entry pointing at a blob in the uploads directory
  - Like: one (user, photo) like, deduplicating Photo.Likes increments
  - Dataset: the aggregate written to the JSON mirror and into backups

JSON keys match the mirror file written by earlier releases (camelCase), so
existing db.json files and archives keep loading. Validation tags are
checked by internal/validation when a mirror or a staged archive is decoded.

API bodies:

  - APIError: {"message": ..., "error": CODE}
  - AuthResponse, PhotoView, LikeResponse
  - BackupInfo, BackupCreatedResponse, BackupLogsResponse
*/
package models
