// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Package api provides the HTTP surface of the gallery.

Routes are served by chi:

	GET    /api/health/live              liveness
	GET    /api/health/ready             readiness with dataset counts
	POST   /api/auth/register            create an account, returns a token
	POST   /api/auth/login               email or username login
	GET    /api/auth/me                  current user
	GET    /api/photos                   list photos ("liked" when authenticated)
	POST   /api/photos                   multipart upload, field "photo"
	GET    /api/photos/{id}              one photo
	PUT    /api/photos/{id}              owner update
	DELETE /api/photos/{id}              owner delete
	POST   /api/photos/{id}/like         like once per user
	GET    /api/photos/{id}/thumbnail    JPEG thumbnail, ?size=32..1024
	/api/users...                        admin account management
	/api/backups...                      admin snapshot management
	GET    /uploads/{filename}           stored images
	GET    /metrics                      Prometheus

Tokens are read from the x-auth-token header or an Authorization bearer
header. Route access is decided by the Casbin policy in package authz;
photo ownership is checked by the handlers.

Error bodies are models.APIError: a human message under "message" and a
machine code under "error".
*/
package api
