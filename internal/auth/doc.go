// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Package auth handles local account authentication.

  - HashPassword / CheckPassword: bcrypt, cost 10
  - JWTManager: HS256 tokens carrying {id, isAdmin}, one hour by default
  - Middleware.Authenticate: 401 unless a valid token is present
  - Middleware.Optional: attaches claims when present (photo listings use
    this to add the caller's liked flag)

Tokens are read from the x-auth-token header first and from
"Authorization: Bearer <token>" second.

Role checks live in internal/authz. Ownership checks live in the handlers.
*/
package auth
