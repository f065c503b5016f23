// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

// Package authz enforces role-based access to the HTTP API using Casbin.
//
// Callers carry one of two roles, derived from the JWT claims: "admin" or
// "user". Admin inherits every user permission. Policies match the request
// path with keyMatch2 and the action with a regular expression:
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
//
// Actions are derived from the HTTP method: GET, HEAD and OPTIONS read,
// DELETE deletes, everything else writes.
//
// # Usage
//
//	enforcer, err := authz.NewEnforcer(nil)
//	if err != nil {
//	    return err
//	}
//	mw := authz.NewMiddleware(enforcer)
//	r.With(authMW.Authenticate, mw.Authorize).Get("/api/users", h.ListUsers)
//
// The model and policy are embedded. EnforcerConfig can point at files on
// disk to override either one.
package authz
