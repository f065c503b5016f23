// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Package middleware provides chi-compatible HTTP middleware for the gallery
API.

Key Components:

  - RequestID: request and correlation IDs in the context and the
    X-Request-ID header, plus one access log line per request
  - PrometheusMetrics: request count, duration and in-flight gauge, labeled
    by chi route pattern so photo IDs do not explode cardinality
  - Compression: gzip for JSON responses using klauspost/compress. Image
    responses pass through untouched.

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

Thread Safety:

All middleware is safe for concurrent use. Metrics go through the
promauto collectors in internal/metrics.
*/
package middleware
