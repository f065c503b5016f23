// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Package metrics registers the gallery's Prometheus collectors with promauto
and offers small Record helpers so callers never touch label values directly.

Metrics are served at /metrics by the API router.

HTTP:
  - gallery_api_requests_total{method,path,status}
  - gallery_api_request_duration_seconds{method,path}
  - gallery_api_active_requests

Dataset Store:
  - gallery_dataset_saves_total{result}
  - gallery_dataset_save_duration_seconds

Backups:
  - gallery_backup_operations_total{operation,result}
  - gallery_backup_duration_seconds{operation}
  - gallery_backup_last_size_bytes
  - gallery_retention_deleted_total

Thumbnails:
  - gallery_thumbnail_cache_hits_total
  - gallery_thumbnail_cache_misses_total

The path label is the chi route pattern (for example /api/photos/{id}), not
the raw URL, to keep cardinality bounded.
*/
package metrics
