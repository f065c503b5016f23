// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Command server runs the gallery HTTP API.

Startup order:

 1. Configuration: koanf v2 (defaults, optional config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Blob store: the uploads directory
 4. Dataset: load the JSON mirror, or seed an admin and one photo per
    image already in uploads when the mirror is missing or invalid
 5. Backups: snapshot manager, activity log and scheduler
 6. Auth: JWT manager and the Casbin route policy
 7. Supervisor tree: periodic saver, backup scheduler, HTTP server

# Configuration

	PORT=5000                     # HTTP port
	DB_PATH=data/db.json          # dataset mirror
	UPLOADS_DIR=data/uploads
	BACKUP_DIR=data/backups
	BACKUP_FORMAT=tar.zst         # zip, tar.gz or tar.zst
	BACKUP_SCHEDULE_ENABLED=false
	BACKUP_SCHEDULE_INTERVAL=24h
	BACKUP_MAX_KEPT=10
	JWT_SECRET=<32+ chars>        # required
	ADMIN_USERNAME=admin          # seed account on first run
	ADMIN_PASSWORD=password123
	FORCE_REINIT=false            # discard the mirror at startup
	SAVE_INTERVAL=5m
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the tree. The HTTP server drains within
HTTP_SHUTDOWN_TIMEOUT, the saver writes the mirror, and main saves once more
before exiting. A failed final save exits 1.

Backups are also available offline through cmd/gallery-backup.
*/
package main
