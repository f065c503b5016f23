// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

/*
Package dataset keeps the gallery's users, photos and likes in memory and
mirrors them to a JSON file.

Persistence:

  - Load decodes and validates the mirror. It returns ErrMirrorMissing,
    ErrMirrorEmpty or ErrMirrorInvalid and never partially applies a
    document.
  - Save writes <mirror>.tmp, fsyncs it, renames it over the mirror and
    fsyncs the directory. Saves are serialized by their own mutex, so a
    reader of the mirror only ever sees a complete document.
  - Open is the server boot sequence: Load then ReconcileAgainstBlobStore,
    or InitializeDefault when the mirror cannot be used.

Concurrency: an RWMutex guards the in-memory dataset. Readers get deep
copies (Snapshot, Photos, PhotoByID) and never observe later mutations.
Changes spanning the blob store and the records run in Mutate; Restore
runs in Exclusive, which waits for every Mutate section and holds new ones
off until the swap is done.

PeriodicSaver is a suture service that saves on an interval and once more
on shutdown.
*/
package dataset
