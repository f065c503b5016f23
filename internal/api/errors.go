// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/gallery/internal/backup"
	"github.com/tomtom215/gallery/internal/dataset"
)

// Error codes returned in the "error" field.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeForbidden  = "AUTHORIZATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
)

// statusForError maps domain errors onto HTTP status codes and error codes.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, dataset.ErrNotFound), errors.Is(err, backup.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, dataset.ErrConflict):
		return http.StatusBadRequest, CodeConflict
	case errors.Is(err, backup.ErrUnsupportedFormat), errors.Is(err, backup.ErrInvalidArchive):
		return http.StatusBadRequest, CodeValidation
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondDomainError writes err with its mapped status. message is shown
// for client errors; server errors always read "Server error" unless
// serverMessage is set.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error, message, serverMessage string) {
	status, code := statusForError(err)
	if status >= http.StatusInternalServerError {
		if serverMessage == "" {
			serverMessage = "Server error"
		}
		respondError(w, r, status, code, serverMessage, err)
		return
	}
	respondError(w, r, status, code, message, err)
}
