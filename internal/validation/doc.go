// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

// Package validation wraps go-playground/validator v10 with a shared
// instance, JSON field names in messages, and a "filename" tag that accepts
// only plain base names.
//
// It is used in two places: decoding the dataset mirror (and the db.json of
// a staged backup), and validating API request bodies.
//
//	type registerRequest struct {
//	    Username string `json:"username" validate:"required"`
//	    Email    string `json:"email" validate:"required,email"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
