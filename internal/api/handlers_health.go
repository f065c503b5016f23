// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package api

import (
	"net/http"

	"github.com/tomtom215/gallery/internal/models"
)

// Live reports that the process is serving requests.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{Status: "ok", Timestamp: h.now().UTC()})
}

// Ready reports whether the dataset has been loaded.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.store.Ready() {
		respondJSON(w, http.StatusServiceUnavailable, models.HealthStatus{Status: "loading", Timestamp: h.now().UTC()})
		return
	}
	users, photos, _ := h.store.Stats()
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:    "ready",
		Users:     users,
		Photos:    photos,
		Timestamp: h.now().UTC(),
	})
}
