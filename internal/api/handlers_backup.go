// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gallery/internal/backup"
	"github.com/tomtom215/gallery/internal/models"
)

// defaultBackupLabel names manual backups created without a name.
const defaultBackupLabel = "manual"

// createdLayout renders archive times for display.
const createdLayout = "1/2/2006, 3:04:05 PM"

// ListBackups returns every archive, newest first.
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	archives, err := h.backups.List(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to list backups", err)
		return
	}

	out := make([]models.BackupInfo, len(archives))
	for i, a := range archives {
		out[i] = backupInfo(a)
	}
	respondJSON(w, http.StatusOK, out)
}

func backupInfo(a backup.Archive) models.BackupInfo {
	return models.BackupInfo{
		ID:               a.ID,
		Filename:         a.Filename,
		Format:           a.Format.String(),
		Created:          a.CreatedAt,
		CreatedFormatted: a.CreatedAt.In(time.Local).Format(createdLayout),
		Size:             a.Size,
		SizeFormatted:    backup.FormatBytes(a.Size),
	}
}

// CreateBackup snapshots the dataset and uploads.
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	var req CreateBackupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	label := strings.TrimSpace(req.Name)
	if label == "" {
		label = defaultBackupLabel
	}

	archive, err := h.backups.Create(r.Context(), label)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to create backup", err)
		return
	}
	respondJSON(w, http.StatusOK, models.BackupCreatedResponse{
		Message:    "Backup created successfully",
		BackupPath: archive.Path,
	})
}

// RestoreBackup replaces the live dataset and uploads with an archive.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	archive, err := h.backups.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err, "Backup not found", "Failed to restore backup")
		return
	}

	if _, err := h.backups.Restore(r.Context(), archive.Filename); err != nil {
		respondDomainError(w, r, err, "Backup is invalid", "Failed to restore backup")
		return
	}
	h.thumbnails.Reset()

	respondJSON(w, http.StatusOK, models.BackupCreatedResponse{
		Message:    "Backup restored successfully",
		BackupPath: archive.Path,
	})
}

// DeleteBackup removes an archive.
func (h *Handler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	archive, err := h.backups.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err, "Backup not found", "Failed to delete backup")
		return
	}

	if err := h.backups.Delete(r.Context(), archive.Filename); err != nil {
		respondDomainError(w, r, err, "Backup not found", "Failed to delete backup")
		return
	}
	respondJSON(w, http.StatusOK, models.BackupCreatedResponse{
		Message:    "Backup deleted successfully",
		BackupPath: archive.Path,
	})
}

// BackupLogs returns the parsed backup activity log.
func (h *Handler) BackupLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.activity.Read()
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to read backup logs", err)
		return
	}

	logs := make([]models.BackupLogEntry, len(entries))
	for i, e := range entries {
		logs[i] = models.BackupLogEntry{Timestamp: e.Timestamp, Message: e.Message}
	}
	respondJSON(w, http.StatusOK, models.BackupLogsResponse{Logs: logs})
}
