// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/dataset"
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/models"
)

// ListUsers returns every account without password hashes.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.store.Users()
	out := make([]models.PublicUser, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	respondJSON(w, http.StatusOK, out)
}

// GetUser returns one account.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.UserByID(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err, "User not found", "")
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

// CreateUser adds an account, optionally with admin rights.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "Invalid request body", err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "Please provide username, email and password", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Server error", err)
		return
	}

	user, err := mutate(h.store, func() (models.User, error) {
		return h.store.AddUser(models.User{
			Username: req.Username,
			Email:    req.Email,
			Password: hash,
			IsAdmin:  req.IsAdmin,
		})
	})
	if errors.Is(err, dataset.ErrConflict) {
		respondError(w, r, http.StatusBadRequest, CodeConflict, "User with that email or username already exists", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Server error", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("user_id", user.ID).Bool("admin", user.IsAdmin).Msg("User created")
	respondJSON(w, http.StatusCreated, user.Public())
}

// UpdateUser edits an account. A new password is hashed before storing.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	update := dataset.UserUpdate{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		IsAdmin:  req.IsAdmin,
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, CodeInternal, "Server error", err)
			return
		}
		update.PasswordHash = hash
	}

	user, err := mutate(h.store, func() (models.User, error) {
		return h.store.UpdateUser(chi.URLParam(r, "id"), update)
	})
	if errors.Is(err, dataset.ErrConflict) {
		respondError(w, r, http.StatusBadRequest, CodeConflict, "Username or email already in use", nil)
		return
	}
	if err != nil {
		respondDomainError(w, r, err, "User not found", "")
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && claims.ID == id {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "Cannot delete your own account", nil)
		return
	}

	if err := h.store.Mutate(func() error { return h.store.DeleteUser(id) }); err != nil {
		respondDomainError(w, r, err, "User not found", "")
		return
	}
	logging.Ctx(r.Context()).Info().Str("user_id", id).Msg("User deleted")
	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "User deleted successfully"})
}
