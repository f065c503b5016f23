// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/dataset"
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/models"
)

// Register creates a user account and returns a token for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Server error", err)
		return
	}

	user, err := mutate(h.store, func() (models.User, error) {
		return h.store.AddUser(models.User{
			Username: strings.TrimSpace(req.Username),
			Email:    strings.TrimSpace(req.Email),
			Password: hash,
		})
	})
	if errors.Is(err, dataset.ErrConflict) {
		respondError(w, r, http.StatusBadRequest, CodeConflict, "User already exists", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Server error", err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
	logging.Ctx(r.Context()).Info().Str("user_id", user.ID).Msg("User registered")
}

// Login exchanges credentials for a token. Unknown users and wrong
// passwords get the same answer.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Identifier == "" || req.Password == "" {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "Invalid credentials", err)
		return
	}

	user, err := h.store.UserByIdentifier(req.Identifier)
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "Invalid credentials", nil)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

// Me returns the caller's account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	user, err := h.store.UserByID(claims.ID)
	if err != nil {
		respondDomainError(w, r, err, "User not found", "")
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user models.User) {
	token, err := h.jwtManager.GenerateToken(user.ID, user.IsAdmin)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Server error", err)
		return
	}
	respondJSON(w, status, models.AuthResponse{Token: token, User: user.Public()})
}
