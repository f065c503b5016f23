// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package authz

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/models"
)

// DeniedMessage is returned to callers whose role lacks the permission.
const DeniedMessage = "Access denied. Admin privileges required."

// Middleware enforces the role policy on authenticated requests.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Authorize maps the request method to an action and checks it against the
// request path for the caller's role. It must run after auth.Authenticate.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "No token, authorization denied", "AUTHENTICATION_ERROR")
			return
		}

		role := claims.Role()
		action := methodToAction(r.Method)
		allowed, err := m.enforcer.Enforce(role, r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Authorization error")
			writeError(w, http.StatusInternalServerError, "Server error", "INTERNAL_ERROR")
			return
		}

		if !allowed {
			logging.Ctx(r.Context()).Debug().
				Str("user_id", claims.ID).
				Str("role", role).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Authorization denied")
			writeError(w, http.StatusForbidden, DeniedMessage, "AUTHORIZATION_ERROR")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionWrite
	}
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	body, _ := json.Marshal(models.APIError{Message: message, Code: code})
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
