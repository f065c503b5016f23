// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/authz"
	"github.com/tomtom215/gallery/internal/middleware"
)

// Router wires handlers, authentication and authorization onto chi.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil chiMiddleware uses defaults.
func NewRouter(handler *Handler, authn *auth.Middleware, authzMW *authz.Middleware, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		authn:         authn,
		authz:         authzMW,
		chiMiddleware: chiMiddleware,
	}
}

// SetupChi builds the HTTP handler.
//
// Photo reads are public and use optional authentication for "liked".
// Writes require a token and pass the Casbin policy; photo ownership is
// checked in the handlers. User and backup management is admin only.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(APISecurityHeaders())
	r.Use(router.chiMiddleware.CORS())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/uploads/{filename}", h.ServeUpload)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Compression)

		r.Get("/health/live", h.Live)
		r.Get("/health/ready", h.Ready)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", h.Register)
				r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
				r.With(router.authn.Authenticate, router.authz.Authorize).Get("/me", h.Me)
			})

			r.Route("/photos", func(r chi.Router) {
				r.With(router.authn.Optional).Get("/", h.ListPhotos)
				r.With(router.authn.Optional).Get("/{id}", h.GetPhoto)
				r.Get("/{id}/thumbnail", h.Thumbnail)

				r.Group(func(r chi.Router) {
					r.Use(router.authn.Authenticate, router.authz.Authorize)
					r.Post("/", h.UploadPhoto)
					r.Put("/{id}", h.UpdatePhoto)
					r.Delete("/{id}", h.DeletePhoto)
					r.Post("/{id}/like", h.LikePhoto)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(router.authn.Authenticate, router.authz.Authorize)
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})

			r.Route("/backups", func(r chi.Router) {
				r.Use(router.authn.Authenticate, router.authz.Authorize)
				r.Get("/", h.ListBackups)
				r.Post("/", h.CreateBackup)
				r.Get("/logs", h.BackupLogs)
				r.Post("/restore/{id}", h.RestoreBackup)
				r.Delete("/{id}", h.DeleteBackup)
			})
		})
	})

	return r
}
