// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package api

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/dataset"
	"github.com/tomtom215/gallery/internal/imaging"
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/models"
)

const (
	uploadField        = "photo"
	multipartOverhead  = 1 << 20
	defaultPhotoTitle  = "Untitled"
	thumbnailCacheTime = "public, max-age=86400"
)

func randomUploadToken() int64 {
	return rand.Int64N(1_000_000_000) //nolint:gosec // uniqueness only
}

// ListPhotos returns every photo. With a valid token each photo carries
// "liked" for the caller.
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos := h.store.Photos()
	views := make([]models.PhotoView, len(photos))

	claims, authenticated := auth.ClaimsFromContext(r.Context())
	var liked map[string]bool
	if authenticated {
		liked = h.store.LikedSet(claims.ID)
	}

	for i, p := range photos {
		views[i] = models.PhotoView{Photo: p}
		if authenticated {
			v := liked[p.ID]
			views[i].Liked = &v
		}
	}
	respondJSON(w, http.StatusOK, views)
}

// GetPhoto returns one photo. "liked" is always present and false for
// anonymous callers.
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := h.store.PhotoByID(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err, "Photo not found", "")
		return
	}

	liked := false
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		liked = h.store.HasLiked(claims.ID, photo.ID)
	}
	respondJSON(w, http.StatusOK, models.PhotoView{Photo: photo, Liked: &liked})
}

// UploadPhoto stores a multipart image under a generated name and records
// it for the caller.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, CodeValidation, "File too large", err)
			return
		}
		respondError(w, r, http.StatusBadRequest, CodeValidation, "No file uploaded", err)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temp files

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "No file uploaded", err)
		return
	}
	defer file.Close() //nolint:errcheck // read-only

	if header.Size > h.maxUpload {
		respondError(w, r, http.StatusRequestEntityTooLarge, CodeValidation, "File too large", nil)
		return
	}

	ext, content, err := imaging.Sniff(header.Filename, file)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "Only image files are allowed!", err)
		return
	}

	filename := fmt.Sprintf("%s-%d-%d%s", uploadField, h.now().UnixMilli(), h.uploadToken(), ext)
	photo, err := mutate(h.store, func() (models.Photo, error) {
		if _, err := h.blobs.Put(filename, content); err != nil {
			return models.Photo{}, err
		}
		photo, err := h.store.AddPhoto(models.Photo{
			Title:       valueOr(r.FormValue("title"), defaultPhotoTitle),
			Description: r.FormValue("description"),
			Category:    valueOr(r.FormValue("category"), dataset.DefaultCategory),
			Attribution: r.FormValue("attribution"),
			Filename:    filename,
			UserID:      claims.ID,
		})
		if err != nil {
			_ = h.blobs.Remove(filename)
		}
		return photo, err
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Server error", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("photo_id", photo.ID).
		Str("filename", filename).
		Int64("size", header.Size).
		Msg("Photo uploaded")
	respondJSON(w, http.StatusCreated, photo)
}

// UpdatePhoto edits a photo's details. Only the uploader may do so.
func (h *Handler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	var req PhotoUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// The ownership check and the write share one mutation section so a
	// restore cannot swap the photo in between.
	_ = h.store.Mutate(func() error {
		photo, ok := h.ownedPhoto(w, r, "Not authorized to update this photo")
		if !ok {
			return nil
		}

		updated, err := h.store.UpdatePhoto(photo.ID, dataset.PhotoUpdate{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			Attribution: req.Attribution,
		})
		if err != nil {
			respondDomainError(w, r, err, "Photo not found", "")
			return nil
		}
		respondJSON(w, http.StatusOK, updated)
		return nil
	})
}

// DeletePhoto removes a photo, its likes and its blob. Only the uploader
// may do so.
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	_ = h.store.Mutate(func() error {
		photo, ok := h.ownedPhoto(w, r, "Not authorized to delete this photo")
		if !ok {
			return nil
		}

		if _, err := h.store.DeletePhoto(photo.ID); err != nil {
			respondDomainError(w, r, err, "Photo not found", "")
			return nil
		}
		if err := h.blobs.Remove(photo.Filename); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("filename", photo.Filename).Msg("Failed to remove photo file")
		}
		h.thumbnails.Forget(photo.Filename)

		respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Photo deleted successfully"})
		return nil
	})
}

// LikePhoto records one like per caller and photo.
func (h *Handler) LikePhoto(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var likes int
	var already bool
	err := h.store.Mutate(func() error {
		var err error
		likes, already, err = h.store.LikePhoto(claims.ID, chi.URLParam(r, "id"))
		return err
	})
	if err != nil {
		respondDomainError(w, r, err, "Photo not found", "")
		return
	}
	respondJSON(w, http.StatusOK, models.LikeResponse{Likes: likes, AlreadyLiked: already})
}

// Thumbnail renders a JPEG preview of a photo. Images that cannot be
// decoded are served as stored.
func (h *Handler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	photo, err := h.store.PhotoByID(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err, "Photo not found", "")
		return
	}

	size := imaging.ParseSize(r.URL.Query().Get("size"))
	data, err := h.thumbnails.Render(photo.Filename, size)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", thumbnailCacheTime)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case errors.Is(err, imaging.ErrNotRenderable):
		h.serveBlob(w, r, photo.Filename)
	case errors.Is(err, os.ErrNotExist):
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Image not found", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Server error", err)
	}
}

// ServeUpload serves a stored image by filename.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if !imaging.AllowedExtension(name) {
		http.NotFound(w, r)
		return
	}
	h.serveBlob(w, r, name)
}

func (h *Handler) serveBlob(w http.ResponseWriter, r *http.Request, name string) {
	f, err := h.blobs.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close() //nolint:errcheck // read-only

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", imaging.ContentType(name))
	w.Header().Set("Cache-Control", thumbnailCacheTime)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// ownedPhoto loads the {id} photo and checks the caller uploaded it.
func (h *Handler) ownedPhoto(w http.ResponseWriter, r *http.Request, deniedMessage string) (models.Photo, bool) {
	photo, err := h.store.PhotoByID(chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err, "Photo not found", "")
		return models.Photo{}, false
	}

	claims, _ := auth.ClaimsFromContext(r.Context())
	if claims == nil || photo.UserID != claims.ID {
		respondError(w, r, http.StatusForbidden, CodeForbidden, deniedMessage, nil)
		return models.Photo{}, false
	}
	return photo, true
}

func valueOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}
