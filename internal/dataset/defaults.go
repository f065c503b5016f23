// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tomtom215/gallery/internal/auth"
	"github.com/tomtom215/gallery/internal/blobstore"
	"github.com/tomtom215/gallery/internal/logging"
	"github.com/tomtom215/gallery/internal/models"
)

// DefaultAdminID is the id of the seeded admin account. Tokens issued
// before a reseed stay valid for it.
const DefaultAdminID = "1234567890"

// DefaultCategory is assigned to seeded and untitled uploads.
const DefaultCategory = "uncategorized"

// defaultSeedTitle names seeded photos whose filename yields no words.
const defaultSeedTitle = "Photo"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// IsImageFile reports whether name has one of the accepted image extensions.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

func isSampleAsset(name string) bool {
	for _, s := range blobstore.SampleAssets {
		if name == s {
			return true
		}
	}
	return false
}

// InitializeDefault replaces the dataset with one admin account and one
// photo per image in the blob store, then saves it.
func (s *Store) InitializeDefault() error {
	hash, err := auth.HashPassword(s.admin.Password)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	admin := models.User{
		ID:        DefaultAdminID,
		Username:  s.admin.Username,
		Email:     s.admin.Email,
		Password:  hash,
		IsAdmin:   true,
		CreatedAt: now,
	}

	photos, err := s.seedPhotos(admin.ID, now)
	if err != nil {
		return err
	}

	ds := models.Dataset{
		Users:     []models.User{admin},
		Photos:    photos,
		UserLikes: []models.Like{},
	}

	s.mu.Lock()
	s.data = ds
	s.loaded = true
	s.mu.Unlock()

	logging.Info().
		Str("admin", admin.Username).
		Str("email", admin.Email).
		Int("photos", len(photos)).
		Msg("Default dataset initialized")

	return s.Save()
}

func (s *Store) seedPhotos(userID string, now time.Time) ([]models.Photo, error) {
	photos := []models.Photo{}
	if s.blobs == nil {
		return photos, nil
	}

	entries, err := s.blobs.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	titles := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !IsImageFile(e.Name) || isSampleAsset(e.Name) {
			continue
		}
		i := len(photos)
		title := uniqueTitle(TitleFromFilename(e.Name), titles)
		photos = append(photos, models.Photo{
			ID:          strconv.Itoa(i + 1),
			Title:       title,
			Description: "Description for " + title,
			Category:    DefaultCategory,
			Filename:    e.Name,
			Path:        models.UploadPath(e.Name),
			UserID:      userID,
			UploadDate:  now.Add(-time.Duration(i) * 24 * time.Hour),
			Likes:       s.likes(),
		})
	}
	return photos, nil
}

// uniqueTitle returns title, or title with the lowest free numeric suffix
// when a seeded photo already uses it, and marks the result taken. a.jpg and
// a.png become "A" and "A 2".
func uniqueTitle(title string, taken map[string]bool) string {
	if title == "" {
		title = defaultSeedTitle
	}
	candidate := title
	for n := 2; taken[candidate]; n++ {
		candidate = title + " " + strconv.Itoa(n)
	}
	taken[candidate] = true
	return candidate
}

// TitleFromFilename turns "golden_gate-bridge.jpg" into "Golden Gate Bridge".
// Only the first letter of each word changes case.
func TitleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	words := strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
