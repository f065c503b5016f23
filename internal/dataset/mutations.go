// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package dataset

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/gallery/internal/models"
)

// Every mutation applies its change in memory and then calls persist. A
// failed save is logged and counted by Save and does not undo the change;
// the next successful save (a later mutation or the periodic saver) writes
// it out.
func (s *Store) persist() {
	_ = s.Save()
}

// NewID returns an id for a new record.
func NewID() string {
	return uuid.NewString()
}

// Photos returns every photo.
func (s *Store) Photos() []models.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone().Photos
}

// PhotoByID returns the photo with id.
func (s *Store) PhotoByID(id string) (models.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.photoIndex(id); i >= 0 {
		return clonePhoto(s.data.Photos[i]), nil
	}
	return models.Photo{}, fmt.Errorf("photo %s: %w", id, ErrNotFound)
}

func (s *Store) photoIndex(id string) int {
	for i := range s.data.Photos {
		if s.data.Photos[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePhoto(p models.Photo) models.Photo {
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}

// AddPhoto appends p. Empty ID and Path are filled in.
func (s *Store) AddPhoto(p models.Photo) (models.Photo, error) {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.Path == "" {
		p.Path = models.UploadPath(p.Filename)
	}
	if p.UploadDate.IsZero() {
		p.UploadDate = s.now().UTC()
	}

	s.mu.Lock()
	if s.photoIndex(p.ID) >= 0 {
		s.mu.Unlock()
		return models.Photo{}, fmt.Errorf("photo %s: %w", p.ID, ErrConflict)
	}
	s.data.Photos = append(s.data.Photos, p)
	s.mu.Unlock()

	s.persist()
	return clonePhoto(p), nil
}

// PhotoUpdate carries the editable fields of a photo. Nil fields are left
// unchanged; empty strings are ignored except for Attribution, which may
// be cleared.
type PhotoUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Attribution *string
}

// UpdatePhoto applies u and stamps UpdatedAt.
func (s *Store) UpdatePhoto(id string, u PhotoUpdate) (models.Photo, error) {
	s.mu.Lock()
	i := s.photoIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Photo{}, fmt.Errorf("photo %s: %w", id, ErrNotFound)
	}

	p := &s.data.Photos[i]
	if u.Title != nil && *u.Title != "" {
		p.Title = *u.Title
	}
	if u.Description != nil && *u.Description != "" {
		p.Description = *u.Description
	}
	if u.Category != nil && *u.Category != "" {
		p.Category = *u.Category
	}
	if u.Attribution != nil {
		p.Attribution = *u.Attribution
	}
	now := s.now().UTC()
	p.UpdatedAt = &now
	updated := clonePhoto(*p)
	s.mu.Unlock()

	s.persist()
	return updated, nil
}

// DeletePhoto removes the photo and its likes and returns the removed
// record so the caller can delete its blob.
func (s *Store) DeletePhoto(id string) (models.Photo, error) {
	s.mu.Lock()
	i := s.photoIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Photo{}, fmt.Errorf("photo %s: %w", id, ErrNotFound)
	}
	removed := s.data.Photos[i]
	s.data.Photos = append(s.data.Photos[:i], s.data.Photos[i+1:]...)

	likes := s.data.UserLikes[:0]
	for _, l := range s.data.UserLikes {
		if l.PhotoID != id {
			likes = append(likes, l)
		}
	}
	s.data.UserLikes = likes
	s.mu.Unlock()

	s.persist()
	return removed, nil
}

// HasLiked reports whether userID has liked photoID.
func (s *Store) HasLiked(userID, photoID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasLikedLocked(userID, photoID)
}

func (s *Store) hasLikedLocked(userID, photoID string) bool {
	for _, l := range s.data.UserLikes {
		if l.UserID == userID && l.PhotoID == photoID {
			return true
		}
	}
	return false
}

// LikedSet returns the ids of photos userID has liked.
func (s *Store) LikedSet(userID string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[string]bool)
	for _, l := range s.data.UserLikes {
		if l.UserID == userID {
			set[l.PhotoID] = true
		}
	}
	return set
}

// LikePhoto records one like per (user, photo). already is true when the
// pair was recorded before; the count is then returned unchanged.
func (s *Store) LikePhoto(userID, photoID string) (likes int, already bool, err error) {
	s.mu.Lock()
	i := s.photoIndex(photoID)
	if i < 0 {
		s.mu.Unlock()
		return 0, false, fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
	}
	if s.hasLikedLocked(userID, photoID) {
		likes = s.data.Photos[i].Likes
		s.mu.Unlock()
		return likes, true, nil
	}

	s.data.UserLikes = append(s.data.UserLikes, models.Like{
		UserID:    userID,
		PhotoID:   photoID,
		Timestamp: s.now().UTC(),
	})
	s.data.Photos[i].Likes++
	likes = s.data.Photos[i].Likes
	s.mu.Unlock()

	s.persist()
	return likes, false, nil
}

// ResetLikes zeroes every like count and clears the like records. It
// returns how many photos had likes, the total likes cleared and the
// number of like records removed.
func (s *Store) ResetLikes() (photos, likes, records int, err error) {
	s.mu.Lock()
	for i := range s.data.Photos {
		if s.data.Photos[i].Likes > 0 {
			photos++
			likes += s.data.Photos[i].Likes
		}
		s.data.Photos[i].Likes = 0
	}
	records = len(s.data.UserLikes)
	s.data.UserLikes = []models.Like{}
	s.mu.Unlock()

	return photos, likes, records, s.Save()
}

// Users returns every user.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.data.Users))
	copy(out, s.data.Users)
	return out
}

// UserByID returns the user with id.
func (s *Store) UserByID(id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.userIndex(id); i >= 0 {
		return s.data.Users[i], nil
	}
	return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// UserByIdentifier finds a user by email or username. Email matching is
// case-insensitive.
func (s *Store) UserByIdentifier(identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.data.Users {
		if strings.EqualFold(u.Email, identifier) || u.Username == identifier {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %s: %w", identifier, ErrNotFound)
}

func (s *Store) userIndex(id string) int {
	for i := range s.data.Users {
		if s.data.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// conflictLocked reports whether another user (not exceptID) already uses
// username or email.
func (s *Store) conflictLocked(exceptID, username, email string) bool {
	for _, u := range s.data.Users {
		if u.ID == exceptID {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && strings.EqualFold(u.Email, email)) {
			return true
		}
	}
	return false
}

// AddUser appends u. The password must already be hashed. A duplicate
// username or email returns ErrConflict.
func (s *Store) AddUser(u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	if s.userIndex(u.ID) >= 0 || s.conflictLocked("", u.Username, u.Email) {
		s.mu.Unlock()
		return models.User{}, fmt.Errorf("user %s: %w", u.Username, ErrConflict)
	}
	s.data.Users = append(s.data.Users, u)
	s.mu.Unlock()

	s.persist()
	return u, nil
}

// UserUpdate carries the editable fields of a user. PasswordHash must
// already be hashed.
type UserUpdate struct {
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      *bool
}

// UpdateUser applies non-empty fields of u.
func (s *Store) UpdateUser(id string, u UserUpdate) (models.User, error) {
	s.mu.Lock()
	i := s.userIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if s.conflictLocked(id, u.Username, u.Email) {
		s.mu.Unlock()
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrConflict)
	}

	user := &s.data.Users[i]
	if u.Username != "" {
		user.Username = u.Username
	}
	if u.Email != "" {
		user.Email = u.Email
	}
	if u.PasswordHash != "" {
		user.Password = u.PasswordHash
	}
	if u.IsAdmin != nil {
		user.IsAdmin = *u.IsAdmin
	}
	updated := *user
	s.mu.Unlock()

	s.persist()
	return updated, nil
}

// DeleteUser removes a user. Their photos and likes are kept.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	i := s.userIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	s.data.Users = append(s.data.Users[:i], s.data.Users[i+1:]...)
	s.mu.Unlock()

	s.persist()
	return nil
}
