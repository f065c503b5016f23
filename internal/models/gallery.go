// Gallery - Photo Gallery Backend with Snapshot Backups
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gallery

package models

import (
	"time"
)

// User is an account record. Password holds a bcrypt hash.
type User struct {
	ID        string    `json:"id" validate:"required"`
	Username  string    `json:"username" validate:"required"`
	Email     string    `json:"email" validate:"required"`
	Password  string    `json:"password" validate:"required"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser is a User without its password hash.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// Photo is a gallery entry. Filename names a blob in the uploads directory
// and Path is the URL it is served from.
type Photo struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Attribution string     `json:"attribution,omitempty"`
	Filename    string     `json:"filename" validate:"required,filename"`
	Path        string     `json:"path"`
	UserID      string     `json:"userId" validate:"required"`
	UploadDate  time.Time  `json:"uploadDate"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	Likes       int        `json:"likes" validate:"min=0"`
}

// UploadPath returns the URL path a blob is served from.
func UploadPath(filename string) string {
	return "/uploads/" + filename
}

// Like records that UserID liked PhotoID once.
type Like struct {
	UserID    string    `json:"userId" validate:"required"`
	PhotoID   string    `json:"photoId" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// Dataset is the whole persisted state. Users and Photos must be present
// (non-null) in a mirror document; UserLikes may be omitted.
type Dataset struct {
	Users     []User  `json:"users" validate:"required,dive"`
	Photos    []Photo `json:"photos" validate:"required,dive"`
	UserLikes []Like  `json:"userLikes" validate:"omitempty,dive"`
}

// NewDataset returns an empty dataset with non-nil collections.
func NewDataset() Dataset {
	return Dataset{
		Users:     []User{},
		Photos:    []Photo{},
		UserLikes: []Like{},
	}
}

// Clone returns a deep copy.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Users:     make([]User, len(d.Users)),
		Photos:    make([]Photo, len(d.Photos)),
		UserLikes: make([]Like, len(d.UserLikes)),
	}
	copy(out.Users, d.Users)
	copy(out.UserLikes, d.UserLikes)
	for i, p := range d.Photos {
		if p.UpdatedAt != nil {
			t := *p.UpdatedAt
			p.UpdatedAt = &t
		}
		out.Photos[i] = p
	}
	return out
}

// Normalize replaces nil collections with empty ones so the mirror never
// contains null arrays.
func (d *Dataset) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Photos == nil {
		d.Photos = []Photo{}
	}
	if d.UserLikes == nil {
		d.UserLikes = []Like{}
	}
}
