// Package models defines the persisted domain types for nemoweb.
package models

import "time"

// User is an administrator account. Authentication is by email and
// argon2id password hash; the remaining fields are display-only.
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	PasswordHash     string `json:"-"`
	AboutMe          string `json:"about_me,omitempty"`
	ProfileImagePath string `json:"profile_image_path,omitempty"`
}

// Material is one entry on the materials page: a title, an optional
// description, and a PDF stored under the upload root. Position defines
// the display order; values need not be contiguous.
type Material struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PDFPath     string    `json:"pdf_path"`
	Position    int       `json:"position"`
	DateCreated time.Time `json:"date_created"`
}
