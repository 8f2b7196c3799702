// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/google/uuid"
)

// File describes an uploaded file. The bytes live in the blob store under
// ID.String(); Size always equals the blob length.
type File struct {
	// ID is generated at creation and doubles as the blob name.
	ID uuid.UUID `json:"id"`
	// Name is the client-side file name supplied with the upload.
	Name string `json:"name"`
	// CreatedAt is set by the database on insert.
	CreatedAt time.Time `json:"created_at"`
	// Path is the user-visible logical address, unique across all files.
	Path string `json:"path"`
	// Size is the blob length in bytes.
	Size int64 `json:"size"`
	// AuthorID is the owning user.
	AuthorID int64 `json:"-"`
}

// FileCreate is the input for creating a file row.
type FileCreate struct {
	Name     string
	Path     string
	Size     int64
	AuthorID int64
}

// FileUpdate carries the mutable file fields.
type FileUpdate struct {
	Path string
}
