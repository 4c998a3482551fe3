// Package storage defines the blob store contract used by ingestion and listing.
// Swap implementations by changing the concrete type injected at startup:
// the MinIO implementation works with any S3-compatible provider, the memory
// implementation backs local development and tests.
package storage

import (
	"context"
	"errors"
	"time"
)

// PlaceholderName is the marker object a store keeps inside otherwise empty folders.
const PlaceholderName = ".emptyFolderPlaceholder"

var (
	// ErrObjectNotFound is returned when the source object of an operation does not exist.
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectExists is returned when a write would replace an object it must not replace.
	ErrObjectExists = errors.New("object already exists")
)

// Entry is a single item returned by List. Folders have an empty ID.
type Entry struct {
	Name      string         `json:"name"`
	ID        string         `json:"id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// HasIdentity reports whether the entry is an object rather than a folder.
func (e Entry) HasIdentity() bool {
	return e.ID != ""
}

// UploadOptions controls how Upload writes an object.
type UploadOptions struct {
	ContentType string
	// Overwrite turns the write into an upsert. Without it Upload fails with
	// ErrObjectExists when the path is taken.
	Overwrite bool
}

// Store is the interface for the object operations the service relies on.
type Store interface {
	// List returns the direct children of folder ("" lists the bucket root).
	List(ctx context.Context, folder string) ([]Entry, error)
	// Upload writes data at path and returns the stored path.
	Upload(ctx context.Context, path string, data []byte, opts UploadOptions) (string, error)
	// Move renames the object at from to to. It never overwrites to.
	Move(ctx context.Context, from, to string) error
	// Ping checks that the bucket is reachable.
	Ping(ctx context.Context) error
}

func prefixFor(folder string) string {
	if folder == "" {
		return ""
	}
	return folder + "/"
}
