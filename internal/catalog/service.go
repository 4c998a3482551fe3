// Package catalog exposes read-only folder and file listings of the data bucket.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/geohazard/service/internal/storage"
)

// Folder is a top-level folder of the bucket.
type Folder struct {
	Name      string     `json:"name" example:"raw"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// File is an object inside a folder.
type File struct {
	Name      string         `json:"name" example:"Raw_Data.xlsx"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// Service projects store listings for the UI.
type Service struct {
	store   storage.Store
	timeout time.Duration
}

// NewService creates a new catalog Service. timeout bounds each store call.
func NewService(store storage.Store, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{store: store, timeout: timeout}
}

// ListFolders returns every bucket-root entry that is a folder.
func (s *Service) ListFolders(ctx context.Context) ([]Folder, error) {
	entries, err := s.list(ctx, "")
	if err != nil {
		return nil, err
	}
	folders := []Folder{}
	for _, e := range entries {
		if e.HasIdentity() {
			continue
		}
		folders = append(folders, Folder{Name: e.Name, CreatedAt: e.CreatedAt})
	}
	return folders, nil
}

// ListFiles returns the visible objects of folder: folders, the empty-folder
// placeholder and dot-files are skipped.
func (s *Service) ListFiles(ctx context.Context, folder string) ([]File, error) {
	entries, err := s.list(ctx, folder)
	if err != nil {
		return nil, err
	}
	files := []File{}
	for _, e := range entries {
		if !e.HasIdentity() || e.Name == storage.PlaceholderName || strings.HasPrefix(e.Name, ".") {
			continue
		}
		files = append(files, File{
			Name:      e.Name,
			Metadata:  e.Metadata,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		})
	}
	return files, nil
}

func (s *Service) list(ctx context.Context, folder string) ([]storage.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	entries, err := s.store.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", folder, err)
	}
	return entries, nil
}
