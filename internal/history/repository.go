// Package history keeps an audit trail of raw dataset ingestions.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geohazard/service/internal/ingest"
)

// Ingestion is one recorded upload.
type Ingestion struct {
	ID             string    `json:"id"`
	OriginalName   string    `json:"originalName"`
	ObjectPath     string    `json:"objectPath"`
	SizeBytes      int64     `json:"sizeBytes"`
	ContentType    string    `json:"contentType,omitempty"`
	UploadedBy     string    `json:"uploadedBy,omitempty"`
	ArchiveAction  string    `json:"archiveAction"`
	ArchivePath    string    `json:"archivePath,omitempty"`
	ArchiveError   string    `json:"archiveError,omitempty"`
	PipelineStatus string    `json:"pipelineStatus"`
	PipelineError  string    `json:"pipelineError,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Repository handles ingestion history persistence.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RecordIngestion inserts r. It implements ingest.Recorder.
func (r *Repository) RecordIngestion(ctx context.Context, res *ingest.Result) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ingestions (id, original_name, object_path, size_bytes, content_type,
		                         uploaded_by, archive_action, archive_path, archive_error,
		                         pipeline_status, pipeline_error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		res.ID, res.OriginalName, res.Path, int64(res.Size), res.ContentType, res.Uploader,
		string(res.ArchiveAction), res.ArchivePath, res.ArchiveError,
		string(res.PipelineStatus), res.PipelineError,
	)
	if err != nil {
		return fmt.Errorf("record ingestion: %w", err)
	}
	return nil
}

// List returns the most recent ingestions, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]Ingestion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, original_name, object_path, size_bytes, content_type,
		        uploaded_by, archive_action, archive_path, archive_error,
		        pipeline_status, pipeline_error, created_at
		 FROM ingestions
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingestions: %w", err)
	}
	defer rows.Close()

	out := []Ingestion{}
	for rows.Next() {
		var i Ingestion
		if err := rows.Scan(&i.ID, &i.OriginalName, &i.ObjectPath, &i.SizeBytes, &i.ContentType,
			&i.UploadedBy, &i.ArchiveAction, &i.ArchivePath, &i.ArchiveError,
			&i.PipelineStatus, &i.PipelineError, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ingestion: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ingestions: %w", err)
	}
	return out, nil
}
