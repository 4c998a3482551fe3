package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage implements Store using a MinIO (or any S3-compatible) backend.
// Pointing STORAGE_ENDPOINT at another S3-compatible provider needs no code changes.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// MinioOptions configures NewMinioStorage.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// StartupTimeout bounds how long NewMinioStorage waits for the endpoint to answer.
	StartupTimeout time.Duration
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists and returns a
// ready-to-use MinioStorage. The bucket is left private.
func NewMinioStorage(ctx context.Context, opts MinioOptions) (*MinioStorage, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxElapsedTime = opts.StartupTimeout
	if b.MaxElapsedTime <= 0 {
		b.MaxElapsedTime = 30 * time.Second
	}

	var exists bool
	err = backoff.Retry(func() error {
		var err error
		exists, err = client.BucketExists(ctx, opts.Bucket)
		if err != nil {
			slog.Warn("storage: bucket check failed, retrying", "bucket", opts.Bucket, "error", err)
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
		slog.Info("storage: created bucket", "bucket", opts.Bucket)
	}

	return &MinioStorage{client: client, bucket: opts.Bucket}, nil
}

// List returns the direct children of folder. Common prefixes come back as
// folder entries without an ID; objects use their ETag as identity.
func (s *MinioStorage) List(ctx context.Context, folder string) ([]Entry, error) {
	prefix := prefixFor(folder)
	var entries []Entry
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    false,
		WithMetadata: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects %q: %w", prefix, obj.Err)
		}
		if e, ok := entryFor(prefix, obj); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// entryFor maps a listed key under prefix to an Entry. Directory markers whose
// key equals the prefix are skipped.
func entryFor(prefix string, obj minio.ObjectInfo) (Entry, bool) {
	name := strings.TrimPrefix(obj.Key, prefix)
	if name == "" || name == "/" {
		return Entry{}, false
	}
	if strings.HasSuffix(name, "/") {
		return Entry{Name: strings.TrimSuffix(name, "/")}, true
	}
	modified := obj.LastModified
	return Entry{
		Name: name,
		ID:   obj.ETag,
		Metadata: map[string]any{
			"size":         obj.Size,
			"mimetype":     obj.ContentType,
			"eTag":         obj.ETag,
			"lastModified": modified,
		},
		CreatedAt: &modified,
		UpdatedAt: &modified,
	}, true
}

// Upload puts data under path. Without opts.Overwrite an existing object is left alone.
func (s *MinioStorage) Upload(ctx context.Context, path string, data []byte, opts UploadOptions) (string, error) {
	if !opts.Overwrite {
		exists, err := s.exists(ctx, path)
		if err != nil {
			return "", err
		}
		if exists {
			return "", fmt.Errorf("upload %q: %w", path, ErrObjectExists)
		}
	}
	_, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", path, err)
	}
	return path, nil
}

// Move copies from to to server-side and then removes from. S3 has no rename,
// so a failed remove leaves both objects in place and is reported as an error.
func (s *MinioStorage) Move(ctx context.Context, from, to string) error {
	exists, err := s.exists(ctx, to)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("move to %q: %w", to, ErrObjectExists)
	}

	_, err = s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: to},
		minio.CopySrcOptions{Bucket: s.bucket, Object: from},
	)
	if err != nil {
		if isNoSuchKey(err) {
			return fmt.Errorf("move %q: %w", from, ErrObjectNotFound)
		}
		return fmt.Errorf("copy object %q to %q: %w", from, to, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, from, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q after copy: %w", from, err)
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (s *MinioStorage) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q: %w", s.bucket, ErrObjectNotFound)
	}
	return nil
}

func (s *MinioStorage) exists(ctx context.Context, path string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat object %q: %w", path, err)
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

var _ Store = (*MinioStorage)(nil)
