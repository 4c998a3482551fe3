// Package ingest replaces the canonical raw dataset in blob storage, archives
// the version it displaces and notifies the processing pipeline.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geohazard/service/internal/pipeline"
	"github.com/geohazard/service/internal/storage"
)

const (
	defaultStoreTimeout = 15 * time.Second
	defaultLockTimeout  = 30 * time.Second
)

// ArchiveAction records what happened to the previous canonical object.
type ArchiveAction string

const (
	ArchiveNone   ArchiveAction = "none"
	Archived      ArchiveAction = "archived"
	ArchiveFailed ArchiveAction = "archive_failed"
)

// Config names the canonical object and archive location. It is fixed at
// construction so tests can point a Service at an isolated bucket or folder.
type Config struct {
	Bucket        string
	RawFolder     string
	ArchiveFolder string
	RawFileName   string

	// StoreTimeout bounds each store call; LockTimeout bounds the wait for the
	// canonical path lock.
	StoreTimeout time.Duration
	LockTimeout  time.Duration
}

// CanonicalPath is the store path of the current raw dataset.
func (c Config) CanonicalPath() string {
	return path.Join(c.RawFolder, c.RawFileName)
}

var timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// ArchivePath returns the archive path for an object displaced at t, e.g.
// old_raw_files/Raw_Data_2024-05-01T10-11-12-123456Z.xlsx.
func (c Config) ArchivePath(t time.Time) string {
	ext := path.Ext(c.RawFileName)
	stem := strings.TrimSuffix(c.RawFileName, ext)
	ts := timestampReplacer.Replace(t.UTC().Format("2006-01-02T15:04:05.000000Z"))
	return path.Join(c.ArchiveFolder, stem+"_"+ts+ext)
}

// Payload is an uploaded file.
type Payload struct {
	FileName    string
	ContentType string
	Data        []byte
	// Uploader is the authenticated subject, empty when auth is disabled.
	Uploader string
}

// Result describes a completed ingestion. Upload, archive and pipeline
// outcomes are independent of each other.
type Result struct {
	ID              string
	UploadSucceeded bool
	Path            string
	OriginalName    string
	ContentType     string
	Size            int
	Uploader        string

	ArchiveAction ArchiveAction
	ArchivePath   string
	ArchiveError  string

	PipelineStatus pipeline.Status
	// PipelineStatusCode is 0 when the processing service never answered.
	PipelineStatusCode int
	PipelineData       json.RawMessage
	PipelineError      string
}

// Message is a one-line summary for the uploader.
func (r *Result) Message() string {
	name := path.Base(r.Path)
	if r.PipelineStatus == pipeline.StatusStarted {
		return fmt.Sprintf("File uploaded successfully as %s and pipeline started", name)
	}
	if r.PipelineStatusCode == 0 {
		return fmt.Sprintf("File uploaded successfully as %s, but failed to trigger pipeline", name)
	}
	return fmt.Sprintf("File uploaded successfully as %s, but pipeline failed to start", name)
}

// Notifier starts the processing pipeline for a stored object.
type Notifier interface {
	Trigger(ctx context.Context, objectPath, bucket string) pipeline.Outcome
}

// Recorder keeps an audit trail of ingestions.
type Recorder interface {
	RecordIngestion(ctx context.Context, r *Result) error
}

// Observer receives one observation per Ingest call.
type Observer interface {
	ObserveIngest(outcome, archive, pipelineStatus string, sizeBytes int, d time.Duration)
}

// Service orchestrates the archive-then-replace-then-notify sequence.
type Service struct {
	cfg      Config
	store    storage.Store
	notifier Notifier
	locker   Locker
	recorder Recorder
	observer Observer
	log      *slog.Logger
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithLocker replaces the default in-process KeyedMutex.
func WithLocker(l Locker) Option { return func(s *Service) { s.locker = l } }

// WithRecorder enables the ingestion audit trail.
func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

// WithObserver enables metrics.
func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService creates a new ingestion Service.
func NewService(cfg Config, store storage.Store, notifier Notifier, opts ...Option) *Service {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaultLockTimeout
	}
	s := &Service{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		locker:   NewKeyedMutex(),
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "ingest")
	return s
}

// Config returns the service configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Validate checks a payload without touching the store.
func Validate(p Payload) error {
	if len(p.Data) == 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	switch strings.ToLower(path.Ext(p.FileName)) {
	case ".xlsx", ".xls":
		return nil
	}
	return fmt.Errorf("%w: Only Excel files (.xlsx, .xls) are allowed", ErrInvalidInput)
}

// Ingest stores p as the canonical raw dataset. It returns an error only when
// the payload is invalid, the canonical path could not be locked, or the
// write failed; archive and pipeline failures are reported in Result.
//
// Store calls run detached from ctx's cancellation so a client disconnect
// cannot leave the sequence half-done; every call is still bounded by
// StoreTimeout.
func (s *Service) Ingest(ctx context.Context, p Payload) (*Result, error) {
	start := s.now()
	if err := Validate(p); err != nil {
		s.observe("invalid", "", "", len(p.Data), start)
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	canonical := s.cfg.CanonicalPath()
	log := s.log.With("canonical", canonical, "original_name", p.FileName, "size", len(p.Data), "uploader", p.Uploader)
	log.Info("ingest: received upload")

	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockTimeout)
	unlock, err := s.locker.Lock(lockCtx, canonical)
	cancel()
	if err != nil {
		log.Error("ingest: could not lock canonical object", "error", err)
		s.observe("lock_unavailable", "", "", len(p.Data), start)
		return nil, fmt.Errorf("%w: %v", ErrLockUnavailable, err)
	}

	res := &Result{
		ID:            uuid.NewString(),
		OriginalName:  p.FileName,
		ContentType:   p.ContentType,
		Size:          len(p.Data),
		Uploader:      p.Uploader,
		ArchiveAction: ArchiveNone,
	}
	err = s.replace(ctx, canonical, p, res, log)
	unlock()
	if err != nil {
		s.observe("write_failed", string(res.ArchiveAction), "", len(p.Data), start)
		return nil, err
	}
	res.UploadSucceeded = true

	outcome := s.notifier.Trigger(ctx, canonical, s.cfg.Bucket)
	res.PipelineStatus = outcome.Status
	res.PipelineStatusCode = outcome.StatusCode
	if outcome.Started() {
		res.PipelineData = outcome.Data
		log.Info("ingest: pipeline started")
	} else {
		res.PipelineError = outcome.Error
		log.Warn("ingest: upload stored but pipeline not started",
			"error", fmt.Errorf("%w: %s", ErrPipelineTrigger, outcome.Error))
	}

	if s.recorder != nil {
		if err := s.recorder.RecordIngestion(ctx, res); err != nil {
			log.Warn("ingest: could not record ingestion", "id", res.ID, "error", err)
		}
	}

	s.observe("ok", string(res.ArchiveAction), string(res.PipelineStatus), len(p.Data), start)
	return res, nil
}

// replace runs probe, archive and write. The caller holds the canonical lock.
func (s *Service) replace(ctx context.Context, canonical string, p Payload, res *Result, log *slog.Logger) error {
	exists, err := s.canonicalExists(ctx)
	if err != nil {
		log.Warn("ingest: existence probe failed, assuming no canonical object",
			"error", fmt.Errorf("%w: %v", ErrStorageRead, err))
	}

	if exists {
		archivePath := s.cfg.ArchivePath(s.now())
		storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		err := s.store.Move(storeCtx, canonical, archivePath)
		cancel()
		if err != nil {
			res.ArchiveAction = ArchiveFailed
			res.ArchiveError = fmt.Errorf("%w: %v", ErrStorageArchive, err).Error()
			log.Warn("ingest: archiving previous canonical object failed, continuing",
				"archive_path", archivePath, "error", err)
		} else {
			res.ArchiveAction = Archived
			res.ArchivePath = archivePath
			log.Info("ingest: archived previous canonical object", "archive_path", archivePath)
		}
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	stored, err := s.store.Upload(storeCtx, canonical, p.Data, storage.UploadOptions{
		ContentType: p.ContentType,
		Overwrite:   true,
	})
	if err != nil {
		log.Error("ingest: writing canonical object failed", "error", err)
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	res.Path = stored
	log.Info("ingest: canonical object written")
	return nil
}

func (s *Service) canonicalExists(ctx context.Context) (bool, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	entries, err := s.store.List(storeCtx, s.cfg.RawFolder)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.HasIdentity() && e.Name == s.cfg.RawFileName {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) observe(outcome, archive, pipelineStatus string, size int, start time.Time) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveIngest(outcome, archive, pipelineStatus, size, s.now().Sub(start))
}
