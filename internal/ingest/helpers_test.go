package ingest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/geohazard/service/internal/pipeline"
	"github.com/geohazard/service/internal/storage"
)

var testConfig = Config{
	Bucket:        "geotechnical-data",
	RawFolder:     "raw",
	ArchiveFolder: "old_raw_files",
	RawFileName:   "Raw_Data.xlsx",
	StoreTimeout:  time.Second,
	LockTimeout:   time.Second,
}

// spyStore wraps a MemoryStore, counting calls and injecting failures.
type spyStore struct {
	*storage.MemoryStore

	mu        sync.Mutex
	calls     []string
	listErr   error
	moveErr   error
	uploadErr error
}

func newSpyStore(t *testing.T) *spyStore {
	t.Helper()
	m, err := storage.NewMemoryStore()
	require.NoError(t, err)
	return &spyStore{MemoryStore: m}
}

func (s *spyStore) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op)
}

func (s *spyStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *spyStore) List(ctx context.Context, folder string) ([]storage.Entry, error) {
	s.record("list")
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.MemoryStore.List(ctx, folder)
}

func (s *spyStore) Upload(ctx context.Context, path string, data []byte, opts storage.UploadOptions) (string, error) {
	s.record("upload")
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return s.MemoryStore.Upload(ctx, path, data, opts)
}

func (s *spyStore) Move(ctx context.Context, from, to string) error {
	s.record("move")
	if s.moveErr != nil {
		return s.moveErr
	}
	return s.MemoryStore.Move(ctx, from, to)
}

// seed writes directly to the underlying store without recording a call.
func (s *spyStore) seed(t *testing.T, path string, data []byte) {
	t.Helper()
	_, err := s.MemoryStore.Upload(context.Background(), path, data, storage.UploadOptions{Overwrite: true})
	require.NoError(t, err)
}

func (s *spyStore) get(t *testing.T, path string) []byte {
	t.Helper()
	data, err := s.MemoryStore.Get(context.Background(), path)
	require.NoError(t, err)
	return data
}

type triggerCall struct {
	path   string
	bucket string
}

type fakeNotifier struct {
	mu      sync.Mutex
	outcome pipeline.Outcome
	calls   []triggerCall
}

func startedNotifier() *fakeNotifier {
	return &fakeNotifier{outcome: pipeline.Outcome{
		Status:     pipeline.StatusStarted,
		StatusCode: 200,
		Data:       []byte(`{"status":"started"}`),
	}}
}

func (n *fakeNotifier) Trigger(_ context.Context, objectPath, bucket string) pipeline.Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, triggerCall{path: objectPath, bucket: bucket})
	return n.outcome
}

func (n *fakeNotifier) Calls() []triggerCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]triggerCall(nil), n.calls...)
}

// steppingClock returns a time that advances by one millisecond per call.
func steppingClock() func() time.Time {
	base := time.Date(2024, 5, 1, 10, 11, 12, 0, time.UTC)
	var n atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Millisecond)
	}
}

type recordedObservation struct {
	outcome, archive, pipeline string
	size                       int
}

type fakeObserver struct {
	mu  sync.Mutex
	obs []recordedObservation
}

func (o *fakeObserver) ObserveIngest(outcome, archive, pipelineStatus string, sizeBytes int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.obs = append(o.obs, recordedObservation{outcome, archive, pipelineStatus, sizeBytes})
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []Result
	err     error
}

func (r *fakeRecorder) RecordIngestion(_ context.Context, res *Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, *res)
	return r.err
}
