package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geohazard/service/internal/storage"
)

func seededStore(t *testing.T, paths ...string) *storage.MemoryStore {
	t.Helper()
	m, err := storage.NewMemoryStore()
	require.NoError(t, err)
	for _, p := range paths {
		_, err := m.Upload(context.Background(), p, []byte(p), storage.UploadOptions{ContentType: "application/octet-stream"})
		require.NoError(t, err)
	}
	return m
}

type failingStore struct {
	storage.Store
}

func (failingStore) List(context.Context, string) ([]storage.Entry, error) {
	return nil, errors.New("connection reset")
}

func TestListFoldersKeepsOnlyFolders(t *testing.T) {
	store := seededStore(t,
		"raw/Raw_Data.xlsx",
		"old_raw_files/Raw_Data_2024.xlsx",
		"predictions/out.geojson",
		"stray.txt",
	)
	svc := NewService(store, time.Second)

	folders, err := svc.ListFolders(context.Background())
	require.NoError(t, err)

	var names []string
	for _, f := range folders {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"old_raw_files", "predictions", "raw"}, names)
}

func TestListFilesFiltersHiddenEntries(t *testing.T) {
	store := seededStore(t,
		"old_raw_files/.emptyFolderPlaceholder",
		"old_raw_files/.DS_Store",
		"old_raw_files/Raw_Data_2024-01-01T00-00-00-000000Z.xlsx",
		"old_raw_files/Raw_Data_2024-02-01T00-00-00-000000Z.xlsx",
		"old_raw_files/nested/inner.xlsx",
	)
	svc := NewService(store, time.Second)

	files, err := svc.ListFiles(context.Background(), "old_raw_files")
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "Raw_Data_2024-01-01T00-00-00-000000Z.xlsx", files[0].Name)
	assert.Equal(t, "Raw_Data_2024-02-01T00-00-00-000000Z.xlsx", files[1].Name)
	assert.NotNil(t, files[0].CreatedAt)
	assert.NotEmpty(t, files[0].Metadata)
}

func TestListFilesEmptyFolder(t *testing.T) {
	store := seededStore(t, "raw/.emptyFolderPlaceholder")
	svc := NewService(store, time.Second)

	files, err := svc.ListFiles(context.Background(), "raw")
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestListErrorsAreWrapped(t *testing.T) {
	svc := NewService(failingStore{}, time.Second)

	_, err := svc.ListFolders(context.Background())
	assert.ErrorContains(t, err, "connection reset")
	_, err = svc.ListFiles(context.Background(), "raw")
	assert.ErrorContains(t, err, `list "raw"`)
}

func newRouter(svc *Service) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Get("/folders", h.ListFolders)
	r.Get("/files/{folder}", h.ListFiles)
	return r
}

func TestHandlers(t *testing.T) {
	store := seededStore(t, "raw/Raw_Data.xlsx", "raw/.emptyFolderPlaceholder", "old_raw_files/.emptyFolderPlaceholder")
	router := newRouter(NewService(store, time.Second))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/folders", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var folders foldersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &folders))
	assert.True(t, folders.Success)
	assert.Len(t, folders.Folders, 2)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/raw", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var files filesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	assert.True(t, files.Success)
	require.Len(t, files.Files, 1)
	assert.Equal(t, "Raw_Data.xlsx", files.Files[0].Name)
}

func TestHandlersStoreFailure(t *testing.T) {
	router := newRouter(NewService(failingStore{}, time.Second))

	for _, path := range []string{"/folders", "/files/raw"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "connection reset")
	}
}

func TestListFilesRejectsTraversal(t *testing.T) {
	router := newRouter(NewService(seededStore(t), time.Second))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/a..b", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
