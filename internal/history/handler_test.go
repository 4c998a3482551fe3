package history

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	items     []Ingestion
	err       error
	lastLimit int
}

func (f *fakeLister) List(_ context.Context, limit int) ([]Ingestion, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.items) {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func TestListDefaultsAndShape(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	lister := &fakeLister{items: []Ingestion{{
		ID:             "0b7c",
		OriginalName:   "site-survey.xlsx",
		ObjectPath:     "raw/Raw_Data.xlsx",
		SizeBytes:      1024,
		ArchiveAction:  "archived",
		ArchivePath:    "old_raw_files/Raw_Data_2024-05-01T09-59-59-000000Z.xlsx",
		PipelineStatus: "started",
		CreatedAt:      at,
	}}}
	rec := httptest.NewRecorder()

	NewHandler(lister).List(rec, httptest.NewRequest(http.MethodGet, "/ingestions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultLimit, lister.lastLimit)
	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Ingestions, 1)
	assert.Equal(t, "site-survey.xlsx", body.Ingestions[0].OriginalName)
	assert.True(t, at.Equal(body.Ingestions[0].CreatedAt))
}

func TestListLimit(t *testing.T) {
	lister := &fakeLister{}
	h := NewHandler(lister)

	for _, bad := range []string{"0", "201", "ten"} {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/ingestions?limit="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/ingestions?limit=5", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, lister.lastLimit)
	assert.JSONEq(t, `{"success":true,"ingestions":[]}`, rec.Body.String())
}

func TestListError(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(&fakeLister{err: errors.New("conn reset")}).List(rec, httptest.NewRequest(http.MethodGet, "/ingestions", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
