package pipeline

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeService(t *testing.T, startStatus int) (*httptest.Server, func() []startRequest) {
	t.Helper()
	var mu sync.Mutex
	var starts []startRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pipeline/start":
			var req startRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			mu.Lock()
			starts = append(starts, req)
			mu.Unlock()
			w.WriteHeader(startStatus)
			if startStatus == http.StatusOK {
				_, _ = w.Write([]byte(`{"status":"started"}`))
				return
			}
			_, _ = w.Write([]byte(`{"detail":"already running"}`))
		case "/pipeline/status":
			_, _ = w.Write([]byte(`{"state":"running","progress":40}`))
		case "/pipeline/logs":
			_, _ = w.Write([]byte(`{"lines":["` + r.URL.Query().Get("limit") + `"]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []startRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]startRequest(nil), starts...)
	}
}

func TestHandlerStatusProxiesBody(t *testing.T) {
	srv, _ := fakeService(t, http.StatusOK)
	h := NewHandler(NewClient(srv.URL, time.Second), "raw/Raw_Data.xlsx", "geotechnical-data")

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/pipeline/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"state":"running","progress":40}}`, rec.Body.String())
}

func TestHandlerLogsValidatesLimit(t *testing.T) {
	srv, _ := fakeService(t, http.StatusOK)
	h := NewHandler(NewClient(srv.URL, time.Second), "raw/Raw_Data.xlsx", "geotechnical-data")

	for _, bad := range []string{"0", "-1", "abc", "1001"} {
		rec := httptest.NewRecorder()
		h.Logs(rec, httptest.NewRequest(http.MethodGet, "/pipeline/logs?limit="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	rec := httptest.NewRecorder()
	h.Logs(rec, httptest.NewRequest(http.MethodGet, "/pipeline/logs?limit=25", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"lines":["25"]}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Logs(rec, httptest.NewRequest(http.MethodGet, "/pipeline/logs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"lines":["50"]}}`, rec.Body.String())
}

func TestHandlerRetry(t *testing.T) {
	srv, starts := fakeService(t, http.StatusOK)
	h := NewHandler(NewClient(srv.URL, time.Second), "raw/Raw_Data.xlsx", "geotechnical-data")

	rec := httptest.NewRecorder()
	h.Retry(rec, httptest.NewRequest(http.MethodPost, "/pipeline/retry", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body retryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "started", body.PipelineStatus)
	got := starts()
	require.Len(t, got, 1)
	assert.Equal(t, startRequest{FilePath: "raw/Raw_Data.xlsx", BucketName: "geotechnical-data", TriggerSource: SourceManual}, got[0])
}

func TestHandlerRetryFailure(t *testing.T) {
	srv, _ := fakeService(t, http.StatusConflict)
	h := NewHandler(NewClient(srv.URL, time.Second), "raw/Raw_Data.xlsx", "geotechnical-data")

	rec := httptest.NewRecorder()
	h.Retry(rec, httptest.NewRequest(http.MethodPost, "/pipeline/retry", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var body retryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "failed", body.PipelineStatus)
	assert.Equal(t, "already running", body.PipelineError)
}

func TestHandlerStatusUpstreamDown(t *testing.T) {
	srv, _ := fakeService(t, http.StatusOK)
	srv.Close()
	h := NewHandler(NewClient(srv.URL, time.Second), "raw/Raw_Data.xlsx", "geotechnical-data")

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/pipeline/status", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
