// Package pipeline is the HTTP client for the external processing service that
// turns the canonical raw dataset into predictions.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single call to the processing service. Pipeline
// startup loads models on the far side, so it is generous.
const DefaultTimeout = 30 * time.Second

// DefaultReadTimeout bounds status and log reads.
const DefaultReadTimeout = 5 * time.Second

// DefaultLogLimit is the number of log entries requested when none is given.
const DefaultLogLimit = 50

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Trigger sources sent with a start request.
const (
	SourceUpload = "upload"
	SourceManual = "manual"
)

// Status is the outcome of a trigger attempt.
type Status string

const (
	StatusStarted Status = "started"
	StatusFailed  Status = "failed"
)

// ErrPipelineUnavailable is returned when the processing service cannot be reached.
var ErrPipelineUnavailable = errors.New("pipeline service unavailable")

// RemoteError is a non-success answer from the processing service.
type RemoteError struct {
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("pipeline service returned %d: %s", e.StatusCode, e.Detail)
}

// Outcome is the result of Trigger. Data holds the service's JSON answer on
// success; Error holds a readable reason on failure.
type Outcome struct {
	Status     Status
	StatusCode int // 0 when no response was received
	Data       json.RawMessage
	Error      string
}

// Started reports whether the pipeline accepted the trigger.
func (o Outcome) Started() bool {
	return o.Status == StatusStarted
}

type startRequest struct {
	FilePath      string `json:"file_path"`
	BucketName    string `json:"bucket_name"`
	TriggerSource string `json:"trigger_source"`
}

// Client talks to the processing service. It never retries.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	readTimeout time.Duration
}

// NewClient creates a Client for baseURL with the given per-call timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	readTimeout := DefaultReadTimeout
	if timeout < readTimeout {
		readTimeout = timeout
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		readTimeout: readTimeout,
	}
}

// WithReadTimeout returns a copy of c whose status and log reads are bounded by d.
func (c *Client) WithReadTimeout(d time.Duration) *Client {
	cp := *c
	if d > 0 {
		cp.readTimeout = d
	}
	return &cp
}

// Trigger starts a pipeline run for an uploaded object.
func (c *Client) Trigger(ctx context.Context, objectPath, bucket string) Outcome {
	return c.TriggerFrom(ctx, objectPath, bucket, SourceUpload)
}

// TriggerFrom starts a pipeline run tagged with the given trigger source.
func (c *Client) TriggerFrom(ctx context.Context, objectPath, bucket, source string) Outcome {
	body, err := json.Marshal(startRequest{
		FilePath:      objectPath,
		BucketName:    bucket,
		TriggerSource: source,
	})
	if err != nil {
		return failed(0, fmt.Sprintf("encode start request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pipeline/start", bytes.NewReader(body))
	if err != nil {
		return failed(0, fmt.Sprintf("build start request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed(0, err.Error())
	}
	defer resp.Body.Close()

	data, readErr := readLimited(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(resp.StatusCode, remoteDetail(resp.StatusCode, data))
	}
	if readErr != nil {
		// The run was accepted; only the echo is lost.
		return Outcome{Status: StatusStarted, StatusCode: resp.StatusCode}
	}
	if !json.Valid(data) {
		data = nil
	}
	return Outcome{Status: StatusStarted, StatusCode: resp.StatusCode, Data: data}
}

// Status returns the service's current pipeline status document.
func (c *Client) Status(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/pipeline/status", nil)
}

// Logs returns the most recent limit entries of pipeline output. limit <= 0
// requests DefaultLogLimit.
func (c *Client) Logs(ctx context.Context, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	return c.get(ctx, "/pipeline/logs", q)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPipelineUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := readLimited(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Detail: remoteDetail(resp.StatusCode, data)}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s: response is not JSON", path)
	}
	return data, nil
}

func failed(code int, reason string) Outcome {
	return Outcome{Status: StatusFailed, StatusCode: code, Error: reason}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("response body exceeded %d bytes", maxBodyBytes)
	}
	return data, nil
}

// remoteDetail extracts the error reason from a FastAPI-style body
// ({"detail": ...}) or {"error": ...}, falling back to a generic message.
func remoteDetail(code int, body []byte) string {
	var parsed struct {
		Detail json.RawMessage `json:"detail"`
		Error  json.RawMessage `json:"error"`
	}
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		for _, field := range []json.RawMessage{parsed.Detail, parsed.Error} {
			if msg := rawString(field); msg != "" {
				return msg
			}
		}
	}
	return fmt.Sprintf("Unknown error (status %d)", code)
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
