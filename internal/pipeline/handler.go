package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/geohazard/service/internal/response"
)

const maxLogLimit = 1000

// Handler proxies the processing service's status, log and trigger endpoints.
type Handler struct {
	client     *Client
	objectPath string
	bucket     string
}

// NewHandler creates a Handler whose retry endpoint re-triggers objectPath in bucket.
func NewHandler(client *Client, objectPath, bucket string) *Handler {
	return &Handler{client: client, objectPath: objectPath, bucket: bucket}
}

type retryResponse struct {
	Success        bool            `json:"success" example:"true"`
	Path           string          `json:"path" example:"raw/Raw_Data.xlsx"`
	PipelineStatus string          `json:"pipelineStatus" example:"started"`
	PipelineData   json.RawMessage `json:"pipelineData,omitempty" swaggertype:"object"`
	PipelineError  string          `json:"pipelineError,omitempty"`
}

// Status godoc
//
//	@Summary		Pipeline status
//	@Description	Current state of the processing pipeline, as reported by the processing service.
//	@Tags			pipeline
//	@Produce		json
//	@Success		200	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Router			/pipeline/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	data, err := h.client.Status(r.Context())
	if err != nil {
		writeUpstreamError(w, "status", err)
		return
	}
	response.OK(w, data)
}

// Logs godoc
//
//	@Summary		Pipeline logs
//	@Description	Tail of the processing pipeline's log output.
//	@Tags			pipeline
//	@Produce		json
//	@Param			limit	query		int	false	"Number of log entries (1-1000, default 50)"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/pipeline/logs [get]
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLogLimit {
			response.BadRequest(w, "limit must be an integer between 1 and 1000")
			return
		}
		limit = n
	}

	data, err := h.client.Logs(r.Context(), limit)
	if err != nil {
		writeUpstreamError(w, "logs", err)
		return
	}
	response.OK(w, data)
}

// Retry godoc
//
//	@Summary		Re-trigger pipeline
//	@Description	Start a pipeline run on the current canonical raw dataset, tagged as a manual trigger. Use after an upload reported pipelineStatus=failed.
//	@Tags			pipeline
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	retryResponse
//	@Failure		401	{object}	response.Envelope
//	@Failure		502	{object}	retryResponse
//	@Router			/pipeline/retry [post]
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	out := h.client.TriggerFrom(context.WithoutCancel(r.Context()), h.objectPath, h.bucket, SourceManual)
	resp := retryResponse{
		Success:        out.Started(),
		Path:           h.objectPath,
		PipelineStatus: string(out.Status),
		PipelineData:   out.Data,
		PipelineError:  out.Error,
	}
	if !out.Started() {
		slog.Warn("pipeline: manual trigger failed", "path", h.objectPath, "error", out.Error)
		response.JSON(w, http.StatusBadGateway, resp)
		return
	}
	slog.Info("pipeline: manual trigger accepted", "path", h.objectPath)
	response.JSON(w, http.StatusOK, resp)
}

func writeUpstreamError(w http.ResponseWriter, what string, err error) {
	slog.Warn("pipeline: proxy request failed", "endpoint", what, "error", err)
	var remote *RemoteError
	if errors.As(err, &remote) {
		response.BadGateway(w, remote.Detail)
		return
	}
	response.BadGateway(w, err.Error())
}
