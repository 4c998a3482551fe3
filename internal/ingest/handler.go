package ingest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/geohazard/service/internal/middleware"
	"github.com/geohazard/service/internal/response"
)

// DefaultMaxUploadBytes caps the multipart body when no limit is configured.
const DefaultMaxUploadBytes = 50 << 20

// formMemory is how much of a multipart form is kept in memory before
// spilling to temporary files.
const formMemory = 32 << 20

// Handler holds the HTTP handler for uploads.
type Handler struct {
	svc      *Service
	maxBytes int64
}

// NewHandler creates a new ingest Handler.
func NewHandler(svc *Service, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Handler{svc: svc, maxBytes: maxBytes}
}

type uploadResponse struct {
	Success        bool            `json:"success" example:"true"`
	Message        string          `json:"message" example:"File uploaded successfully as Raw_Data.xlsx and pipeline started"`
	Path           string          `json:"path" example:"raw/Raw_Data.xlsx"`
	OriginalName   string          `json:"originalName" example:"survey-2024.xlsx"`
	ArchiveAction  string          `json:"archiveAction" example:"archived"`
	ArchivePath    string          `json:"archivePath,omitempty" example:"old_raw_files/Raw_Data_2024-05-01T10-11-12-123456Z.xlsx"`
	ArchiveError   string          `json:"archiveError,omitempty"`
	PipelineStatus string          `json:"pipelineStatus" example:"started"`
	PipelineData   json.RawMessage `json:"pipelineData,omitempty" swaggertype:"object"`
	PipelineError  string          `json:"pipelineError,omitempty"`
}

func newUploadResponse(r *Result) uploadResponse {
	return uploadResponse{
		Success:        r.UploadSucceeded,
		Message:        r.Message(),
		Path:           r.Path,
		OriginalName:   r.OriginalName,
		ArchiveAction:  string(r.ArchiveAction),
		ArchivePath:    r.ArchivePath,
		ArchiveError:   r.ArchiveError,
		PipelineStatus: string(r.PipelineStatus),
		PipelineData:   r.PipelineData,
		PipelineError:  r.PipelineError,
	}
}

// Upload godoc
//
//	@Summary		Upload raw dataset
//	@Description	Replace the canonical raw spreadsheet. The previous version is archived under the archive folder and the processing pipeline is triggered. A 200 means the file was stored; check pipelineStatus and archiveAction for downstream problems.
//	@Tags			ingest
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Excel workbook (.xlsx or .xls)"
//	@Success		200		{object}	uploadResponse
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Failure		503		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
			return
		}
		response.BadRequest(w, "No file provided")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "could not read uploaded file")
		return
	}

	result, err := h.svc.Ingest(r.Context(), Payload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Uploader:    middleware.Subject(r.Context()),
	})
	switch {
	case errors.Is(err, ErrInvalidInput):
		response.BadRequest(w, invalidMessage(err))
		return
	case errors.Is(err, ErrLockUnavailable):
		response.ServiceUnavailable(w, "another upload is in progress, try again")
		return
	case err != nil:
		response.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, newUploadResponse(result))
}

// invalidMessage strips the sentinel prefix so the client sees the reason only.
func invalidMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
}
