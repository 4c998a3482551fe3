package catalog

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/geohazard/service/internal/response"
)

// Handler holds HTTP handlers for listing endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new catalog Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type foldersResponse struct {
	Success bool     `json:"success" example:"true"`
	Folders []Folder `json:"folders"`
}

type filesResponse struct {
	Success bool   `json:"success" example:"true"`
	Files   []File `json:"files"`
}

// ListFolders godoc
//
//	@Summary		List folders
//	@Description	Top-level folders of the data bucket.
//	@Tags			catalog
//	@Produce		json
//	@Success		200	{object}	foldersResponse
//	@Failure		502	{object}	response.Envelope
//	@Router			/folders [get]
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.svc.ListFolders(r.Context())
	if err != nil {
		slog.Error("catalog: list folders failed", "error", err)
		response.BadGateway(w, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, foldersResponse{Success: true, Folders: folders})
}

// ListFiles godoc
//
//	@Summary		List files in a folder
//	@Description	Objects stored directly inside the folder. Placeholders and dot-files are hidden.
//	@Tags			catalog
//	@Produce		json
//	@Param			folder	path		string	true	"Folder name"	example(old_raw_files)
//	@Success		200		{object}	filesResponse
//	@Failure		400		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/files/{folder} [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folder := chi.URLParam(r, "folder")
	if folder == "" || strings.Contains(folder, "..") {
		response.BadRequest(w, "invalid folder name")
		return
	}

	files, err := h.svc.ListFiles(r.Context(), folder)
	if err != nil {
		slog.Error("catalog: list files failed", "folder", folder, "error", err)
		response.BadGateway(w, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, filesResponse{Success: true, Files: files})
}
