package history

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/geohazard/service/internal/response"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// Lister reads recent ingestions.
type Lister interface {
	List(ctx context.Context, limit int) ([]Ingestion, error)
}

// Handler serves the ingestion history endpoint.
type Handler struct {
	lister Lister
}

// NewHandler creates a new Handler.
func NewHandler(lister Lister) *Handler {
	return &Handler{lister: lister}
}

type listResponse struct {
	Success    bool        `json:"success" example:"true"`
	Ingestions []Ingestion `json:"ingestions"`
}

// List godoc
//
//	@Summary		Ingestion history
//	@Description	Most recent raw dataset uploads with their archive and pipeline outcomes, newest first.
//	@Tags			ingestions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int	false	"Maximum entries (1-200, default 20)"
//	@Success		200		{object}	listResponse
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/ingestions [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			response.BadRequest(w, "limit must be an integer between 1 and 200")
			return
		}
		limit = n
	}

	items, err := h.lister.List(r.Context(), limit)
	if err != nil {
		slog.Error("history: list failed", "error", err)
		response.InternalError(w)
		return
	}
	if items == nil {
		items = []Ingestion{}
	}
	response.JSON(w, http.StatusOK, listResponse{Success: true, Ingestions: items})
}
