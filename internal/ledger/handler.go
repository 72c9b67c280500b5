package ledger

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/campuspay/pkg/middleware"
	"github.com/fkhayef/campuspay/pkg/response"
)

// Handler handles HTTP requests for ledger history
type Handler struct {
	service *Service
}

// NewHandler creates a new ledger handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for ledger endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	return r
}

// List handles GET /ledger
// @Summary      Transaction history
// @Description  Get the authenticated account's ledger entries, newest first
// @Tags         ledger
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]EntryResponse}
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /ledger [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	entries, pg, err := h.service.ListByParticipant(r.Context(), principal.ID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list ledger entries")
		return
	}

	entryResponses := make([]*EntryResponse, len(entries))
	for i, entry := range entries {
		entryResponses[i] = entry.ToResponse()
	}

	totalPages := (pg.Total + pg.PerPage - 1) / pg.PerPage
	meta := &response.Meta{
		Page:       pg.Page,
		PerPage:    pg.PerPage,
		Total:      pg.Total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, entryResponses, meta)
}
