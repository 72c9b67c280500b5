package settlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/campuspay/internal/money"
	"github.com/fkhayef/campuspay/pkg/middleware"
	"github.com/fkhayef/campuspay/pkg/response"
)

// Handler handles HTTP requests for money-movement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for transfer endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/send", h.Send)
	r.Post("/withdraw", h.Withdraw)
	r.Post("/upload", h.Upload)

	return r
}

// Send handles POST /transfers/send
// @Summary      Send money
// @Description  Transfer money from the authenticated account to another account
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body SendRequest true "Transfer request"
// @Success      201 {object} response.APIResponse{data=ledger.EntryResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /transfers/send [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.To == "" {
		response.BadRequest(w, "Recipient account is required")
		return
	}

	cents, err := money.ToCents(req.Amount)
	if err != nil {
		response.BadRequest(w, "Invalid amount")
		return
	}

	entry, err := h.service.Send(r.Context(), principal.ID, req.To, cents)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, entry.ToResponse())
}

// Withdraw handles POST /transfers/withdraw
// @Summary      Withdraw money
// @Description  Move money out of the authenticated account, leaving the system
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body WithdrawRequest true "Withdraw request"
// @Success      201 {object} response.APIResponse{data=ledger.EntryResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /transfers/withdraw [post]
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	cents, err := money.ToCents(req.Amount)
	if err != nil {
		response.BadRequest(w, "Invalid amount")
		return
	}

	entry, err := h.service.Withdraw(r.Context(), principal.ID, cents)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, entry.ToResponse())
}

// Upload handles POST /transfers/upload
// @Summary      Top up balance
// @Description  Move money into the authenticated account from outside the system
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body UploadRequest true "Upload request"
// @Success      201 {object} response.APIResponse{data=ledger.EntryResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /transfers/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	cents, err := money.ToCents(req.Amount)
	if err != nil {
		response.BadRequest(w, "Invalid amount")
		return
	}

	entry, err := h.service.Upload(r.Context(), principal.ID, cents)
	if err != nil {
		writeTransferError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, entry.ToResponse())
}

// writeTransferError maps engine errors to HTTP responses
func writeTransferError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, "Invalid amount")
	case errors.Is(err, ErrSelfTransfer):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrAccountNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, ErrTransientConflict):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, "Failed to process transfer")
	}
}
