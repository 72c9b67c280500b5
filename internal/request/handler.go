package request

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/fkhayef/campuspay/internal/account"
	"github.com/fkhayef/campuspay/internal/money"
	"github.com/fkhayef/campuspay/internal/settlement"
	"github.com/fkhayef/campuspay/pkg/middleware"
	"github.com/fkhayef/campuspay/pkg/response"
)

// Handler handles HTTP requests for payment requests
type Handler struct {
	service *Service
}

// NewHandler creates a new payment request handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for payment request endpoints. The QR image is
// public (it is scanned before the payer is known); everything else
// requires an authenticated principal.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}/qr", h.QRCode)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Post("/{id}/pay", h.Settle)
		r.Post("/{id}/cancel", h.Cancel)
	})

	return r
}

// Create handles POST /requests
// @Summary      Create a payment request
// @Description  Create a QR receive request (student) or payment link (merchant); amount is optional
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Payment request creation"
// @Success      201 {object} response.APIResponse{data=Response}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /requests [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	var amountCents *int64
	if req.Amount != nil {
		cents, err := money.ToCents(*req.Amount)
		if err != nil {
			response.BadRequest(w, "Invalid amount")
			return
		}
		amountCents = &cents
	}

	created, err := h.service.Create(r.Context(), principal.ID, account.Role(principal.Role), amountCents)
	if err != nil {
		response.InternalError(w, "Failed to create payment request")
		return
	}

	response.JSON(w, http.StatusCreated, created.ToResponse(h.service.PayURL(created.ID)))
}

// GetByID handles GET /requests/{id}
// @Summary      Get a payment request
// @Tags         requests
// @Produce      json
// @Param        id path string true "Request ID"
// @Success      200 {object} response.APIResponse{data=Response}
// @Failure      404 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /requests/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get payment request")
		return
	}

	response.JSON(w, http.StatusOK, req.ToResponse(h.service.PayURL(req.ID)))
}

// List handles GET /requests
// @Summary      List my payment requests
// @Tags         requests
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]Response}
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /requests [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	requests, pg, err := h.service.ListByBeneficiary(r.Context(), principal.ID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list payment requests")
		return
	}

	responses := make([]*Response, len(requests))
	for i, req := range requests {
		responses[i] = req.ToResponse(h.service.PayURL(req.ID))
	}

	totalPages := (pg.Total + pg.PerPage - 1) / pg.PerPage
	meta := &response.Meta{
		Page:       pg.Page,
		PerPage:    pg.PerPage,
		Total:      pg.Total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, responses, meta)
}

// Settle handles POST /requests/{id}/pay
// @Summary      Pay a payment request
// @Description  Settle a pending request as the authenticated payer; supply an amount when the request has none
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id path string true "Request ID"
// @Param        request body SettleRequest false "Settlement details"
// @Success      201 {object} response.APIResponse{data=ledger.EntryResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      410 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /requests/{id}/pay [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")

	var req SettleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	var amountCents *int64
	if req.Amount != nil {
		cents, err := money.ToCents(*req.Amount)
		if err != nil {
			response.BadRequest(w, "Invalid amount")
			return
		}
		amountCents = &cents
	}

	entry, err := h.service.Settle(r.Context(), id, principal.ID, amountCents)
	if err != nil {
		writeSettleError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, entry.ToResponse())
}

// Cancel handles POST /requests/{id}/cancel
// @Summary      Cancel a payment request
// @Description  Flip a pending request to cancelled; only the beneficiary may cancel
// @Tags         requests
// @Produce      json
// @Param        id path string true "Request ID"
// @Success      200 {object} response.APIResponse{data=Response}
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /requests/{id}/cancel [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")

	req, err := h.service.Cancel(r.Context(), id, principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequestNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotBeneficiary):
			response.Forbidden(w, err.Error())
		case errors.Is(err, settlement.ErrRequestAlreadySettled):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to cancel payment request")
		}
		return
	}

	response.JSON(w, http.StatusOK, req.ToResponse(h.service.PayURL(req.ID)))
}

// QRCode handles GET /requests/{id}/qr
// @Summary      Payment request QR code
// @Description  PNG encoding of the request's pay URL
// @Tags         requests
// @Produce      png
// @Param        id path string true "Request ID"
// @Success      200 {file} binary
// @Failure      404 {object} response.APIResponse
// @Router       /requests/{id}/qr [get]
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get payment request")
		return
	}

	png, err := qrcode.Encode(h.service.PayURL(req.ID), qrcode.Medium, 256)
	if err != nil {
		response.InternalError(w, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writeSettleError maps settle errors to HTTP responses
func writeSettleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRequestNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrAmountRequired), errors.Is(err, ErrSelfPayment), errors.Is(err, settlement.ErrInvalidAmount):
		response.BadRequest(w, err.Error())
	case errors.Is(err, settlement.ErrRequestAlreadySettled):
		response.Conflict(w, err.Error())
	case errors.Is(err, settlement.ErrRequestExpired):
		response.Gone(w, err.Error())
	case errors.Is(err, settlement.ErrAccountNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, settlement.ErrInsufficientFunds):
		response.UnprocessableEntity(w, err.Error())
	case errors.Is(err, settlement.ErrTransientConflict):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, "Failed to settle payment request")
	}
}
