package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/campuspay/internal/money"
	"github.com/fkhayef/campuspay/pkg/middleware"
	"github.com/fkhayef/campuspay/pkg/response"
)

// Handler handles HTTP requests for account operations
type Handler struct {
	service *Service
}

// NewHandler creates a new account handler with service dependency injected
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for account endpoints. Registration and login
// are public; the rest requires an authenticated principal.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/me", h.Me)
		r.Get("/me/balance", h.Balance)
	})

	return r
}

// Register handles POST /accounts/register
// @Summary      Register an account
// @Description  Register a student or merchant wallet account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=AccountResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /accounts/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.ID == "" || req.Email == "" || req.Password == "" {
		response.BadRequest(w, "id, email and password are required")
		return
	}

	account, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			response.Conflict(w, err.Error())
			return
		}
		if errors.Is(err, ErrInvalidRole) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to register account")
		return
	}

	response.JSON(w, http.StatusCreated, account.ToResponse())
}

// Login handles POST /accounts/login
// @Summary      Log in
// @Description  Verify credentials and issue a bearer token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=TokenResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /accounts/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	token, expiresAt, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to log in")
		return
	}

	response.JSON(w, http.StatusOK, &TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z"),
	})
}

// Me handles GET /accounts/me
// @Summary      Get my account
// @Tags         accounts
// @Produce      json
// @Success      200 {object} response.APIResponse{data=AccountResponse}
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /accounts/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	account, err := h.service.GetByID(r.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get account")
		return
	}

	response.JSON(w, http.StatusOK, account.ToResponse())
}

// Balance handles GET /accounts/me/balance
// @Summary      Get my balance
// @Tags         accounts
// @Produce      json
// @Success      200 {object} response.APIResponse{data=BalanceResponse}
// @Failure      401 {object} response.APIResponse
// @Security     BearerAuth
// @Router       /accounts/me/balance [get]
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	balance, err := h.service.GetBalance(r.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get balance")
		return
	}

	response.JSON(w, http.StatusOK, &BalanceResponse{
		Balance:      money.FormatCents(balance),
		BalanceCents: balance,
	})
}
