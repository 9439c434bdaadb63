package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/course-notes/internal/service"
)

// AuthHandler handles HTTP requests for registration and tokens
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Routes returns the routes for authentication
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)

	return r
}

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the response body for a created account
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register creates a new account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp := RegisterResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the response body for a successful login or refresh
type TokenResponse struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username"`
}

// Login verifies credentials and issues a token pair
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.JSON(w, r, TokenResponse{
		Access:   session.Tokens.Access,
		Refresh:  session.Tokens.Refresh,
		Username: session.Username,
	})
}

// RefreshRequest is the request body for exchanging a refresh token
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh exchanges a valid refresh token for a fresh token pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.Refresh(r.Context(), req.Refresh)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.JSON(w, r, TokenResponse{
		Access:   session.Tokens.Access,
		Refresh:  session.Tokens.Refresh,
		Username: session.Username,
	})
}
