package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/course-notes/internal/domain"
)

// ErrorResponse is the body for every error status
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

// renderServiceError maps domain errors onto HTTP statuses. Anything
// unrecognized is logged and reported as an opaque 500.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, r, http.StatusBadRequest, "invalid username or password")
	case errors.Is(err, domain.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, r, http.StatusConflict, "username already taken")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
