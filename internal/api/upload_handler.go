package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/course-notes/internal/service"
)

// UploadHandler handles inline image uploads for the rich-text editor
type UploadHandler struct {
	uploadService *service.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Routes returns the routes for inline image uploads
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.UploadImage)

	return r
}

// UploadImageResponse is the response body for a stored image
type UploadImageResponse struct {
	URL string `json:"url"`
}

// UploadImage stores a multipart image and returns its public URL
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	url, err := h.uploadService.UploadImage(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadImageResponse{URL: url})
}
