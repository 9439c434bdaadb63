package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/course-notes/internal/auth"
	"github.com/tendant/course-notes/internal/domain"
	"github.com/tendant/course-notes/internal/service"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing
const maxUploadMemory = 32 << 20

// PDFHandler handles HTTP requests for PDF attachments
type PDFHandler struct {
	notesService *service.NotesService
}

// NewPDFHandler creates a new PDF handler
func NewPDFHandler(notesService *service.NotesService) *PDFHandler {
	return &PDFHandler{notesService: notesService}
}

// Routes returns the routes for PDF attachments
func (h *PDFHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPDFs)
	r.Post("/", h.CreatePDF)
	r.Get("/{id}", h.GetPDF)
	r.Put("/{id}", h.UpdatePDF)
	r.Patch("/{id}", h.UpdatePDF)
	r.Delete("/{id}", h.DeletePDF)

	return r
}

// PDFResponse is the response body for a PDF attachment. File is always a
// resolvable URL, never a storage key.
type PDFResponse struct {
	ID         string    `json:"id"`
	Subtopic   string    `json:"subtopic"`
	Title      string    `json:"title"`
	File       string    `json:"file"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toPDFResponse(pdf *domain.PDF, url string) PDFResponse {
	return PDFResponse{
		ID:         pdf.ID.String(),
		Subtopic:   pdf.SubtopicID.String(),
		Title:      pdf.Title,
		File:       url,
		UploadedAt: pdf.UploadedAt,
	}
}

func (h *PDFHandler) renderPDF(w http.ResponseWriter, r *http.Request, pdf *domain.PDF, status int) {
	url, err := h.notesService.FileURL(r.Context(), pdf)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, toPDFResponse(pdf, url))
}

// ListPDFs returns all PDF attachments owned by the caller
func (h *PDFHandler) ListPDFs(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	pdfs, err := h.notesService.ListPDFs(r.Context(), userID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp := make([]PDFResponse, 0, len(pdfs))
	for _, pdf := range pdfs {
		url, err := h.notesService.FileURL(r.Context(), pdf)
		if err != nil {
			renderServiceError(w, r, err)
			return
		}
		resp = append(resp, toPDFResponse(pdf, url))
	}
	render.JSON(w, r, resp)
}

// CreatePDF stores a multipart binary payload and creates the attachment
// record under the given subtopic.
func (h *PDFHandler) CreatePDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart body")
		return
	}

	subtopicStr := r.FormValue("subtopic")
	if subtopicStr == "" {
		writeError(w, r, http.StatusBadRequest, "subtopic is required")
		return
	}
	subtopicID, err := uuid.Parse(subtopicStr)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid subtopic id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	pdf, err := h.notesService.CreatePDF(r.Context(), userID, subtopicID, r.FormValue("title"), header.Filename, file)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	h.renderPDF(w, r, pdf, http.StatusCreated)
}

// GetPDF retrieves a PDF attachment by ID
func (h *PDFHandler) GetPDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	pdf, err := h.notesService.GetPDF(r.Context(), userID, id)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	h.renderPDF(w, r, pdf, http.StatusOK)
}

// UpdatePDFRequest is the JSON request body for a metadata-only update
type UpdatePDFRequest struct {
	Title *string `json:"title"`
}

// UpdatePDF accepts either a JSON payload for a metadata-only update or a
// multipart payload that replaces the stored binary.
func (h *PDFHandler) UpdatePDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		h.replaceFile(w, r, userID, id)
		return
	}

	var req UpdatePDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	pdf, err := h.notesService.UpdatePDF(r.Context(), userID, id, req.Title)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	h.renderPDF(w, r, pdf, http.StatusOK)
}

func (h *PDFHandler) replaceFile(w http.ResponseWriter, r *http.Request, userID, id uuid.UUID) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart body")
		return
	}

	var title *string
	if values, ok := r.MultipartForm.Value["title"]; ok && len(values) > 0 {
		title = &values[0]
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		// Multipart without a file is still a valid rename
		pdf, err := h.notesService.UpdatePDF(r.Context(), userID, id, title)
		if err != nil {
			renderServiceError(w, r, err)
			return
		}
		h.renderPDF(w, r, pdf, http.StatusOK)
		return
	}
	defer file.Close()

	pdf, err := h.notesService.ReplacePDFFile(r.Context(), userID, id, title, header.Filename, file)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	h.renderPDF(w, r, pdf, http.StatusOK)
}

// DeletePDF deletes a PDF attachment and its stored object
func (h *PDFHandler) DeletePDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	if err := h.notesService.DeletePDF(r.Context(), userID, id); err != nil {
		renderServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
