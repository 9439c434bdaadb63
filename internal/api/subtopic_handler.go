package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/course-notes/internal/auth"
	"github.com/tendant/course-notes/internal/domain"
	"github.com/tendant/course-notes/internal/service"
)

// SubtopicHandler handles HTTP requests for subtopics
type SubtopicHandler struct {
	notesService *service.NotesService
}

// NewSubtopicHandler creates a new subtopic handler
func NewSubtopicHandler(notesService *service.NotesService) *SubtopicHandler {
	return &SubtopicHandler{notesService: notesService}
}

// Routes returns the routes for subtopics
func (h *SubtopicHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListSubtopics)
	r.Post("/", h.CreateSubtopic)
	r.Get("/{id}", h.GetSubtopic)
	r.Put("/{id}", h.UpdateSubtopic)
	r.Patch("/{id}", h.UpdateSubtopic)
	r.Delete("/{id}", h.DeleteSubtopic)

	return r
}

// CreateSubtopicRequest is the request body for creating a subtopic
type CreateSubtopicRequest struct {
	Unit  *string `json:"unit"`
	Title string  `json:"title"`
	Notes string  `json:"notes"`
}

// UpdateSubtopicRequest is the request body for updating a subtopic.
// Absent keys leave the field unchanged.
type UpdateSubtopicRequest struct {
	Title *string `json:"title"`
	Notes *string `json:"notes"`
}

// SubtopicResponse is the response body for a subtopic. PDFs are always
// embedded with resolvable file URLs.
type SubtopicResponse struct {
	ID        string        `json:"id"`
	Unit      string        `json:"unit"`
	Title     string        `json:"title"`
	Notes     string        `json:"notes"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	PDFs      []PDFResponse `json:"pdfs"`
}

func buildSubtopicResponse(r *http.Request, notesService *service.NotesService, subtopic *domain.Subtopic) (SubtopicResponse, error) {
	pdfs, err := notesService.PDFsForSubtopic(r.Context(), subtopic.ID)
	if err != nil {
		return SubtopicResponse{}, err
	}

	pdfResponses := make([]PDFResponse, 0, len(pdfs))
	for _, pdf := range pdfs {
		url, err := notesService.FileURL(r.Context(), pdf)
		if err != nil {
			return SubtopicResponse{}, err
		}
		pdfResponses = append(pdfResponses, toPDFResponse(pdf, url))
	}

	return SubtopicResponse{
		ID:        subtopic.ID.String(),
		Unit:      subtopic.UnitID.String(),
		Title:     subtopic.Title,
		Notes:     subtopic.Notes,
		CreatedAt: subtopic.CreatedAt,
		UpdatedAt: subtopic.UpdatedAt,
		PDFs:      pdfResponses,
	}, nil
}

// ListSubtopics returns all subtopics owned by the caller
func (h *SubtopicHandler) ListSubtopics(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	subtopics, err := h.notesService.ListSubtopics(r.Context(), userID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp := make([]SubtopicResponse, 0, len(subtopics))
	for _, subtopic := range subtopics {
		item, err := buildSubtopicResponse(r, h.notesService, subtopic)
		if err != nil {
			renderServiceError(w, r, err)
			return
		}
		resp = append(resp, item)
	}
	render.JSON(w, r, resp)
}

// CreateSubtopic creates a subtopic under an owned unit
func (h *SubtopicHandler) CreateSubtopic(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req CreateSubtopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Unit == nil {
		writeError(w, r, http.StatusBadRequest, "unit is required")
		return
	}
	unitID, err := uuid.Parse(*req.Unit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid unit id")
		return
	}

	subtopic, err := h.notesService.CreateSubtopic(r.Context(), userID, unitID, req.Title, req.Notes)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp, err := buildSubtopicResponse(r, h.notesService, subtopic)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// GetSubtopic retrieves a subtopic by ID
func (h *SubtopicHandler) GetSubtopic(w http.ResponseWriter, r *http.Request) {
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

	subtopic, err := h.notesService.GetSubtopic(r.Context(), userID, id)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp, err := buildSubtopicResponse(r, h.notesService, subtopic)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// UpdateSubtopic applies a partial update to title and notes
func (h *SubtopicHandler) UpdateSubtopic(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateSubtopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	subtopic, err := h.notesService.UpdateSubtopic(r.Context(), userID, id, req.Title, req.Notes)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp, err := buildSubtopicResponse(r, h.notesService, subtopic)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

// DeleteSubtopic deletes a subtopic and its attachments
func (h *SubtopicHandler) DeleteSubtopic(w http.ResponseWriter, r *http.Request) {
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

	if err := h.notesService.DeleteSubtopic(r.Context(), userID, id); err != nil {
		renderServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
