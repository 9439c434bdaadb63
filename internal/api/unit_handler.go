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

// UnitHandler handles HTTP requests for units
type UnitHandler struct {
	notesService *service.NotesService
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(notesService *service.NotesService) *UnitHandler {
	return &UnitHandler{notesService: notesService}
}

// Routes returns the routes for units
func (h *UnitHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListUnits)
	r.Post("/", h.CreateUnit)
	r.Get("/{id}", h.GetUnit)
	r.Put("/{id}", h.UpdateUnit)
	r.Patch("/{id}", h.UpdateUnit)
	r.Delete("/{id}", h.DeleteUnit)

	r.Post("/{id}/add_subtopic", h.AddSubtopic)

	return r
}

// UnitRequest is the request body for creating or updating a unit.
// The name key must be present; an empty value is accepted.
type UnitRequest struct {
	Name *string `json:"name"`
}

// UnitResponse is the response body for a unit
type UnitResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUnitResponse(unit *domain.Unit) UnitResponse {
	return UnitResponse{
		ID:        unit.ID.String(),
		Name:      unit.Name,
		CreatedAt: unit.CreatedAt,
		UpdatedAt: unit.UpdatedAt,
	}
}

// ListUnits returns all units owned by the caller
func (h *UnitHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	units, err := h.notesService.ListUnits(r.Context(), userID)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp := make([]UnitResponse, 0, len(units))
	for _, unit := range units {
		resp = append(resp, toUnitResponse(unit))
	}
	render.JSON(w, r, resp)
}

// CreateUnit creates a new unit owned by the caller
func (h *UnitHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req UnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	unit, err := h.notesService.CreateUnit(r.Context(), userID, *req.Name)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toUnitResponse(unit))
}

// GetUnit retrieves a unit by ID
func (h *UnitHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
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

	unit, err := h.notesService.GetUnit(r.Context(), userID, id)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.JSON(w, r, toUnitResponse(unit))
}

// UpdateUnit renames a unit
func (h *UnitHandler) UpdateUnit(w http.ResponseWriter, r *http.Request) {
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

	var req UnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	unit, err := h.notesService.UpdateUnit(r.Context(), userID, id, *req.Name)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	render.JSON(w, r, toUnitResponse(unit))
}

// DeleteUnit deletes a unit and everything under it
func (h *UnitHandler) DeleteUnit(w http.ResponseWriter, r *http.Request) {
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

	if err := h.notesService.DeleteUnit(r.Context(), userID, id); err != nil {
		renderServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddSubtopicRequest is the request body for the add_subtopic shortcut
type AddSubtopicRequest struct {
	Title string `json:"title"`
}

// AddSubtopic creates a subtopic with empty notes under the unit
func (h *UnitHandler) AddSubtopic(w http.ResponseWriter, r *http.Request) {
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

	var req AddSubtopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, r, http.StatusBadRequest, "title is required")
		return
	}

	subtopic, err := h.notesService.AddSubtopic(r.Context(), userID, id, req.Title)
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
