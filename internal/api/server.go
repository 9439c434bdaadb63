package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/course-notes/internal/auth"
	"github.com/tendant/course-notes/internal/service"
)

// Server wires the handlers into a single HTTP router
type Server struct {
	tokens        *auth.Manager
	authService   *service.AuthService
	notesService  *service.NotesService
	uploadService *service.UploadService
}

// NewServer creates a new server
func NewServer(
	tokens *auth.Manager,
	authService *service.AuthService,
	notesService *service.NotesService,
	uploadService *service.UploadService,
) *Server {
	return &Server{
		tokens:        tokens,
		authService:   authService,
		notesService:  notesService,
		uploadService: uploadService,
	}
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.StripSlashes)

	r.Get("/health", s.handleHealth)

	// Public routes
	r.Mount("/auth", NewAuthHandler(s.authService).Routes())

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(s.tokens.Verifier())
		r.Use(s.tokens.Authenticator)

		r.Mount("/units", NewUnitHandler(s.notesService).Routes())
		r.Mount("/subtopics", NewSubtopicHandler(s.notesService).Routes())
		r.Mount("/pdfs", NewPDFHandler(s.notesService).Routes())
		r.Mount("/upload-image", NewUploadHandler(s.uploadService).Routes())
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
