// Package handlers provides HTTP handlers for project management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/modules/projects"
	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
)

// Handlers provides HTTP handlers for the projects module
type Handlers struct {
	repo *projects.Repository
	log  zerolog.Logger
}

// NewHandlers creates a new projects handlers instance
func NewHandlers(repo *projects.Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("module", "projects_handlers").Logger(),
	}
}

// RegisterRoutes registers all project routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.HandleList)          // All projects
		r.Post("/", h.HandleSave)         // Create or replace a project
		r.Get("/{id}", h.HandleGet)       // Single project
		r.Delete("/{id}", h.HandleDelete) // Delete a project
	})
}

// HandleList handles GET /api/projects
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list projects")
		h.writeError(w, "Failed to list projects", http.StatusInternalServerError)
		return
	}
	if all == nil {
		all = []projects.Project{}
	}
	h.writeJSON(w, all)
}

// HandleGet handles GET /api/projects/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.repo.Get(id)
	if err != nil {
		h.log.Error().Err(err).Str("project_id", id).Msg("Failed to get project")
		h.writeError(w, "Failed to get project", http.StatusInternalServerError)
		return
	}
	if p == nil {
		h.writeError(w, "Project not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, p)
}

// HandleSave handles POST /api/projects.
// A missing id means "create": the server assigns a UUID. Missing weights
// fall back to the recommended defaults so new projects score immediately.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	var p projects.Project
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode project")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if p.Name == "" {
		h.writeError(w, "Project name is required", http.StatusBadRequest)
		return
	}

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if len(p.Weights) == 0 {
		p.Weights = domain.DefaultWeightProfile()
	}

	if err := h.repo.Save(&p); err != nil {
		h.log.Error().Err(err).Str("project_id", p.ID).Msg("Failed to save project")
		h.writeError(w, "Failed to save project", http.StatusInternalServerError)
		return
	}

	h.log.Info().Str("project_id", p.ID).Str("name", p.Name).Msg("Project saved")
	h.writeJSON(w, p)
}

// HandleDelete handles DELETE /api/projects/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(id); err != nil {
		h.log.Error().Err(err).Str("project_id", id).Msg("Failed to delete project")
		h.writeError(w, "Failed to delete project", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]string{"status": "success"})
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	h.writeJSON(w, map[string]string{"error": message})
}
